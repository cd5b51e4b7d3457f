package repository

import (
	"context"

	"github.com/agentdouble/kpix/database"
	"github.com/agentdouble/kpix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type KPIRepository interface {
	Create(ctx context.Context, kpi *models.KPI) error
	GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.KPI, error)
	ListByDashboard(ctx context.Context, orgID, dashboardID primitive.ObjectID) ([]models.KPI, error)
	ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.KPI, error)
	Update(ctx context.Context, kpi *models.KPI) error
}

type kpiRepository struct {
	collection *mongo.Collection
}

func NewKPIRepository(db *mongo.Database) KPIRepository {
	return &kpiRepository{collection: db.Collection(database.CollectionKPIs)}
}

func (r *kpiRepository) Create(ctx context.Context, kpi *models.KPI) error {
	kpi.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, kpi)
	return translate(err, "kpi", kpi.ID)
}

func (r *kpiRepository) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.KPI, error) {
	var kpi models.KPI
	filter := bson.M{"_id": id, "organization_id": orgID}
	if err := r.collection.FindOne(ctx, filter).Decode(&kpi); err != nil {
		return nil, translate(err, "kpi", id)
	}
	return &kpi, nil
}

func (r *kpiRepository) ListByDashboard(ctx context.Context, orgID, dashboardID primitive.ObjectID) ([]models.KPI, error) {
	return r.find(ctx, bson.M{"organization_id": orgID, "dashboard_id": dashboardID})
}

func (r *kpiRepository) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.KPI, error) {
	return r.find(ctx, bson.M{"organization_id": orgID})
}

func (r *kpiRepository) find(ctx context.Context, filter bson.M) ([]models.KPI, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	kpis := []models.KPI{}
	if err = cursor.All(ctx, &kpis); err != nil {
		return nil, err
	}
	return kpis, nil
}

func (r *kpiRepository) Update(ctx context.Context, kpi *models.KPI) error {
	filter := bson.M{"_id": kpi.ID, "organization_id": kpi.OrganizationID}
	result, err := r.collection.ReplaceOne(ctx, filter, kpi)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound("kpi", kpi.ID)
	}
	return nil
}
