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

type DashboardFilter struct {
	ProcessName string
	// OrderByTitle sorts by title instead of newest first.
	OrderByTitle bool
}

type DashboardRepository interface {
	Create(ctx context.Context, dashboard *models.Dashboard) error
	GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.Dashboard, error)
	List(ctx context.Context, orgID primitive.ObjectID, filter DashboardFilter) ([]models.Dashboard, error)
	Update(ctx context.Context, dashboard *models.Dashboard) error
}

type dashboardRepository struct {
	collection *mongo.Collection
}

func NewDashboardRepository(db *mongo.Database) DashboardRepository {
	return &dashboardRepository{collection: db.Collection(database.CollectionDashboards)}
}

func (r *dashboardRepository) Create(ctx context.Context, dashboard *models.Dashboard) error {
	dashboard.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, dashboard)
	return translate(err, "dashboard", dashboard.ID)
}

func (r *dashboardRepository) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.Dashboard, error) {
	var dashboard models.Dashboard
	filter := bson.M{"_id": id, "organization_id": orgID}
	if err := r.collection.FindOne(ctx, filter).Decode(&dashboard); err != nil {
		return nil, translate(err, "dashboard", id)
	}
	return &dashboard, nil
}

func (r *dashboardRepository) List(ctx context.Context, orgID primitive.ObjectID, filter DashboardFilter) ([]models.Dashboard, error) {
	query := bson.M{"organization_id": orgID}
	if filter.ProcessName != "" {
		query["process_name"] = filter.ProcessName
	}
	sort := bson.D{{Key: "metadata.created_at", Value: -1}}
	if filter.OrderByTitle {
		sort = bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	dashboards := []models.Dashboard{}
	if err = cursor.All(ctx, &dashboards); err != nil {
		return nil, err
	}
	return dashboards, nil
}

func (r *dashboardRepository) Update(ctx context.Context, dashboard *models.Dashboard) error {
	filter := bson.M{"_id": dashboard.ID, "organization_id": dashboard.OrganizationID}
	result, err := r.collection.ReplaceOne(ctx, filter, dashboard)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound("dashboard", dashboard.ID)
	}
	return nil
}
