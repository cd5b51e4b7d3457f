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

type ActionPlanRepository interface {
	Create(ctx context.Context, action *models.ActionPlan) error
	GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.ActionPlan, error)
	ListByKPI(ctx context.Context, orgID, kpiID primitive.ObjectID) ([]models.ActionPlan, error)
	ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.ActionPlan, error)
	Update(ctx context.Context, action *models.ActionPlan) error
}

type actionPlanRepository struct {
	collection *mongo.Collection
}

func NewActionPlanRepository(db *mongo.Database) ActionPlanRepository {
	return &actionPlanRepository{collection: db.Collection(database.CollectionActionPlans)}
}

func (r *actionPlanRepository) Create(ctx context.Context, action *models.ActionPlan) error {
	action.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, action)
	return translate(err, "action plan", action.ID)
}

func (r *actionPlanRepository) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (*models.ActionPlan, error) {
	var action models.ActionPlan
	filter := bson.M{"_id": id, "organization_id": orgID}
	if err := r.collection.FindOne(ctx, filter).Decode(&action); err != nil {
		return nil, translate(err, "action plan", id)
	}
	return &action, nil
}

func (r *actionPlanRepository) ListByKPI(ctx context.Context, orgID, kpiID primitive.ObjectID) ([]models.ActionPlan, error) {
	return r.find(ctx, bson.M{"organization_id": orgID, "kpi_id": kpiID})
}

func (r *actionPlanRepository) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.ActionPlan, error) {
	return r.find(ctx, bson.M{"organization_id": orgID})
}

func (r *actionPlanRepository) find(ctx context.Context, filter bson.M) ([]models.ActionPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "metadata.created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	actions := []models.ActionPlan{}
	if err = cursor.All(ctx, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *actionPlanRepository) Update(ctx context.Context, action *models.ActionPlan) error {
	filter := bson.M{"_id": action.ID, "organization_id": action.OrganizationID}
	result, err := r.collection.ReplaceOne(ctx, filter, action)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return notFound("action plan", action.ID)
	}
	return nil
}
