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

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByKPI(ctx context.Context, orgID, kpiID primitive.ObjectID) ([]models.Comment, error)
	ListByActionPlan(ctx context.Context, orgID, actionID primitive.ObjectID) ([]models.Comment, error)
}

type commentRepository struct {
	collection *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) CommentRepository {
	return &commentRepository{collection: db.Collection(database.CollectionComments)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, comment)
	return translate(err, "comment", comment.ID)
}

func (r *commentRepository) ListByKPI(ctx context.Context, orgID, kpiID primitive.ObjectID) ([]models.Comment, error) {
	return r.find(ctx, bson.M{"organization_id": orgID, "kpi_id": kpiID})
}

func (r *commentRepository) ListByActionPlan(ctx context.Context, orgID, actionID primitive.ObjectID) ([]models.Comment, error) {
	return r.find(ctx, bson.M{"organization_id": orgID, "action_plan_id": actionID})
}

func (r *commentRepository) find(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
