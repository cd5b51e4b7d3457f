package repository

import (
	"context"

	"github.com/agentdouble/kpix/database"
	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// KPIValueRepository stores append-only KPI values. There is no update path.
type KPIValueRepository interface {
	// Create fails with *engine.ConflictError when the KPI already has a value
	// for the same period.
	Create(ctx context.Context, value *models.KPIValue) error
	ListByKPI(ctx context.Context, orgID, kpiID primitive.ObjectID) ([]models.KPIValue, error)
	// ListRecent returns the organization's n most recently created values.
	ListRecent(ctx context.Context, orgID primitive.ObjectID, n int) ([]models.KPIValue, error)
	// RecentByKPIs returns at most n values per KPI, most recent first.
	RecentByKPIs(ctx context.Context, orgID primitive.ObjectID, kpiIDs []primitive.ObjectID, n int) (map[primitive.ObjectID][]models.KPIValue, error)
}

type kpiValueRepository struct {
	collection *mongo.Collection
}

func NewKPIValueRepository(db *mongo.Database) KPIValueRepository {
	return &kpiValueRepository{collection: db.Collection(database.CollectionKPIValues)}
}

func (r *kpiValueRepository) Create(ctx context.Context, value *models.KPIValue) error {
	value.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, value)
	if mongo.IsDuplicateKeyError(err) {
		return &engine.ConflictError{Resource: "kpi value", Message: "value for this period already exists"}
	}
	return translate(err, "kpi value", value.ID)
}

func (r *kpiValueRepository) ListByKPI(ctx context.Context, orgID, kpiID primitive.ObjectID) ([]models.KPIValue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "period_start", Value: -1}, {Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"organization_id": orgID, "kpi_id": kpiID}, opts)
}

func (r *kpiValueRepository) ListRecent(ctx context.Context, orgID primitive.ObjectID, n int) ([]models.KPIValue, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(n))
	return r.find(ctx, bson.M{"organization_id": orgID}, opts)
}

// RecentByKPIs pushes the per-KPI ordering into an aggregation so only the top
// n documents per KPI leave the server. The final pick still goes through
// engine.LatestByKPI so both paths share one ordering.
func (r *kpiValueRepository) RecentByKPIs(ctx context.Context, orgID primitive.ObjectID, kpiIDs []primitive.ObjectID, n int) (map[primitive.ObjectID][]models.KPIValue, error) {
	if len(kpiIDs) == 0 || n <= 0 {
		return map[primitive.ObjectID][]models.KPIValue{}, nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"organization_id": orgID, "kpi_id": bson.M{"$in": kpiIDs}}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "kpi_id", Value: 1},
			{Key: "period_end", Value: -1},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":    "$kpi_id",
			"values": bson.M{"$push": "$$ROOT"},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"values": bson.M{"$slice": []interface{}{"$values", n}},
		}}},
		bson.D{{Key: "$unwind", Value: "$values"}},
		bson.D{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$values"}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var values []models.KPIValue
	if err = cursor.All(ctx, &values); err != nil {
		return nil, err
	}
	return engine.LatestByKPI(values, n), nil
}

func (r *kpiValueRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.KPIValue, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	values := []models.KPIValue{}
	if err = cursor.All(ctx, &values); err != nil {
		return nil, err
	}
	return values, nil
}
