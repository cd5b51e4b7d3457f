package repository

import (
	"context"
	"fmt"

	"github.com/agentdouble/kpix/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CascadeRepository deletes a parent together with everything it owns:
// dashboard -> KPIs -> values, action plans, comments.
// Callers run it inside a transaction so a partial cascade never commits.
type CascadeRepository interface {
	DeleteDashboard(ctx context.Context, orgID, dashboardID primitive.ObjectID) error
	DeleteKPI(ctx context.Context, orgID, kpiID primitive.ObjectID) error
}

type cascadeRepository struct {
	dashboards *mongo.Collection
	kpis       *mongo.Collection
	values     *mongo.Collection
	actions    *mongo.Collection
	comments   *mongo.Collection
}

func NewCascadeRepository(db *mongo.Database) CascadeRepository {
	return &cascadeRepository{
		dashboards: db.Collection(database.CollectionDashboards),
		kpis:       db.Collection(database.CollectionKPIs),
		values:     db.Collection(database.CollectionKPIValues),
		actions:    db.Collection(database.CollectionActionPlans),
		comments:   db.Collection(database.CollectionComments),
	}
}

func (r *cascadeRepository) DeleteDashboard(ctx context.Context, orgID, dashboardID primitive.ObjectID) error {
	kpiIDs, err := r.kpiIDs(ctx, bson.M{"organization_id": orgID, "dashboard_id": dashboardID})
	if err != nil {
		return err
	}
	if err := r.deleteKPIChildren(ctx, orgID, kpiIDs); err != nil {
		return err
	}
	if _, err := r.kpis.DeleteMany(ctx, bson.M{"organization_id": orgID, "dashboard_id": dashboardID}); err != nil {
		return fmt.Errorf("failed to delete kpis: %w", err)
	}

	result, err := r.dashboards.DeleteOne(ctx, bson.M{"_id": dashboardID, "organization_id": orgID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notFound("dashboard", dashboardID)
	}
	return nil
}

func (r *cascadeRepository) DeleteKPI(ctx context.Context, orgID, kpiID primitive.ObjectID) error {
	if err := r.deleteKPIChildren(ctx, orgID, []primitive.ObjectID{kpiID}); err != nil {
		return err
	}

	result, err := r.kpis.DeleteOne(ctx, bson.M{"_id": kpiID, "organization_id": orgID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notFound("kpi", kpiID)
	}
	return nil
}

func (r *cascadeRepository) kpiIDs(ctx context.Context, filter bson.M) ([]primitive.ObjectID, error) {
	ids, err := r.kpis.Distinct(ctx, "_id", filter)
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := id.(primitive.ObjectID); ok {
			out = append(out, oid)
		}
	}
	return out, nil
}

// deleteKPIChildren removes values, action plans and every comment hanging off
// either the KPIs or their action plans.
func (r *cascadeRepository) deleteKPIChildren(ctx context.Context, orgID primitive.ObjectID, kpiIDs []primitive.ObjectID) error {
	if len(kpiIDs) == 0 {
		return nil
	}
	byKPI := bson.M{"organization_id": orgID, "kpi_id": bson.M{"$in": kpiIDs}}

	actionIDs, err := r.actions.Distinct(ctx, "_id", byKPI)
	if err != nil {
		return err
	}
	if actionIDs == nil {
		actionIDs = []interface{}{}
	}

	commentFilter := bson.M{"organization_id": orgID, "$or": bson.A{
		bson.M{"kpi_id": bson.M{"$in": kpiIDs}},
		bson.M{"action_plan_id": bson.M{"$in": actionIDs}},
	}}
	if _, err := r.comments.DeleteMany(ctx, commentFilter); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	if _, err := r.actions.DeleteMany(ctx, byKPI); err != nil {
		return fmt.Errorf("failed to delete action plans: %w", err)
	}
	if _, err := r.values.DeleteMany(ctx, byKPI); err != nil {
		return fmt.Errorf("failed to delete kpi values: %w", err)
	}
	return nil
}
