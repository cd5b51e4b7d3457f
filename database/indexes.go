package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollectionUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("uq_users_email").SetUnique(true),
			},
		},
		CollectionDashboards: {
			// LIST: dashboards of an organization, by title or newest first
			{
				Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "title", Value: 1}},
				Options: options.Index().SetName("idx_org_title"),
			},
		},
		CollectionKPIs: {
			{
				Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "dashboard_id", Value: 1}, {Key: "is_active", Value: 1}},
				Options: options.Index().SetName("idx_org_dashboard_active"),
			},
		},
		CollectionKPIValues: {
			// One value per KPI period. Concurrent submissions are arbitrated here.
			{
				Keys: bson.D{
					{Key: "kpi_id", Value: 1},
					{Key: "period_start", Value: 1},
					{Key: "period_end", Value: 1},
				},
				Options: options.Index().SetName("uq_kpi_value_period").SetUnique(true),
			},
			// LATEST: period_end desc, created_at desc per KPI
			{
				Keys: bson.D{
					{Key: "organization_id", Value: 1},
					{Key: "kpi_id", Value: 1},
					{Key: "period_end", Value: -1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("idx_org_kpi_latest"),
			},
		},
		CollectionActionPlans: {
			{
				Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "kpi_id", Value: 1}},
				Options: options.Index().SetName("idx_org_kpi"),
			},
			{
				Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "status", Value: 1}, {Key: "due_date", Value: 1}},
				Options: options.Index().SetName("idx_org_status_due_date"),
			},
		},
		CollectionComments: {
			{
				Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "kpi_id", Value: 1}},
				Options: options.Index().SetName("idx_org_kpi"),
			},
			{
				Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "action_plan_id", Value: 1}},
				Options: options.Index().SetName("idx_org_action_plan"),
			},
		},
		CollectionImportJobs: {
			{
				Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_org_created_at"),
			},
		},
	}
}

// CreateIndexes creates every index the repositories rely on. It is idempotent.
func CreateIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for collection, indexes := range indexModels() {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes)
		if err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
		logger.Info("indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	}
	return nil
}
