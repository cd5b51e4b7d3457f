package database

import (
	"context"
	"fmt"
	"time"

	"github.com/agentdouble/kpix/config"
	"github.com/avast/retry-go/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	CollectionOrganizations = "organizations"
	CollectionUsers         = "users"
	CollectionDashboards    = "dashboards"
	CollectionKPIs          = "kpis"
	CollectionKPIValues     = "kpi_values"
	CollectionActionPlans   = "action_plans"
	CollectionComments      = "comments"
	CollectionImportJobs    = "import_jobs"
	BucketImportFiles       = "import_files"
)

// Connect opens a client and pings the primary, retrying while the server is
// still coming up.
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	attempt := 0
	err = retry.New(
		retry.Context(ctx),
		retry.Attempts(cfg.ConnectAttempts),
		retry.Delay(500*time.Millisecond),
	).Do(func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			logger.Warn("mongo ping failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}

// IsReplicaSet reports whether the server can run multi-document transactions.
func IsReplicaSet(ctx context.Context, client *mongo.Client) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result bson.M
	if err := client.Database("admin").RunCommand(ctx, bson.M{"hello": 1}).Decode(&result); err != nil {
		return "", false, fmt.Errorf("failed to run hello: %w", err)
	}
	if setName, ok := result["setName"].(string); ok {
		return setName, true, nil
	}
	return "", false, nil
}
