package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentdouble/kpix/cache"
	"github.com/agentdouble/kpix/config"
	"github.com/agentdouble/kpix/database"
	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/handlers"
	"github.com/agentdouble/kpix/logging"
	"github.com/agentdouble/kpix/middlewares"
	repository "github.com/agentdouble/kpix/repositories"
	"github.com/agentdouble/kpix/routes"
	"github.com/agentdouble/kpix/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:           "kpix",
		Short:         "Multi-tenant KPI tracking backend",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(serveCmd(), indexesCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			client, err := database.Connect(cmd.Context(), cfg.Mongo, logger)
			if err != nil {
				return err
			}
			defer disconnect(client, logger)

			return database.CreateIndexes(cmd.Context(), client.Database(cfg.Mongo.Database), logger)
		},
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func serve(ctx context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := database.Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer disconnect(client, logger)

	if setName, ok, err := database.IsReplicaSet(ctx, client); err != nil {
		logger.Warn("replica set check failed", zap.Error(err))
	} else if !ok {
		logger.Warn("MongoDB is not a replica set, transactions and imports will fail")
	} else {
		logger.Info("part of replica set", zap.String("set_name", setName))
	}

	db := client.Database(cfg.Mongo.Database)
	if err := database.CreateIndexes(ctx, db, logger); err != nil {
		logger.Warn("failed to create indexes", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(registry)

	var reports cache.ReportCache = cache.NopReportCache{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, reports are computed on every request until it recovers", zap.Error(err))
		}
		reports = cache.NewRedisReportCache(rdb, cfg.Redis.ReportTTL)
	}

	// Repositories
	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	kpiRepo := repository.NewKPIRepository(db)
	valueRepo := repository.NewKPIValueRepository(db)
	actionRepo := repository.NewActionPlanRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	cascadeRepo := repository.NewCascadeRepository(db)
	jobRepo, err := repository.NewImportJobRepository(db)
	if err != nil {
		return err
	}

	tx := database.NewTransactor(client)
	clock := engine.SystemClock{}

	// Services
	authService := services.NewAuthService(orgRepo, userRepo, tx, cfg.Auth, clock, logger)
	dashboardService := services.NewDashboardService(dashboardRepo, cascadeRepo, tx, reports, clock, logger)
	kpiService := services.NewKPIService(services.KPIServiceDeps{
		Dashboards: dashboardRepo,
		KPIs:       kpiRepo,
		Values:     valueRepo,
		Users:      userRepo,
		Cascade:    cascadeRepo,
		Tx:         tx,
		Reports:    reports,
		Metrics:    metrics,
		Clock:      clock,
		Logger:     logger,
	})
	actionService := services.NewActionService(kpiRepo, actionRepo, userRepo, reports, clock, logger)
	commentService := services.NewCommentService(kpiRepo, actionRepo, commentRepo, clock, logger)
	importService := services.NewImportService(services.ImportServiceDeps{
		Jobs:    jobRepo,
		KPIs:    kpiRepo,
		Values:  valueRepo,
		Tx:      tx,
		Reports: reports,
		Metrics: metrics,
		Clock:   clock,
		Logger:  logger,
	})
	reportingService := services.NewReportingService(services.ReportingServiceDeps{
		Dashboards: dashboardRepo,
		KPIs:       kpiRepo,
		Values:     valueRepo,
		Actions:    actionRepo,
		Reports:    reports,
		Config:     cfg.Reporting,
		Metrics:    metrics,
		Clock:      clock,
		Logger:     logger,
	})

	handler := routes.Setup(routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, logger),
		Dashboard: handlers.NewDashboardHandler(dashboardService, logger),
		KPI:       handlers.NewKPIHandler(kpiService, logger),
		Action:    handlers.NewActionHandler(actionService, commentService, logger),
		Import:    handlers.NewImportHandler(importService, cfg.Imports.MaxFileSize, logger),
		Reporting: handlers.NewReportingHandler(reportingService, logger),
	}, routes.Options{
		JWTSecret:     cfg.Auth.JWTSecret,
		ImportLimiter: middlewares.NewOrgRateLimiter(cfg.Imports.RatePerMinute, cfg.Imports.Burst),
		Gatherer:      registry,
		Metrics:       metrics,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func disconnect(client *mongo.Client, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("failed to disconnect from MongoDB", zap.Error(err))
	}
}
