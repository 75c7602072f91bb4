package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lumenworks/vision-cms-backend/api/routes"
	"github.com/lumenworks/vision-cms-backend/internal/admin"
	"github.com/lumenworks/vision-cms-backend/internal/cleanup"
	"github.com/lumenworks/vision-cms-backend/internal/content"
	"github.com/lumenworks/vision-cms-backend/internal/ingest"
	"github.com/lumenworks/vision-cms-backend/pkg/config"
	"github.com/lumenworks/vision-cms-backend/pkg/db"
	"github.com/lumenworks/vision-cms-backend/pkg/logger"
	"github.com/lumenworks/vision-cms-backend/pkg/metrics"
	"github.com/lumenworks/vision-cms-backend/pkg/migrate"
	"github.com/lumenworks/vision-cms-backend/pkg/pubsub"
	"github.com/lumenworks/vision-cms-backend/pkg/redis"
	"github.com/lumenworks/vision-cms-backend/pkg/storage/gcs"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer pubsubClient.Close()

	notifier, err := cleanup.NewPublisher(pubsubClient.CleanupPublisher())
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup publisher", err)
		os.Exit(1)
	}

	ingestMetrics := metrics.NewIngestMetrics(prometheus.DefaultRegisterer)

	stager, err := ingest.NewStager(gcsClient, ingestMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create upload stager", err)
		os.Exit(1)
	}
	coordinator, err := ingest.NewCoordinator(gcsClient, ingestMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup coordinator", err)
		os.Exit(1)
	}
	pendingRepo, err := ingest.NewPendingRepo(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create pending store", err)
		os.Exit(1)
	}
	ingestor, err := ingest.NewService(stager, dbClient, pendingRepo, coordinator, notifier, ingestMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ingest service", err)
		os.Exit(1)
	}

	contentService, err := content.NewService(ingestor, stager, content.NewRepository(dbClient.DB()), coordinator, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create content service", err)
		os.Exit(1)
	}
	adminService, err := admin.NewService(admin.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, dbClient, redisClient, gcsClient, adminService, contentService),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down")
}
