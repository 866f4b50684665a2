package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mfeldkamp/passform-backend/api/routes"
	"github.com/mfeldkamp/passform-backend/internal/fulfillment"
	"github.com/mfeldkamp/passform-backend/internal/inventory"
	"github.com/mfeldkamp/passform-backend/pkg/config"
	"github.com/mfeldkamp/passform-backend/pkg/db"
	"github.com/mfeldkamp/passform-backend/pkg/logger"
	"github.com/mfeldkamp/passform-backend/pkg/metrics"
	"github.com/mfeldkamp/passform-backend/pkg/migrate"
	"github.com/mfeldkamp/passform-backend/pkg/redis"
)

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

	fulfillmentMetrics := metrics.NewFulfillmentMetrics(prometheus.DefaultRegisterer)

	inventoryService, err := inventory.NewService(
		inventory.NewRepository(dbClient.DB()),
		dbClient,
		inventory.Policy{ClampOversell: cfg.Fulfillment.ClampOversell},
		fulfillmentMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	fulfillmentService, err := fulfillment.NewService(
		fulfillment.NewRepository(dbClient.DB()),
		inventoryService,
		dbClient,
		cfg.Fulfillment,
		fulfillmentMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, fulfillmentService, inventoryService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
