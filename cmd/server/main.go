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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ridefare/internal/api"
	"ridefare/internal/api/handlers"
	"ridefare/internal/config"
	"ridefare/internal/domain/entities"
	"ridefare/internal/geocoding"
	"ridefare/internal/logger"
	"ridefare/internal/metrics"
	"ridefare/internal/repository/memory"
	"ridefare/internal/routing"
	"ridefare/internal/services"
	"ridefare/internal/stream"
	"ridefare/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.IsDevelopment(), "ridefare")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting ridefare",
		zap.String("port", cfg.Server.Port),
		zap.String("geocoding", cfg.Geocoding.BaseURL),
		zap.String("routing", cfg.Routing.BaseURL),
		zap.Bool("deterministic_pricing", cfg.Pricing.Deterministic),
	)

	// Metrics live on a dedicated registry alongside the Go runtime collectors.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional Redis relay for multi-instance fan-out
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()
	}
	hub, err := stream.NewHub(ctx, redisClient, log.Named("stream"))
	if err != nil {
		log.Fatal("failed to start stream hub", zap.Error(err))
	}
	defer func() { _ = hub.Close() }()

	// Initialize repositories
	sessions := memory.NewSessionRepository[*services.TripSession](
		cfg.Session.IdleTTL,
		cfg.Session.SweepInterval,
		func(evicted []*services.TripSession, remaining int) {
			m.SetActiveSessions(remaining)
			log.Info("expired idle trips", zap.Int("count", len(evicted)), zap.Int("remaining", remaining))
		},
	)
	defer sessions.Stop()

	// Initialize clients and services
	geocoder := geocoding.NewClient(cfg.Geocoding,
		geocoding.WithLogger(log.Named("geocoding")),
		geocoding.WithMetrics(m),
		geocoding.WithLocationTimeout(cfg.Location.Timeout),
	)
	router := routing.NewClient(cfg.Routing,
		routing.WithLogger(log.Named("routing")),
		routing.WithMetrics(m),
	)

	catalog := entities.DefaultCatalog()
	estimator := services.NewFareEstimator(catalog, utils.DefaultRateTable(), cfg.Pricing, nil)
	notifier := services.NewNotificationService(hub, log.Named("notify"))
	tripService := services.NewTripService(sessions, geocoder, router, estimator, notifier, cfg, log.Named("trips"), m)

	// Initialize HTTP handlers
	apiRouter := api.NewRouter(
		handlers.NewTripHandler(tripService),
		handlers.NewPlaceHandler(tripService),
		handlers.NewEstimateHandler(estimator),
		handlers.NewProviderHandler(catalog),
		handlers.NewStreamHandler(tripService, hub, log.Named("stream")),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		log.Named("http"),
	)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	apiRouter.Setup(engine)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      api.WithCORS(engine, cfg.Server.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down ridefare...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}
	sessions.CloseAll()

	log.Info("ridefare stopped")
}
