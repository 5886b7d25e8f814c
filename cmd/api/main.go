package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/campusvoice/portal/backend/internal/adapters/alerts"
	"github.com/campusvoice/portal/backend/internal/adapters/cache"
	"github.com/campusvoice/portal/backend/internal/adapters/database"
	"github.com/campusvoice/portal/backend/internal/adapters/events"
	"github.com/campusvoice/portal/backend/internal/adapters/memory"
	"github.com/campusvoice/portal/backend/internal/adapters/search"
	"github.com/campusvoice/portal/backend/internal/api/handlers"
	"github.com/campusvoice/portal/backend/internal/api/middleware"
	"github.com/campusvoice/portal/backend/internal/api/routes"
	"github.com/campusvoice/portal/backend/internal/application/services"
	"github.com/campusvoice/portal/backend/internal/domain/providers"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	"github.com/campusvoice/portal/backend/internal/infrastructure/clients/postgres"
	"github.com/campusvoice/portal/backend/internal/infrastructure/clients/redis"
	"github.com/campusvoice/portal/backend/internal/infrastructure/clients/typesense"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
	"github.com/campusvoice/portal/backend/pkg/config"
)

func main() {
	// A missing .env is fine: the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	checks := map[string]handlers.HealthChecker{}

	// Redis backs the cache, the event bus and the alert store when reachable
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without it")
			redisClient = nil
		} else {
			defer redisClient.Close()
			checks["redis"] = redisClient
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
		}
	}

	var (
		complaintRepo repositories.ComplaintRepository
		postRepo      repositories.FeedbackPostRepository
		alertRepo     repositories.AlertRepository
	)

	switch cfg.App.StorageBackend {
	case config.StorageBackendMemory:
		complaintRepo = memory.NewComplaintStore()
		postRepo = memory.NewFeedbackPostStore()
		alertRepo = memory.NewAlertStore()
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
	default:
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
		checks["postgres"] = pgClient

		complaintRepo = database.NewComplaintAdapter(pgClient)
		postRepo = database.NewFeedbackPostAdapter(pgClient)
		alertRepo = database.NewAlertAdapter(pgClient.SQLX())
		log.Info().Msg("PostgreSQL client initialized")
	}

	var (
		cacheProvider providers.CacheProvider
		eventBus      providers.EventBus
	)
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		if cfg.App.StorageBackend != config.StorageBackendMemory {
			alertRepo = alerts.NewRedisAdapter(redisClient)
		}
	} else {
		eventBus = events.NewLocalEventBus()
	}

	var complaintSearch repositories.ComplaintSearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, admin search uses the database")
		} else {
			initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
			if err := tsClient.InitSchema(initCtx); err != nil {
				log.Warn().Err(err).Msg("Failed to initialize Typesense schema")
			}
			initCancel()
			complaintSearch = search.NewTypesenseAdapter(tsClient)
			log.Info().Str("url", cfg.Typesense.URL).Msg("Typesense client initialized")
		}
	}

	// Services
	complaintService := services.NewComplaintService(complaintRepo, complaintSearch, eventBus)
	statusService := services.NewComplaintStatusService(complaintRepo, complaintSearch, eventBus)
	postService := services.NewFeedbackPostService(postRepo)
	ratingService := services.NewRatingService(postRepo, cfg.Rating.MaxAttempts).WithMetrics(metrics)
	feedService := services.NewNotificationFeedService(alertRepo, complaintRepo, postRepo, cfg.Feed.Window).
		WithMetrics(metrics)

	projector := services.NewAlertProjectionService(alertRepo, eventBus)
	if err := projector.Start(); err != nil {
		log.Error().Err(err).Msg("Failed to start alert projection; status alerts will not be stored")
		projector = nil
	}

	// Handlers
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
	}

	router := routes.NewRouter(
		handlers.NewMetaHandler(checks),
		handlers.NewComplaintHandler(complaintService, statusService),
		handlers.NewFeedbackPostHandler(postService, ratingService, cacheProvider,
			handlers.RatingLimits{Limit: cfg.Rating.RateLimit, Window: cfg.Rating.RateWindow}, metrics),
		handlers.NewNotificationHandler(feedService),
		cacheMiddleware,
		metrics,
		cfg.Server.AllowOrigins,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Str("storage", cfg.App.StorageBackend).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	if projector != nil {
		projector.Stop()
	}
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
