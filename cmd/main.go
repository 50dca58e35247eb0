package main

import (
	"context"
	"fmt"
	"os"
	"time"

	redisclient "github.com/studydrops/backend/internal/clients/redis"
	"github.com/studydrops/backend/internal/config"
	"github.com/studydrops/backend/internal/db"
	"github.com/studydrops/backend/internal/handlers"
	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/observability"
	"github.com/studydrops/backend/internal/repos"
	"github.com/studydrops/backend/internal/server"
	"github.com/studydrops/backend/internal/services"
	"github.com/studydrops/backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: utils.GetEnv("SERVICE_NAME", "studydrops-engine", log),
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(ctx)
		}()
	}

	// Engine config
	log.Info("Loading engine configuration from main...")
	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Engine config invalid", "error", err)
	}

	// Database
	dbService, err := db.NewService(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	// Redis cache + events (optional, degrade to no-ops)
	cache, err := redisclient.NewCache(log)
	if err != nil {
		log.Warn("Redis cache unavailable, running without cache", "error", err)
		cache = redisclient.NewNoopCache()
	}
	defer cache.Close()
	events, err := redisclient.NewEventBus(log)
	if err != nil {
		log.Warn("Redis event bus unavailable, events disabled", "error", err)
		events = redisclient.NewNoopEventBus()
	}
	defer events.Close()

	// Repos
	log.Info("Setting up Repos from main...")
	telemetryRepo := repos.NewTelemetryRepo(theDB, log)
	topicRepo := repos.NewTopicRepo(theDB, log)
	topicStatRepo := repos.NewTopicStatRepo(theDB, log)
	stateHistoryRepo := repos.NewStateHistoryRepo(theDB, log)
	dropRepo := repos.NewDropRepo(theDB, log)
	questionRepo := repos.NewQuestionRepo(theDB, log)
	srsCardRepo := repos.NewSrsCardRepo(theDB, log)
	srsReviewRepo := repos.NewSrsReviewRepo(theDB, log)
	srsSettingsRepo := repos.NewSrsSettingsRepo(theDB, log)
	srsIntervalRepo := repos.NewSrsIntervalRepo(theDB, log)
	trailRepo := repos.NewTrailRepo(theDB, log)
	examExecutionRepo := repos.NewExamExecutionRepo(theDB, log)

	// Services
	log.Info("Setting up Services from main...")
	telemetrySvc := services.NewTelemetryService(log, telemetryRepo)
	inferenceSvc := services.NewInferenceService(log, telemetryRepo, topicStatRepo, stateHistoryRepo)
	prioritizationSvc := services.NewPrioritizationService(log, topicRepo, topicStatRepo, dropRepo, srsCardRepo, trailRepo)
	srsSvc := services.NewSrsService(log, theDB, cfg.Srs, srsCardRepo, srsReviewRepo, srsSettingsRepo, srsIntervalRepo, dropRepo, cache, events)
	trailSvc := services.NewTrailService(log, theDB, cfg.Sequencing, inferenceSvc, prioritizationSvc, trailRepo, events)
	examSvc := services.NewExamService(log, theDB, cfg.Adaptive, examExecutionRepo, questionRepo, topicStatRepo, srsSvc, events)

	// Handlers
	log.Info("Setting up Handlers from main...")
	telemetryHandler := handlers.NewTelemetryHandler(log, telemetrySvc, inferenceSvc)
	trailHandler := handlers.NewTrailHandler(log, trailSvc)
	srsHandler := handlers.NewSrsHandler(log, srsSvc)
	examHandler := handlers.NewExamHandler(log, examSvc)

	// Router
	router := server.NewRouter(server.RouterConfig{
		ServiceName:      utils.GetEnv("SERVICE_NAME", "studydrops-engine", log),
		TelemetryHandler: telemetryHandler,
		TrailHandler:     trailHandler,
		SrsHandler:       srsHandler,
		ExamHandler:      examHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
