package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/whopgrid/service-catalog/internal/application"
	"github.com/whopgrid/service-catalog/internal/auth"
	"github.com/whopgrid/service-catalog/internal/config"
	"github.com/whopgrid/service-catalog/internal/consumer"
	"github.com/whopgrid/service-catalog/internal/database"
	"github.com/whopgrid/service-catalog/internal/handler"
	"github.com/whopgrid/service-catalog/internal/health"
	"github.com/whopgrid/service-catalog/internal/kafka"
	"github.com/whopgrid/service-catalog/internal/logger"
	"github.com/whopgrid/service-catalog/internal/middleware"
	"github.com/whopgrid/service-catalog/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-catalog")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-catalog",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.WhopModel{},
			&repository.PromoCodeModel{},
			&repository.TrackingEventModel{},
			&repository.ReviewModel{},
			&repository.SiteSettingsModel{},
		); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), "migrations", zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer kafkaProducer.Close()

	// Initialize repositories
	whopRepo := repository.NewGormWhopRepository(db)
	promoRepo := repository.NewGormPromoRepository(db)
	trackingRepo := repository.NewGormTrackingRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)
	settingsRepo := repository.NewGormSettingsRepository(db)

	// Initialize application services
	whopService := application.NewWhopService(whopRepo, zapLogger)
	promoService := application.NewPromoService(promoRepo, whopRepo, zapLogger)
	reviewService := application.NewReviewService(reviewRepo, whopRepo, zapLogger)
	settingsService := application.NewSettingsService(settingsRepo, zapLogger)
	trackingService := application.NewTrackingService(trackingRepo, whopRepo, promoRepo, kafkaProducer, zapLogger)
	statsService := application.NewStatsService(trackingRepo, whopRepo, promoRepo, zapLogger)
	publicationService := application.NewPublicationService(whopRepo, kafkaProducer, zapLogger)

	// Initialize Kafka consumer for client actions
	consumerGroupID := cfg.KafkaConfig.GroupPrefix + "catalog-service"
	clientConsumer := consumer.NewClientEventConsumer(
		cfg.KafkaConfig.Brokers,
		consumerGroupID,
		trackingService,
		zapLogger,
	)
	defer clientConsumer.Close()

	// Start Kafka consumer in a goroutine
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		if err := clientConsumer.Start(consumerCtx); err != nil {
			if consumerCtx.Err() == nil {
				zapLogger.Error("client event consumer failed", zap.Error(err))
			}
		}
	}()

	// Rate limiter for the tracking write endpoint
	trackingLimiter, err := middleware.RateLimitMiddleware(cfg.TrackingRate)
	if err != nil {
		zapLogger.Fatal("invalid tracking rate limit", zap.Error(err))
	}

	// Initialize HTTP handlers
	catalogHandler := handler.NewCatalogHandler(whopService, promoService, reviewService, settingsService)
	trackingHandler := handler.NewTrackingHandler(trackingService, statsService, trackingLimiter)
	publishHandler := handler.NewPublishHandler(publicationService, cfg.PublishBatchSize)
	adminHandler := handler.NewAdminHandler(whopService, promoService, reviewService, settingsService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-catalog")
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	catalogHandler.RegisterRoutes(apiV1)
	trackingHandler.RegisterRoutes(apiV1)
	publishHandler.RegisterRoutes(apiV1, jwtManager)
	adminHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-catalog...")

	// Cancel Kafka consumer
	consumerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-catalog stopped")
}
