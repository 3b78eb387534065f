package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mentora-api/internal/config"
	"github.com/noah-isme/mentora-api/internal/database"
	"github.com/noah-isme/mentora-api/internal/handler"
	"github.com/noah-isme/mentora-api/internal/middleware"
	"github.com/noah-isme/mentora-api/internal/repository"
	"github.com/noah-isme/mentora-api/internal/router"
	"github.com/noah-isme/mentora-api/internal/service"
	cloud "github.com/noah-isme/mentora-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns: cfg.DatabaseMaxOpenConns,
		MaxIdleConns: cfg.DatabaseMaxIdleConns,
		ConnLifetime: cfg.DatabaseConnLifetime,
		Verbose:      cfg.AppEnv == "development",
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		logger.Warn().Msg("redis not configured; review sessions and summaries stay in process")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	var storage service.DocumentStorage
	if cfg.CloudinaryConfigured() {
		store, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = store
	} else {
		logger.Warn().Msg("cloudinary not configured; submissions with documents will be refused")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	companyRepo := repository.NewCompanyRequestRepository(db)
	mentorRepo := repository.NewMentorApplicationRepository(db)
	programRepo := repository.NewProgramRepository(db)
	decisionRepo := repository.NewReviewDecisionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	catalog := service.NewReviewCatalog(companyRepo, mentorRepo, programRepo)
	hub := service.NewReviewHub()
	eventBus := service.NewReviewEventBus(hub, redisClient, cfg.RealtimeChannel, natsConn, logger)
	summaryService := service.NewReviewSummaryService(catalog, redisClient, cfg.ReviewSummaryCacheTTL, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, logger)
	dispatcher := service.NewReviewDispatcher(catalog, activityService, notificationService, eventBus, summaryService, logger)
	sessions := service.NewReviewSessionStore(redisClient, cfg.ReviewSessionTTL)
	reviewService := service.NewReviewService(catalog, decisionRepo, dispatcher, sessions, validate, cfg.ReviewPageSize, logger)
	intakeService := service.NewIntakeService(companyRepo, mentorRepo, programRepo, storage, eventBus, summaryService, validate, cfg.UploadMaxBytes, logger)
	seedService := service.NewSeedService(intakeService, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.UploadMaxBytes) + 1024*1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		ReviewHandler:       handler.NewReviewHandler(reviewService, summaryService, hub, logger),
		IntakeHandler:       handler.NewIntakeHandler(intakeService, logger),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		SeedHandler:         handler.NewSeedHandler(seedService, logger),
		HealthProbes:        probes,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		OptionalJWT:         middleware.JWTOptional(cfg.JWTSecret),
		IntakeRateLimit:     middleware.RateLimit("intake", cfg.RateLimitMax, cfg.RateLimitWindow),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancel)
}

func waitForShutdown(app *fiber.App, stopBackground context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
