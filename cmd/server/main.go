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

	// Adapters
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/cache"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/router"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/mailer"
	natsAdapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/messaging/nats"
	mongoRepo "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/storage/s3"

	// Core
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/access"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"

	// Platform
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	// 1. Logger
	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	// 2. Configuration
	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Application starting...", zap.String("service_name", cfg.ServiceName))

	// 3. Tracer
	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// 4. MongoDB
	mongoClient, err := mongoRepo.NewMongoDBConnection(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		appLogger.Info("Disconnecting from MongoDB...")
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	mongoRepo.EnsureIndexes(indexCtx, db, appLogger)
	cancelIndex()
	appLogger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	// 5. Redis
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("Error closing Redis client", zap.Error(err))
		}
	}()
	appLogger.Info("Connected to Redis", zap.String("address", cfg.RedisAddress))

	// 6. Optional adapters: NATS, MinIO, SMTP
	var events usecase.EventPublisher = usecase.NopPublisher{}
	if cfg.NATSURL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
	} else {
		appLogger.Info("NATS publishing disabled (NATS_URL not set).")
	}

	var storage usecase.PhotoStorage
	if cfg.MinioEnabled() {
		s3Storage, err := s3.NewS3Storage(context.Background(), cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize photo storage", zap.Error(err))
		}
		storage = s3Storage
	} else {
		appLogger.Info("Photo uploads disabled (MinIO not configured).")
	}

	var notifier usecase.ListingNotifier = usecase.NopNotifier{}
	if cfg.SMTPEnabled() {
		m, err := mailer.NewMailer(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize mailer", zap.Error(err))
		}
		notifier = m
	} else {
		appLogger.Info("Email notifications disabled (SMTP not configured).")
	}

	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)

	// 7. Repositories
	userRepo := mongoRepo.NewUserRepository(db, appLogger)
	listingRepo := mongoRepo.NewListingRepository(db, appLogger)
	favoriteRepo := mongoRepo.NewFavoriteRepository(db, appLogger)
	categoryRepo := mongoRepo.NewCategoryRepository(db, appLogger)
	reviewRepo := mongoRepo.NewReviewRepository(db, appLogger)
	reportRepo := mongoRepo.NewReportRepository(db, appLogger)

	// 8. Usecases
	engine := access.NewEngine(access.DefaultGrants(), appLogger)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	recorder := counter.NewRecorder(redisClient, metricsManager, appLogger)
	listingCache := cache.NewListingCache(redisClient, cfg.ListingCacheTTL)
	cascade := usecase.NewCascade(userRepo, listingRepo, favoriteRepo, recorder, listingCache, events, appLogger)

	categoryUsecase, err := usecase.NewCategoryUsecase(categoryRepo, engine, cfg.CategoryCacheSize, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize CategoryUsecase", zap.Error(err))
	}
	userUsecase := usecase.NewUserUsecase(userRepo, tokens, engine, cascade, events, cfg.BcryptCost, appLogger)
	favoriteUsecase := usecase.NewFavoriteUsecase(favoriteRepo, listingRepo, userRepo, engine, recorder, metricsManager, appLogger)
	listingUsecase := usecase.NewListingUsecase(usecase.ListingDeps{
		Listings:   listingRepo,
		Users:      userRepo,
		Categories: categoryUsecase,
		Authz:      engine,
		Recorder:   recorder,
		Cache:      listingCache,
		Storage:    storage,
		Notifier:   notifier,
		Events:     events,
		Cascade:    cascade,
	}, appLogger)
	reviewUsecase := usecase.NewReviewUsecase(reviewRepo, userRepo, listingRepo, engine, cascade, events, appLogger)
	reportUsecase := usecase.NewReportUsecase(reportRepo, userRepo, listingRepo, engine, events, appLogger)

	// 9. HTTP router
	httpHandler := router.New(router.Deps{
		Resolver:   auth.NewResolver(tokens, userRepo, appLogger),
		Users:      userUsecase,
		Favorites:  favoriteUsecase,
		Listings:   listingUsecase,
		Categories: categoryUsecase,
		Reviews:    reviewUsecase,
		Reports:    reportUsecase,
		Health: map[string]handler.Pinger{
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		Metrics: metricsManager,
		Logger:  appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 10. Prometheus metrics server
	metricsSrv := metrics.NewMetricsServer(cfg.PrometheusMetricsPort, metricsManager.Registry)
	go func() {
		if err := metrics.StartMetricsServer(metricsSrv, appLogger); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			appLogger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}
	appLogger.Info("Application shutting down...")
}
