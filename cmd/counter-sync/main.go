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

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/cache"
	natsAdapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/messaging/nats"
	mongoRepo "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/counter"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/usecase"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobName = "counter-sync"

type reconciledEvent struct {
	Counter         string           `json:"counter"`
	BucketsDeleted  int              `json:"bucketsDeleted"`
	ListingsUpdated int              `json:"listingsUpdated"`
	Deltas          map[string]int64 `json:"deltas"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	// 1. Logger and configuration
	appLogger := logger.NewLogger().Named(jobName)
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	tp := tracer.InitTracer(jobName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// 2. Stores
	mongoClient, err := mongoRepo.NewMongoDBConnection(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	var events usecase.EventPublisher = usecase.NopPublisher{}
	if cfg.NATSURL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, jobName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
	}

	// 3. Reconciler
	metricsManager := metrics.NewMetricsManager(jobName)
	reconciler := counter.NewReconciler(redisClient, mongoRepo.NewCounterSink(db, appLogger), counter.ReconcilerConfig{
		SettleDelay: cfg.CounterSyncSettleDelay,
		LockTTL:     cfg.CounterSyncLockTTL,
	}, metricsManager, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() {
		runCtx, cancel := context.WithTimeout(ctx, cfg.CounterSyncLockTTL)
		defer cancel()
		results, err := reconciler.RunAll(runCtx)
		if errors.Is(err, counter.ErrLockHeld) {
			return
		}
		if err != nil {
			appLogger.Error("Counter reconciliation failed", zap.Error(err))
		}
		for _, res := range results {
			if res.BucketsDeleted == 0 && res.ListingsUpdated == 0 {
				continue
			}
			event := reconciledEvent{
				Counter:         string(res.Counter),
				BucketsDeleted:  res.BucketsDeleted,
				ListingsUpdated: res.ListingsUpdated,
				Deltas:          res.Deltas,
			}
			if err := events.Publish(runCtx, usecase.SubjectCountersReconciled, event); err != nil {
				appLogger.Warn("Failed to publish reconcile event", zap.String("counter", event.Counter), zap.Error(err))
			}
		}
	}

	// 4. Schedule
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(cfg.CounterSyncSchedule, run); err != nil {
		appLogger.Fatal("Invalid COUNTER_SYNC_SCHEDULE", zap.String("schedule", cfg.CounterSyncSchedule), zap.Error(err))
	}
	scheduler.Start()
	appLogger.Info("Counter sync scheduled", zap.String("schedule", cfg.CounterSyncSchedule))

	metricsSrv := metrics.NewMetricsServer(cfg.PrometheusMetricsPort, metricsManager.Registry)
	go func() {
		if err := metrics.StartMetricsServer(metricsSrv, appLogger); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down counter sync...")
	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}

	// Flush settled buckets once more before exit.
	finalCtx, cancelFinal := context.WithTimeout(context.Background(), cfg.CounterSyncLockTTL)
	defer cancelFinal()
	if _, err := reconciler.RunAll(finalCtx); err != nil && !errors.Is(err, counter.ErrLockHeld) {
		appLogger.Warn("Final counter reconciliation failed", zap.Error(err))
	}
}
