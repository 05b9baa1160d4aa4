package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/flexpay/payment-service/internal/adapter/repository"
	"github.com/flexpay/payment-service/internal/config"
	domainRepo "github.com/flexpay/payment-service/internal/domain/repository"
	"github.com/flexpay/payment-service/internal/events"
	"github.com/flexpay/payment-service/internal/infrastructure/database"
	httpServer "github.com/flexpay/payment-service/internal/infrastructure/http"
	"github.com/flexpay/payment-service/internal/infrastructure/provider"
	"github.com/flexpay/payment-service/internal/scheduler"
	"github.com/flexpay/payment-service/internal/usecase"
	"github.com/flexpay/payment-service/pkg/logger"
)

func main() {
	// Load environment overrides from a local .env when present.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)

	cache := newPaymentCache(cfg, zapLogger)
	publisher := newPublisher(cfg, zapLogger)
	defer publisher.Close()

	gateway, err := provider.NewGatewayClient(cfg.Service.Gateway, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}
	zapLogger.Info("Payment gateway configured", zap.String("provider", gateway.Name()))

	payments := usecase.NewPaymentService(
		repos.Payment,
		repos.Installment,
		cache,
		gateway,
		publisher,
		cfg.Service.Currency,
		zapLogger,
	)
	reconciliation := usecase.NewReconciliationService(
		repos.Payment,
		repos.Installment,
		payments,
		cfg.Scheduler.FailedRetention,
		zapLogger,
	)

	sched := scheduler.NewScheduler(zapLogger)
	sched.Register(scheduler.Job{
		Name:     "process-installments",
		Interval: cfg.Scheduler.ReconcileInterval,
		Run: func(ctx context.Context) error {
			_, err := reconciliation.ProcessDueInstallments(ctx, time.Now())
			return err
		},
	})
	sched.Register(scheduler.Job{
		Name:     "cleanup-failed-payments",
		Interval: cfg.Scheduler.CleanupInterval,
		Run: func(ctx context.Context) error {
			return reconciliation.CleanupExpiredRecords(ctx, time.Now())
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched.Start(ctx)

	srv := httpServer.NewServer(cfg, zapLogger, payments, reconciliation, sched)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Shutdown complete")
}

// newPaymentCache builds the Redis read cache when an address is configured,
// nil otherwise.
func newPaymentCache(cfg *config.Config, zapLogger *zap.Logger) domainRepo.PaymentCache {
	if cfg.Service.Cache.Addr == "" {
		zapLogger.Info("Payment cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Service.Cache.Addr,
		Password: cfg.Service.Cache.Password,
		DB:       cfg.Service.Cache.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		zapLogger.Warn("Redis unreachable, payment cache disabled", zap.Error(err))
		return nil
	}

	zapLogger.Info("Payment cache enabled", zap.String("addr", cfg.Service.Cache.Addr))
	return repository.NewRedisPaymentCache(client, cfg.Service.Cache.TTL, zapLogger)
}

// newPublisher builds the Kafka event publisher when brokers are configured,
// a no-op publisher otherwise.
func newPublisher(cfg *config.Config, zapLogger *zap.Logger) events.Publisher {
	if len(cfg.Service.Events.Brokers) == 0 {
		zapLogger.Info("Event publishing disabled")
		return events.NewNoopPublisher()
	}

	publisher, err := events.NewKafkaPublisher(cfg.Service.Events.Brokers, cfg.Service.Events.Topic, zapLogger)
	if err != nil {
		zapLogger.Warn("Kafka unreachable, event publishing disabled", zap.Error(err))
		return events.NewNoopPublisher()
	}

	zapLogger.Info("Event publishing enabled",
		zap.Strings("brokers", cfg.Service.Events.Brokers),
		zap.String("topic", cfg.Service.Events.Topic))
	return publisher
}
