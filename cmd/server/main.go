package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/brokerops/commissions/internal/adapter/http"
	"github.com/brokerops/commissions/internal/adapter/http/handler"
	"github.com/brokerops/commissions/internal/adapter/http/middleware"
	"github.com/brokerops/commissions/internal/adapter/payment"
	postgresRepo "github.com/brokerops/commissions/internal/adapter/repository/postgres"
	redisRepo "github.com/brokerops/commissions/internal/adapter/repository/redis"
	"github.com/brokerops/commissions/internal/infrastructure/config"
	"github.com/brokerops/commissions/internal/infrastructure/eventpublisher"
	"github.com/brokerops/commissions/internal/infrastructure/logger"
	"github.com/brokerops/commissions/internal/infrastructure/metrics"
	"github.com/brokerops/commissions/internal/infrastructure/postgres"
	"github.com/brokerops/commissions/internal/infrastructure/redis"
	"github.com/brokerops/commissions/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	commissionRepo := postgresRepo.NewCommissionRepository(pool)
	capRepo := postgresRepo.NewCapRepository(pool)
	capPolicyRepo := postgresRepo.NewCapPolicyRepository(pool)
	payoutRepo := postgresRepo.NewPayoutRepository(pool)
	batchRepo := postgresRepo.NewBatchRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log.Logger)

	// Payment collaborator
	paymentClient := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentTimeout)

	// Initialize use cases
	commissionUC := usecase.NewCommissionUseCase(
		txManager, commissionRepo, capRepo, capPolicyRepo, payoutRepo,
		outboxRepo, auditRepo, idGen, retrier, m,
		usecase.DefaultCapPolicy{AnnualCapCents: cfg.DefaultAnnualCapCents},
	)
	payoutUC := usecase.NewPayoutUseCase(txManager, payoutRepo, outboxRepo, auditRepo, idGen, m)
	settlementUC := usecase.NewSettlementUseCase(
		txManager, payoutRepo, batchRepo, outboxRepo, auditRepo,
		paymentClient, idGen, log.Logger, m,
	)
	ledgerUC := usecase.NewLedgerUseCase(commissionRepo, capRepo, capPolicyRepo, cache)
	capPolicyUC := usecase.NewCapPolicyUseCase(capPolicyRepo, auditRepo, idGen)

	// Initialize handlers
	dealHandler := handler.NewDealHandler(commissionUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	payoutHandler := handler.NewPayoutHandler(payoutUC)
	settlementHandler := handler.NewSettlementHandler(settlementUC)
	capPolicyHandler := handler.NewCapPolicyHandler(capPolicyUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		DealHandler:       dealHandler,
		RequestLogger:     middleware.NewLoggingMiddleware(log.Logger),
		LedgerHandler:     ledgerHandler,
		PayoutHandler:     payoutHandler,
		SettlementHandler: settlementHandler,
		CapPolicyHandler:  capPolicyHandler,
		HealthHandler:     healthHandler,
		IdempotencyStore:  idempotencyStore,
		RateLimiter:       rateLimiter,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	// Outbox publisher
	publisherCtx, cancelPublisher := context.WithCancel(ctx)
	defer cancelPublisher()
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log.Logger),
		Logger:     log.Logger,
		BatchSize:  cfg.PublisherBatchSize,
		Interval:   cfg.PublisherInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	cancelPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
