package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafetip/config"
	"cafetip/internal/adapter/gateway/zarinpal"
	httpHandler "cafetip/internal/adapter/http/handler"
	"cafetip/internal/adapter/notify/telegram"
	pgStorage "cafetip/internal/adapter/storage/postgres"
	redisStorage "cafetip/internal/adapter/storage/redis"
	"cafetip/internal/core/ports"
	"cafetip/internal/service"
	"cafetip/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting CafeTip")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	cafeRepo := pgStorage.NewCafeRepo(pool)
	tipRepo := pgStorage.NewTipRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	payoutRepo := pgStorage.NewPayoutRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	ledger := pgStorage.NewWalletLedger()
	transactor := pgStorage.NewTransactor(pool)

	// Initialize payment gateway client
	gateway := zarinpal.NewClient(cfg.Zarinpal.MerchantID, cfg.Zarinpal.Sandbox, cfg.Zarinpal.Timeout, log)

	// Initialize Telegram notifier (empty token disables notifications)
	var notifier ports.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.Timeout, log)
		log.Info().Msg("Telegram notifications enabled")
	}

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, cafeRepo, hashSvc, tokenSvc, auditSvc, log)
	tipSvc := service.NewTipService(
		tipRepo,
		txRepo,
		cafeRepo,
		ledger,
		gateway,
		notifier,
		auditSvc,
		transactor,
		cfg.App.BaseURL,
		log,
	)
	withdrawalSvc := service.NewWithdrawalService(payoutRepo, cafeRepo, ledger, auditSvc, transactor, log)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		TipSvc:         tipSvc,
		WithdrawalSvc:  withdrawalSvc,
		CafeRepo:       cafeRepo,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AppBaseURL:     cfg.App.BaseURL,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
