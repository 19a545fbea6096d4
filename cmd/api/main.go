package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biosecure-pay/config"
	httpHandler "biosecure-pay/internal/adapter/http/handler"
	"biosecure-pay/internal/adapter/provider/mono"
	"biosecure-pay/internal/adapter/provider/paystack"
	memStorage "biosecure-pay/internal/adapter/storage/memory"
	pgStorage "biosecure-pay/internal/adapter/storage/postgres"
	redisStorage "biosecure-pay/internal/adapter/storage/redis"
	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/internal/service"
	"biosecure-pay/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// repositories is the persistence the services are built on.
type repositories struct {
	users        ports.UserRepository
	biometrics   ports.BiometricRepository
	transactions ports.TransactionRepository
	audit        ports.AuditRepository
	health       ports.HealthChecker
	close        func()
}

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("BSP_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Bool("redis", cfg.Redis.Enabled).
		Msg("Starting BioSecure Pay")

	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize persistence")
	}
	defer repos.close()

	healthCheckers := []ports.HealthChecker{repos.health}

	// Redis backs idempotency, attempt limiting and rate limiting; all three
	// are skipped when it is disabled.
	var (
		txOpts         []service.TransactionOption
		rateLimitStore *redisStorage.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		txOpts = append(txOpts,
			service.WithIdempotencyCache(redisStorage.NewIdempotencyCache(rdb), cfg.Policy.IdempotencyTTL),
			service.WithAttemptLimiter(redisStorage.NewAttemptLimiter(rdb), cfg.Policy.MaxAuthAttempts, cfg.Policy.AuthAttemptWindow),
		)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled: no idempotency keys, attempt limits or rate limits")
	}

	if cfg.Policy.RequireKYC {
		txOpts = append(txOpts, service.WithKYCGate(repos.users))
	}
	txOpts = append(txOpts, service.WithCurrency(cfg.Paystack.Currency))

	// Core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Providers
	gateway := paystack.NewClient(cfg.Paystack, logger.Component(log, "paystack"))
	monoClient := mono.NewClient(cfg.Mono, logger.Component(log, "mono"))

	// Business services
	authSvc := service.NewAuthService(repos.users, hashSvc, tokenSvc, log)
	kycSvc := service.NewKYCService(repos.users, monoClient, encSvc.ForPurpose(service.PurposeNationalID), log)
	bioSvc := service.NewBiometricService(repos.biometrics, encSvc.ForPurpose(service.PurposeBiometricTemplate), log)
	accountSvc := service.NewAccountService(repos.users, monoClient, log)
	policy := domain.AuthorizationPolicy{
		HighValueThreshold:  cfg.Policy.HighValueThreshold,
		MinHighValueFactors: cfg.Policy.MinHighValueFactors,
	}
	txSvc := service.NewTransactionService(
		repos.transactions,
		accountSvc,
		bioSvc,
		gateway,
		service.NewExactTemplateMatcher(),
		policy,
		logger.Component(log, "transactions"),
		txOpts...,
	)
	statementSvc := service.NewStatementService(repos.transactions)
	auditSvc := service.NewAuditService(repos.audit, logger.Component(log, "audit"))

	gin.SetMode(cfg.Server.Mode)
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		KYCSvc:         kycSvc,
		BiometricSvc:   bioSvc,
		AccountSvc:     accountSvc,
		TxSvc:          txSvc,
		StatementSvc:   statementSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := auditSvc.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Pending audit entries dropped")
	}

	log.Info().Msg("Server exited")
}

// openRepositories builds the persistence layer selected by database.driver.
// The postgres pool is created once here and shared by every repository.
func openRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		store := memStorage.NewStore()
		return &repositories{
			users:        store.Users,
			biometrics:   store.Biometrics,
			transactions: store.Transactions,
			audit:        store.Audit,
			health:       store,
			close:        func() {},
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pgStorage.Migrate(ctx, pool, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Msg("PostgreSQL connected and migrated")

	return &repositories{
		users:        pgStorage.NewUserRepo(pool),
		biometrics:   pgStorage.NewBiometricRepo(pool),
		transactions: pgStorage.NewTransactionRepo(pool),
		audit:        pgStorage.NewAuditRepo(pool),
		health:       pgStorage.NewHealthCheck(pool),
		close:        pool.Close,
	}, nil
}
