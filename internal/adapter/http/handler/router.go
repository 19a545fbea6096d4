package handler

import (
	"biosecure-pay/internal/adapter/http/middleware"
	redisStore "biosecure-pay/internal/adapter/storage/redis"
	"biosecure-pay/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds every request body; templates are the largest payload.
const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	KYCSvc         ports.KYCService
	BiometricSvc   ports.BiometricService
	AccountSvc     ports.AccountService
	TxSvc          ports.TransactionService
	StatementSvc   ports.StatementService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	kycHandler := NewKYCHandler(deps.KYCSvc)
	v1.POST("/kyc/verify", jwtAuth, rl("kyc"), kycHandler.Verify)

	bioHandler := NewBiometricHandler(deps.BiometricSvc)
	biometrics := v1.Group("/biometrics", jwtAuth)
	{
		biometrics.POST("", rl("biometrics"), bioHandler.Enroll)
		biometrics.GET("", rl("biometrics"), bioHandler.List)
		biometrics.DELETE("/:id", rl("biometrics"), bioHandler.Delete)
	}

	accountHandler := NewAccountHandler(deps.AccountSvc)
	accounts := v1.Group("/accounts", jwtAuth)
	{
		accounts.POST("/link", rl("accounts"), accountHandler.Link)
		accounts.POST("", rl("accounts"), accountHandler.Add)
		accounts.GET("", rl("accounts"), accountHandler.List)
	}

	txHandler := NewTransactionHandler(deps.TxSvc, deps.StatementSvc)
	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.POST("", rl("tx_initiate"), txHandler.Initiate)
		transactions.GET("", rl("tx_read"), txHandler.List)
		transactions.GET("/statement", rl("tx_statement"), txHandler.Statement)
		transactions.GET("/:id", rl("tx_read"), txHandler.Get)
		transactions.POST("/:id/authenticate", rl("tx_authorize"), txHandler.Authenticate)
		transactions.POST("/:id/execute", rl("tx_authorize"), txHandler.Execute)
	}

	return r
}
