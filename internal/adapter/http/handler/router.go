package handler

import (
	"cafetip/internal/adapter/http/middleware"
	"cafetip/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	TipSvc         ports.TipService
	WithdrawalSvc  ports.WithdrawalService
	CafeRepo       ports.CafeRepository
	TokenSvc       ports.TokenService
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AppBaseURL     string // public URL the gateway redirects customers back to
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL and Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
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

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	tipHandler := NewTipHandler(deps.TipSvc, deps.CafeRepo)
	v1.GET("/cafes/:slug", tipHandler.GetCafe)
	v1.POST("/tips", rl("tips"), tipHandler.Create)

	// Gateway settlement callback. The customer's browser lands here, so
	// it stays public and unthrottled; replays are answered idempotently.
	paymentHandler := NewPaymentHandler(deps.TipSvc, deps.AppBaseURL, deps.Logger)
	v1.GET("/payments/verify", paymentHandler.VerifyCallback)

	// --- JWT-authenticated routes (cafe owner) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalSvc)

	withdrawals := v1.Group("/withdrawals", jwtAuth)
	{
		withdrawals.GET("", withdrawalHandler.Overview)
		withdrawals.POST("", rl("withdrawals"), withdrawalHandler.Request)
	}

	// --- Admin routes (JWT + admin role) ---
	adminHandler := NewAdminHandler(deps.WithdrawalSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.RequireAdmin())
	{
		admin.GET("/payouts", adminHandler.ListPayouts)
		admin.PUT("/payouts/:id", adminHandler.UpdatePayoutStatus)
	}

	return r
}
