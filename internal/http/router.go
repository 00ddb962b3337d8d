package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/metrics"
	"github.com/guttosm/quote-configurator/internal/middleware"
	"github.com/guttosm/quote-configurator/internal/service"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	APIKeys          map[string]bool
	EnableAuth       bool
	IdempotencyStore middleware.IdempotencyStore
	CORSOrigins      []string
	SwaggerUser      string
	SwaggerPass      string
	LoggingService   service.LoggingService
	// AnnexHandler is optional; without it the annex route is not registered.
	AnnexHandler *AnnexHandler
	// RequestTimeout bounds every API call except the annex download,
	// which is bounded per remote document instead.
	RequestTimeout time.Duration
	// RateLimiter is optional; nil leaves the API unlimited.
	RateLimiter *middleware.RateLimiter
}

const annexRoute = "/api/quotes/:quoteId/annex"

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{}
}

// quietPaths are polled or scraped continuously and kept out of the audit store.
var quietPaths = []string{"/healthz", "/readyz", "/metrics"}

// NewRouter builds the engine: infrastructure routes at the root and the
// configuration and annex API under /api.
func NewRouter(handler *Handler, healthHandler *HealthHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(corsConfig(cfg.CORSOrigins)),
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.RequestLogger(cfg.LoggingService, quietPaths...),
		middleware.ErrorHandler(),
		withAuditService(cfg.LoggingService),
	)

	healthHandler.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	registerDocs(router, cfg.SwaggerUser, cfg.SwaggerPass)

	api := router.Group("/api")
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		api.Use(middleware.APIKeyAuth(cfg.APIKeys))
	}
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware())
	}
	api.Use(middleware.Deadline(cfg.RequestTimeout, annexRoute))
	api.Use(middleware.Idempotency(middleware.IdempotencyConfig{
		Store:   cfg.IdempotencyStore,
		Enabled: cfg.IdempotencyStore != nil,
	}))
	NewConfigurationRoutes(handler, cfg.AnnexHandler).RegisterRoutes(api)

	return router
}

// corsConfig lets the CRM front end call the API and read the annex headers.
func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Accept-Encoding", "Cache-Control",
			i18n.AcceptLanguageHeader,
			middleware.APIKeyHeader,
			middleware.IdempotencyKeyHeader,
			middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{
			"Content-Disposition",
			middleware.RequestIDHeader,
			middleware.IdempotencyReplayedHeader,
			AnnexWarningsHeader,
			AnnexPagesHeader,
			middleware.RateLimitLimitHeader,
			middleware.RateLimitRemainingHeader,
			"Retry-After",
		},
		AllowCredentials: true,
		MaxAge:           86400,
	}
}

// registerDocs serves the Swagger UI, behind basic auth when credentials are set.
func registerDocs(router *gin.Engine, user, pass string) {
	docs := router.Group("/swagger")
	if user != "" && pass != "" {
		docs.Use(gin.BasicAuth(gin.Accounts{user: pass}))
	}
	docs.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
