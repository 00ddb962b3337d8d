// Package app provides router configuration.
package app

import (
	"github.com/guttosm/quote-configurator/config"
	"github.com/guttosm/quote-configurator/internal/http"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	Handler       *http.Handler
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter initializes HTTP handlers and router configuration.
func InitializeRouter(svc *ServiceComponents, db *DatabaseComponents, cfg config.Config) *RouterComponents {
	handler := http.NewHandler(svc.Configurator)
	healthHandler := http.NewHealthHandler()

	if db.DB != nil && db.DB.Client != nil {
		healthHandler.AddDependency("mongodb", db.DB.HealthCheck)
	}
	healthHandler.AddCircuitBreaker(db.StoreCircuitBreaker)
	healthHandler.AddCircuitBreaker(db.LogsCircuitBreaker)
	healthHandler.AddCircuitBreaker(svc.DocumentCircuitBreaker)

	routerCfg := http.RouterConfig{
		EnableAuth:       cfg.Auth.Enabled,
		APIKeys:          cfg.Auth.APIKeys,
		IdempotencyStore: svc.IdempotencyStore,
		CORSOrigins:      cfg.Server.CORSOrigins,
		SwaggerUser:      cfg.Server.SwaggerUser,
		SwaggerPass:      cfg.Server.SwaggerPass,
		LoggingService:   db.LoggingService,
		AnnexHandler:     http.NewAnnexHandler(svc.Annex, http.WithProforma(svc.Proforma)),
		RequestTimeout:   cfg.Server.RequestTimeout,
		RateLimiter:      svc.RateLimiter,
	}

	return &RouterComponents{
		Handler:       handler,
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}
