// Package app provides application initialization and dependency injection.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-configurator/config"
	"github.com/guttosm/quote-configurator/internal/http"
	"github.com/guttosm/quote-configurator/internal/logger"
	"github.com/guttosm/quote-configurator/internal/middleware"
)

// Application is the wired service: the router plus everything that must be
// released on shutdown.
type Application struct {
	Router   *gin.Engine
	services *ServiceComponents
	database *DatabaseComponents
}

// InitializeApp creates and wires all application dependencies.
// This is the main orchestration function that initializes all components.
func InitializeApp(cfg config.Config) (*Application, error) {
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)

	dbComponents, err := InitializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	return newApplication(cfg, dbComponents)
}

func newApplication(cfg config.Config, dbComponents *DatabaseComponents) (*Application, error) {
	serviceComponents, err := InitializeServices(cfg, dbComponents)
	if err != nil {
		_ = dbComponents.Close(context.Background())
		return nil, err
	}

	middleware.InitAsyncLogger(dbComponents.LoggingService, middleware.DefaultAsyncLoggerConfig())

	routerComponents := InitializeRouter(serviceComponents, dbComponents, cfg)

	return &Application{
		Router:   http.NewRouter(routerComponents.Handler, routerComponents.HealthHandler, routerComponents.Config),
		services: serviceComponents,
		database: dbComponents,
	}, nil
}

// Close flushes pending audit logs, stops background caches and disconnects
// from the database.
func (a *Application) Close(ctx context.Context) {
	middleware.StopAsyncLogger()
	a.services.Stop()
	if err := a.database.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to close MongoDB connection")
	}
}
