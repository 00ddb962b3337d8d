// Package main is the entry point for the quote configurator service.
//
// @title           Quote Configurator API
// @version         1.0.0
// @description     Product configuration sessions for CRM quotes and quote annex assembly.
//
//	Sessions load the quote's lines and the selected bundles with their options, price them
//	against a pricebook, validate the edited table and save it in two phases. The annex
//	endpoint merges the quote's template sections, product documents and generated pages
//	into one PDF.
//
// @termsOfService  http://swagger.io/terms/
//
// @contact.name   API Support
// @contact.email  support@example.com
// @contact.url    https://github.com/guttosm/quote-configurator
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 API key for authentication. Required if authentication is enabled.
//
// @tag.name        Configuration
// @tag.description Configuration sessions and pricebooks
//
// @tag.name        Annex
// @tag.description Quote annex documents
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	_ "github.com/guttosm/quote-configurator/docs" // swagger docs

	"github.com/guttosm/quote-configurator/config"
	"github.com/guttosm/quote-configurator/internal/app"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	application, err := app.InitializeApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runErr := app.NewServer(application.Router, cfg.Server).Run(ctx)
	stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	application.Close(closeCtx)

	if runErr != nil {
		log.Fatal().Err(runErr).Msg("Server error")
	}
}
