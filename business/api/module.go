// Package api implements the HTTP API bounded context.
package api

import (
	"context"

	apiDI "github.com/stxforge/pricegraph/business/api/di"
	"github.com/stxforge/pricegraph/business/api/rest"
	discoveryDI "github.com/stxforge/pricegraph/business/discovery/di"
	"github.com/stxforge/pricegraph/internal/config"
	"github.com/stxforge/pricegraph/internal/di"
	"github.com/stxforge/pricegraph/internal/logger"
	"github.com/stxforge/pricegraph/internal/monolith"
	"github.com/stxforge/pricegraph/internal/token"
)

// Module implements the api bounded context.
type Module struct{}

// RegisterServices registers the API server with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, apiDI.APIServer, func(sr di.ServiceRegistry) *rest.Server {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("tokenRegistry").(*token.Registry)

		handler := rest.NewHandler(discoveryDI.GetDiscoveryService(sr), registry, log)

		return rest.NewServer(rest.ServerConfig{
			ListenAddr:     cfg.API.ListenAddr,
			ReadTimeout:    cfg.API.ReadTimeout,
			WriteTimeout:   cfg.API.WriteTimeout,
			AllowedOrigins: cfg.API.AllowedOrigins,
		}, handler, log)
	})

	return nil
}

// Startup starts the HTTP server.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	server := apiDI.GetAPIServer(mono.Services())
	server.Start(ctx)
	mono.Logger().Info(ctx, "api module started")
	return nil
}
