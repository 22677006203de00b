// Package marketdata implements the market data bounded context: pool
// snapshot ingestion and the anchor price oracle.
package marketdata

import (
	"context"

	"github.com/stxforge/pricegraph/business/marketdata/app"
	marketdataDI "github.com/stxforge/pricegraph/business/marketdata/di"
	"github.com/stxforge/pricegraph/business/marketdata/infra/dexfeed"
	"github.com/stxforge/pricegraph/business/marketdata/infra/oracle"
	"github.com/stxforge/pricegraph/internal/config"
	"github.com/stxforge/pricegraph/internal/di"
	"github.com/stxforge/pricegraph/internal/logger"
	"github.com/stxforge/pricegraph/internal/monolith"
)

// Module implements the marketdata bounded context.
type Module struct{}

// RegisterServices registers all marketdata services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register SnapshotFetcher (HTTP feed) - private dependency
	di.RegisterToken(c, marketdataDI.SnapshotFetcher, func(sr di.ServiceRegistry) app.SnapshotFetcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := dexfeed.NewClient(dexfeed.ClientConfig{
			BaseURL:      cfg.Feed.HTTPURL,
			Timeout:      cfg.Feed.RequestTimeout,
			RateLimitRPS: cfg.Feed.RateLimitRPS,
		}, log)
		if err != nil {
			panic("failed to create dexfeed client: " + err.Error())
		}
		return client
	})

	// Register PoolStreamer (WebSocket feed) - private dependency,
	// nil-valued when streaming is not configured
	di.RegisterToken(c, marketdataDI.PoolStreamer, func(sr di.ServiceRegistry) app.PoolStreamer {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Feed.WebSocketURL == "" {
			return nil
		}

		stream, err := dexfeed.NewStream(dexfeed.StreamConfig{
			URL:            cfg.Feed.WebSocketURL,
			InitialBackoff: cfg.Feed.InitialBackoff,
			MaxBackoff:     cfg.Feed.MaxBackoff,
			MaxReconnects:  cfg.Feed.MaxReconnects,
		}, log)
		if err != nil {
			panic("failed to create dexfeed stream: " + err.Error())
		}
		return stream
	})

	// Register OracleClient - private dependency
	di.RegisterToken(c, marketdataDI.OracleClient, func(sr di.ServiceRegistry) app.OracleClient {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := oracle.NewClient(oracle.ClientConfig{
			BaseURL: cfg.Oracle.HTTPURL,
			Timeout: cfg.Oracle.RequestTimeout,
		}, log)
		if err != nil {
			panic("failed to create oracle client: " + err.Error())
		}
		return client
	})

	// Register MarketDataService (public - exposed to other modules)
	di.RegisterToken(c, marketdataDI.MarketDataService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewService(
			marketdataDI.GetSnapshotFetcher(sr),
			di.GetToken(sr, marketdataDI.PoolStreamer),
			marketdataDI.GetOracleClient(sr),
			log,
			app.ServiceConfig{
				RefreshInterval:  cfg.Feed.RefreshInterval,
				OracleCacheTTL:   cfg.Oracle.CacheTTL,
				OracleStaleAfter: cfg.Oracle.StaleAfter,
			},
		)
	})

	return nil
}

// Startup loads the initial snapshot and starts the refresh loop.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	svc := marketdataDI.GetMarketDataService(mono.Services())
	if err := svc.Start(ctx); err != nil {
		return err
	}

	log.Info(ctx, "marketdata module started")
	return nil
}
