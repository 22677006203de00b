// Package di contains dependency injection tokens for the marketdata context.
package di

import (
	"github.com/stxforge/pricegraph/business/marketdata/app"
	"github.com/stxforge/pricegraph/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MarketDataService = di.NewToken[*app.Service]("marketdata.Service")
)

// Private dependency tokens - internal to marketdata module
var (
	SnapshotFetcher = di.NewToken[app.SnapshotFetcher]("marketdata:snapshotFetcher")
	PoolStreamer    = di.NewToken[app.PoolStreamer]("marketdata:poolStreamer")
	OracleClient    = di.NewToken[app.OracleClient]("marketdata:oracleClient")
)

// Helper functions for type-safe access
func GetMarketDataService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, MarketDataService)
}

func GetSnapshotFetcher(c di.ServiceRegistry) app.SnapshotFetcher {
	return di.GetToken(c, SnapshotFetcher)
}

func GetOracleClient(c di.ServiceRegistry) app.OracleClient {
	return di.GetToken(c, OracleClient)
}
