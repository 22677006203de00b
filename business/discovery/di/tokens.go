// Package di contains dependency injection tokens for the discovery context.
package di

import (
	"github.com/stxforge/pricegraph/business/discovery/app"
	"github.com/stxforge/pricegraph/internal/di"
)

// Public service tokens - exposed to other modules
var (
	DiscoveryService = di.NewToken[*app.Service]("discovery.Service")
)

// Private dependency tokens - internal to discovery module
var (
	PoolSource   = di.NewToken[app.PoolSource]("discovery:poolSource")
	AnchorOracle = di.NewToken[app.AnchorOracle]("discovery:anchorOracle")
	HistoryStore = di.NewToken[app.HistoryStore]("discovery:historyStore")
)

// Helper functions for type-safe access
func GetDiscoveryService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, DiscoveryService)
}

func GetPoolSource(c di.ServiceRegistry) app.PoolSource {
	return di.GetToken(c, PoolSource)
}

func GetAnchorOracle(c di.ServiceRegistry) app.AnchorOracle {
	return di.GetToken(c, AnchorOracle)
}
