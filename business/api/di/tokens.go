// Package di contains dependency injection tokens for the api context.
package di

import (
	"github.com/stxforge/pricegraph/business/api/rest"
	"github.com/stxforge/pricegraph/internal/di"
)

// Public service tokens - exposed to other modules
var (
	APIServer = di.NewToken[*rest.Server]("api.Server")
)

// Helper functions for type-safe access
func GetAPIServer(c di.ServiceRegistry) *rest.Server {
	return di.GetToken(c, APIServer)
}
