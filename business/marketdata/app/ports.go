// Package app contains application services and port definitions for the
// marketdata context.
package app

import (
	"context"

	"github.com/stxforge/pricegraph/business/marketdata/domain"
)

// SnapshotFetcher pulls a full pool snapshot from the feed.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) ([]domain.PoolRecord, error)
}

// PoolStreamer pushes incremental pool updates. Start returns once the
// subscription is established; updates arrive on the handler until the
// context is cancelled.
type PoolStreamer interface {
	Start(ctx context.Context, handler func(domain.PoolRecord)) error
	Close() error
}

// OracleClient fetches the anchor asset's USD price.
type OracleClient interface {
	FetchAnchorPrice(ctx context.Context) (domain.OraclePrice, error)
}
