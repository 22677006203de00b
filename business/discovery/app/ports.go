package app

import (
	"context"
	"time"

	"github.com/stxforge/pricegraph/business/discovery/domain"
)

// PoolSource supplies point-in-time pool snapshots. The discovery core
// never fetches or caches pool data itself.
type PoolSource interface {
	// Snapshot returns the current frozen snapshot. Implementations must
	// return a consistent, immutable value; the core never mutates it.
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
}

// AnchorOracle supplies the USD price of the anchor asset.
type AnchorOracle interface {
	AnchorPrice(ctx context.Context) (domain.AnchorPrice, error)
}

// HistoryStore persists computed prices for later retrieval. Recording is
// best effort; a store failure never fails a pricing pass.
type HistoryStore interface {
	Record(ctx context.Context, result *domain.PriceResult) error
	Recent(ctx context.Context, tokenID string, since time.Time, limit int) ([]domain.HistoryPoint, error)
}
