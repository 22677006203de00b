package history

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/business/discovery/domain"
)

func pricedResult(tokenID string, price float64, version uint64, at time.Time) *domain.PriceResult {
	p := decimal.NewFromFloat(price)
	return &domain.PriceResult{
		TokenID:         tokenID,
		Symbol:          "TEST",
		State:           domain.StatePriced,
		USDPrice:        &p,
		Confidence:      0.8,
		SnapshotVersion: version,
		CalculatedAt:    at,
	}
}

func TestMemoryStore_RecordAndRecent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		res := pricedResult("SP1.token-a", 0.2, uint64(i+1), base.Add(time.Duration(i)*time.Minute))
		if err := store.Record(ctx, res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	points, err := store.Recent(ctx, "SP1.token-a", time.Time{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	// Newest first.
	if !points[0].CalculatedAt.After(points[2].CalculatedAt) {
		t.Error("points not ordered newest first")
	}
}

func TestMemoryStore_DedupBySnapshotVersion(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	_ = store.Record(ctx, pricedResult("SP1.token-a", 0.2, 5, now))
	_ = store.Record(ctx, pricedResult("SP1.token-a", 0.3, 5, now))

	points, _ := store.Recent(ctx, "SP1.token-a", time.Time{}, 10)
	if len(points) != 1 {
		t.Fatalf("expected dedup by snapshot version, got %d points", len(points))
	}
	if !points[0].USDPrice.Equal(decimal.NewFromFloat(0.2)) {
		t.Errorf("first write must win, got %s", points[0].USDPrice)
	}
}

func TestMemoryStore_SkipsUnpriced(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	unpriced := &domain.PriceResult{
		TokenID:         "SP1.token-a",
		State:           domain.StateNoPath,
		SnapshotVersion: 1,
		CalculatedAt:    time.Now(),
	}
	if err := store.Record(ctx, unpriced); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points, _ := store.Recent(ctx, "SP1.token-a", time.Time{}, 10)
	if len(points) != 0 {
		t.Errorf("unpriced result must not be stored, got %d points", len(points))
	}
}

func TestMemoryStore_SinceAndLimit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_ = store.Record(ctx, pricedResult("SP1.token-a", 0.2, uint64(i+1), base.Add(time.Duration(i)*time.Hour)))
	}

	points, _ := store.Recent(ctx, "SP1.token-a", base.Add(2*time.Hour), 10)
	if len(points) != 3 {
		t.Errorf("expected 3 points after the cutoff, got %d", len(points))
	}

	points, _ = store.Recent(ctx, "SP1.token-a", time.Time{}, 2)
	if len(points) != 2 {
		t.Errorf("expected limit to cap at 2, got %d", len(points))
	}
	// The limit keeps the newest observations.
	if points[0].SnapshotVersion != 5 {
		t.Errorf("expected newest point first, got version %d", points[0].SnapshotVersion)
	}
}
