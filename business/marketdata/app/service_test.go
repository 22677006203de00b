package app_test

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/business/marketdata/app"
	"github.com/stxforge/pricegraph/business/marketdata/domain"
	"github.com/stxforge/pricegraph/internal/apperror"
	"github.com/stxforge/pricegraph/internal/logger"
)

type fakeFetcher struct {
	records []domain.PoolRecord
	err     error
	calls   int
}

func (f *fakeFetcher) FetchSnapshot(ctx context.Context) ([]domain.PoolRecord, error) {
	f.calls++
	return f.records, f.err
}

type fakeOracleClient struct {
	price domain.OraclePrice
	err   error
	calls int
}

func (f *fakeOracleClient) FetchAnchorPrice(ctx context.Context) (domain.OraclePrice, error) {
	f.calls++
	return f.price, f.err
}

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func record(poolID string) domain.PoolRecord {
	return domain.PoolRecord{
		PoolID:    poolID,
		TokenX:    "SP1ABCDEF.token-a",
		TokenY:    "SP1ABCDEF.token-b",
		ReserveX:  big.NewInt(1_000_000),
		ReserveY:  big.NewInt(2_000_000),
		FeeRate:   decimal.NewFromFloat(0.003),
		UpdatedAt: time.Now(),
	}
}

func testConfig() app.ServiceConfig {
	return app.ServiceConfig{
		RefreshInterval:  time.Hour, // keep the loop quiet during tests
		OracleCacheTTL:   time.Minute,
		OracleStaleAfter: 5 * time.Minute,
	}
}

func TestService_SnapshotNotLoaded(t *testing.T) {
	svc := app.NewService(&fakeFetcher{}, nil, &fakeOracleClient{}, testLogger(), testConfig())

	_, err := svc.Snapshot(context.Background())
	if err == nil {
		t.Fatal("expected error before the first refresh")
	}
	if apperror.GetCode(err) != apperror.CodeSnapshotNotLoaded {
		t.Errorf("expected %s, got %s", apperror.CodeSnapshotNotLoaded, apperror.GetCode(err))
	}
}

func TestService_StartLoadsInitialSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{records: []domain.PoolRecord{record("p1"), record("p2")}}
	svc := app.NewService(fetcher, nil, &fakeOracleClient{}, testLogger(), testConfig())

	if err := svc.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Pools) != 2 {
		t.Errorf("expected 2 pools, got %d", len(snap.Pools))
	}
	if snap.Version != 1 {
		t.Errorf("expected version 1, got %d", snap.Version)
	}
}

func TestService_StartFailsWhenFeedDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	svc := app.NewService(fetcher, nil, &fakeOracleClient{}, testLogger(), testConfig())

	err := svc.Start(ctx)
	if err == nil {
		t.Fatal("expected error when the initial fetch fails")
	}
	if apperror.GetCode(err) != apperror.CodeFeedUnavailable {
		t.Errorf("expected %s, got %s", apperror.CodeFeedUnavailable, apperror.GetCode(err))
	}
}

func TestService_RefreshSkipsMalformedRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bad := record("p-bad")
	bad.ReserveX = nil
	selfPair := record("p-self")
	selfPair.TokenY = selfPair.TokenX

	fetcher := &fakeFetcher{records: []domain.PoolRecord{record("p1"), bad, selfPair, record("p2")}}
	svc := app.NewService(fetcher, nil, &fakeOracleClient{}, testLogger(), testConfig())

	if err := svc.Start(ctx); err != nil {
		t.Fatalf("one bad record must not abort the refresh: %v", err)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Pools) != 2 {
		t.Errorf("expected only the 2 valid pools, got %d", len(snap.Pools))
	}
	for _, p := range snap.Pools {
		if p.PoolID == "p-bad" || p.PoolID == "p-self" {
			t.Errorf("malformed pool %s leaked into the snapshot", p.PoolID)
		}
	}
}

func TestService_ApplyUpdateCopyOnWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{records: []domain.PoolRecord{record("p1")}}
	svc := app.NewService(fetcher, nil, &fakeOracleClient{}, testLogger(), testConfig())
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before, _ := svc.Snapshot(ctx)
	beforeReserve := before.Pools[0].ReserveX

	updated := record("p1")
	updated.ReserveX = big.NewInt(9_999_999)
	svc.ApplyUpdate(updated)

	after, _ := svc.Snapshot(ctx)
	if after.Version != before.Version+1 {
		t.Errorf("expected version bump, got %d -> %d", before.Version, after.Version)
	}
	if after.Pools[0].ReserveX.Cmp(big.NewInt(9_999_999)) != 0 {
		t.Errorf("update not applied: %s", after.Pools[0].ReserveX)
	}

	// The snapshot held before the update must be untouched.
	if before.Pools[0].ReserveX.Cmp(beforeReserve) != 0 {
		t.Error("earlier snapshot was mutated by the update")
	}

	// An update for a new pool id appends.
	svc.ApplyUpdate(record("p2"))
	final, _ := svc.Snapshot(ctx)
	if len(final.Pools) != 2 {
		t.Errorf("expected appended pool, got %d", len(final.Pools))
	}
}

func TestService_ApplyUpdateRejectsMalformed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{records: []domain.PoolRecord{record("p1")}}
	svc := app.NewService(fetcher, nil, &fakeOracleClient{}, testLogger(), testConfig())
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := record("p1")
	bad.ReserveY = big.NewInt(-5)
	svc.ApplyUpdate(bad)

	snap, _ := svc.Snapshot(ctx)
	if snap.Version != 1 {
		t.Errorf("malformed update must not bump the version, got %d", snap.Version)
	}
}

func TestService_AnchorPriceCached(t *testing.T) {
	oracle := &fakeOracleClient{price: domain.OraclePrice{
		Price:      decimal.NewFromInt(100_000),
		Source:     "test",
		Confidence: 0.95,
		Timestamp:  time.Now(),
	}}
	svc := app.NewService(&fakeFetcher{}, nil, oracle, testLogger(), testConfig())

	ctx := context.Background()
	first, err := svc.AnchorPrice(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AnchorPrice(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if oracle.calls != 1 {
		t.Errorf("expected a single upstream fetch, got %d", oracle.calls)
	}
	if first.Confidence != 0.95 {
		t.Errorf("fresh price confidence must pass through, got %f", first.Confidence)
	}
}

func TestService_StaleOraclePriceHalvesConfidence(t *testing.T) {
	oracle := &fakeOracleClient{price: domain.OraclePrice{
		Price:      decimal.NewFromInt(100_000),
		Source:     "test",
		Confidence: 0.9,
		Timestamp:  time.Now().Add(-time.Hour),
	}}
	svc := app.NewService(&fakeFetcher{}, nil, oracle, testLogger(), testConfig())

	price, err := svc.AnchorPrice(context.Background())
	if err != nil {
		t.Fatalf("stale price must still be served: %v", err)
	}
	if price.Confidence != 0.45 {
		t.Errorf("expected halved confidence 0.45, got %f", price.Confidence)
	}
}

func TestService_OracleErrorWrapped(t *testing.T) {
	oracle := &fakeOracleClient{err: errors.New("timeout")}
	svc := app.NewService(&fakeFetcher{}, nil, oracle, testLogger(), testConfig())

	_, err := svc.AnchorPrice(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if apperror.GetCode(err) != apperror.CodeOracleUnavailable {
		t.Errorf("expected %s, got %s", apperror.CodeOracleUnavailable, apperror.GetCode(err))
	}
}
