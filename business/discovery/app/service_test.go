package app_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stxforge/pricegraph/business/discovery/app"
	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/internal/apperror"
	"github.com/stxforge/pricegraph/internal/logger"
	"github.com/stxforge/pricegraph/internal/token"
)

type fakePoolSource struct {
	snapshot *domain.Snapshot
	err      error
	calls    int
}

func (f *fakePoolSource) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	f.calls++
	return f.snapshot, f.err
}

type fakeOracle struct {
	price domain.AnchorPrice
	err   error
}

func (f *fakeOracle) AnchorPrice(ctx context.Context) (domain.AnchorPrice, error) {
	return f.price, f.err
}

type recordingHistory struct {
	recorded []*domain.PriceResult
}

func (r *recordingHistory) Record(ctx context.Context, result *domain.PriceResult) error {
	r.recorded = append(r.recorded, result)
	return nil
}

func (r *recordingHistory) Recent(ctx context.Context, tokenID string, since time.Time, limit int) ([]domain.HistoryPoint, error) {
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func testServiceConfig() app.ServiceConfig {
	return app.ServiceConfig{
		MaxHops:     4,
		Parallelism: 4,
		CacheTTL:    time.Minute,
		Aggregator:  testAggregatorConfig(),
		MaxPoolAge:  5 * time.Minute,
	}
}

func newTestService(source app.PoolSource, oracle app.AnchorOracle, history app.HistoryStore) *app.Service {
	return app.NewService(source, oracle, history, token.DefaultRegistry(), testLogger(), testServiceConfig())
}

func TestService_PriceKnownToken(t *testing.T) {
	source := &fakePoolSource{snapshot: testSnapshot(1, time.Now())}
	svc := newTestService(source, &fakeOracle{price: testAnchor()}, nil)

	result, err := svc.Price(context.Background(), token.WELSH.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != domain.StatePriced {
		t.Fatalf("expected priced, got %s", result.State)
	}
	if result.Symbol != "WELSH" {
		t.Errorf("wrong symbol: %s", result.Symbol)
	}
}

func TestService_PriceUnknownToken(t *testing.T) {
	source := &fakePoolSource{snapshot: testSnapshot(1, time.Now())}
	svc := newTestService(source, &fakeOracle{price: testAnchor()}, nil)

	unknown := token.MustParseID("SP000000000000000000002Q6VF78.nope")
	_, err := svc.Price(context.Background(), unknown)
	if err == nil {
		t.Fatal("expected error for unknown token")
	}
	if apperror.GetCode(err) != apperror.CodeUnknownToken {
		t.Errorf("expected %s, got %s", apperror.CodeUnknownToken, apperror.GetCode(err))
	}
}

func TestService_ResultsCachedPerSnapshotVersion(t *testing.T) {
	source := &fakePoolSource{snapshot: testSnapshot(1, time.Now())}
	svc := newTestService(source, &fakeOracle{price: testAnchor()}, nil)

	first, err := svc.Price(context.Background(), token.WELSH.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Price(context.Background(), token.WELSH.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("expected the cached result for an unchanged snapshot version")
	}

	// A new snapshot version must invalidate the cached result.
	source.snapshot = testSnapshot(2, time.Now())
	third, err := svc.Price(context.Background(), token.WELSH.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third == first {
		t.Error("expected a fresh result after the snapshot version moved")
	}
	if third.SnapshotVersion != 2 {
		t.Errorf("expected snapshot version 2, got %d", third.SnapshotVersion)
	}
}

func TestService_PriceAllPreservesOrder(t *testing.T) {
	source := &fakePoolSource{snapshot: testSnapshot(1, time.Now())}
	svc := newTestService(source, &fakeOracle{price: testAnchor()}, nil)

	ids := []token.ID{token.WELSH.ID(), token.SBTC.ID(), token.AeUSDC.ID(), token.ALEX.ID()}
	results, err := svc.PriceAll(context.Background(), ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(ids) {
		t.Fatalf("expected %d results, got %d", len(ids), len(results))
	}
	for i, id := range ids {
		if results[i].TokenID != id.String() {
			t.Errorf("result %d out of order: %s", i, results[i].TokenID)
		}
	}
	// All results come from the same frozen snapshot.
	for _, r := range results {
		if r.SnapshotVersion != 1 {
			t.Errorf("mixed snapshot versions: %d", r.SnapshotVersion)
		}
	}
}

func TestService_PriceAllSkipsUnknownTokens(t *testing.T) {
	source := &fakePoolSource{snapshot: testSnapshot(1, time.Now())}
	svc := newTestService(source, &fakeOracle{price: testAnchor()}, nil)

	ids := []token.ID{
		token.WELSH.ID(),
		token.MustParseID("SP000000000000000000002Q6VF78.nope"),
		token.SBTC.ID(),
	}
	results, err := svc.PriceAll(context.Background(), ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected unknown token skipped, got %d results", len(results))
	}
}

func TestService_FeedErrorWrapped(t *testing.T) {
	source := &fakePoolSource{err: errors.New("connection refused")}
	svc := newTestService(source, &fakeOracle{price: testAnchor()}, nil)

	_, err := svc.Price(context.Background(), token.WELSH.ID())
	if err == nil {
		t.Fatal("expected error when the feed is down")
	}
	if apperror.GetCode(err) != apperror.CodeFeedUnavailable {
		t.Errorf("expected %s, got %s", apperror.CodeFeedUnavailable, apperror.GetCode(err))
	}
}

func TestService_OracleErrorWrapped(t *testing.T) {
	source := &fakePoolSource{snapshot: testSnapshot(1, time.Now())}
	svc := newTestService(source, &fakeOracle{err: errors.New("timeout")}, nil)

	_, err := svc.Price(context.Background(), token.WELSH.ID())
	if err == nil {
		t.Fatal("expected error when the oracle is down")
	}
	if apperror.GetCode(err) != apperror.CodeOracleUnavailable {
		t.Errorf("expected %s, got %s", apperror.CodeOracleUnavailable, apperror.GetCode(err))
	}
}

func TestService_RecordsHistoryForPricedTokens(t *testing.T) {
	source := &fakePoolSource{snapshot: testSnapshot(1, time.Now())}
	history := &recordingHistory{}
	svc := newTestService(source, &fakeOracle{price: testAnchor()}, history)

	if _, err := svc.Price(context.Background(), token.WELSH.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history.recorded) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(history.recorded))
	}

	// Unpriced results are not recorded.
	if _, err := svc.Price(context.Background(), token.ALEX.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history.recorded) != 1 {
		t.Errorf("no_path result must not be recorded, got %d records", len(history.recorded))
	}
}

func TestService_HistoryDisabled(t *testing.T) {
	source := &fakePoolSource{snapshot: testSnapshot(1, time.Now())}
	svc := newTestService(source, &fakeOracle{price: testAnchor()}, nil)

	_, err := svc.History(context.Background(), token.WELSH.ID(), time.Time{}, 10)
	if err == nil {
		t.Fatal("expected error when history is disabled")
	}
	if apperror.GetCode(err) != apperror.CodeHistoryStoreError {
		t.Errorf("expected %s, got %s", apperror.CodeHistoryStoreError, apperror.GetCode(err))
	}
}
