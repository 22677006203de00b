package app_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/business/discovery/app"
	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/internal/token"
)

func findPath(t *testing.T, g *app.PoolGraph, from *token.Token, route string) *domain.Path {
	t.Helper()
	for _, p := range app.FindPaths(g, from, token.SBTC, 4) {
		if p.String() == route {
			return p
		}
	}
	t.Fatalf("route %q not found", route)
	return nil
}

func TestComputeRate_TwoHopComposition(t *testing.T) {
	now := time.Now()
	g := app.BuildPoolGraph(testSnapshot(1, now))
	calc := app.NewRateCalculator(5 * time.Minute)

	path := findPath(t, g, token.WELSH, "WELSH > STX > sBTC")
	est := calc.ComputeRate(path, now)

	// 0.2 STX per WELSH times 0.00001 sBTC per STX, exactly.
	expected := decimal.RequireFromString("0.000002")
	if !est.ImpliedRate.Equal(expected) {
		t.Errorf("expected rate %s, got %s", expected, est.ImpliedRate)
	}
}

func TestComputeRate_DirectAndRoutedAgree(t *testing.T) {
	// The fixture's direct pool and 2-hop route imply identical rates;
	// decimal conversion through differing token decimals must not
	// introduce drift between them.
	now := time.Now()
	g := app.BuildPoolGraph(testSnapshot(1, now))
	calc := app.NewRateCalculator(5 * time.Minute)

	direct := calc.ComputeRate(findPath(t, g, token.WELSH, "WELSH > sBTC"), now)
	routed := calc.ComputeRate(findPath(t, g, token.WELSH, "WELSH > STX > sBTC"), now)

	if !direct.ImpliedRate.Equal(routed.ImpliedRate) {
		t.Errorf("direct %s != routed %s", direct.ImpliedRate, routed.ImpliedRate)
	}
}

func TestComputeRate_BottleneckLiquidity(t *testing.T) {
	now := time.Now()
	g := app.BuildPoolGraph(testSnapshot(1, now))
	calc := app.NewRateCalculator(5 * time.Minute)

	est := calc.ComputeRate(findPath(t, g, token.WELSH, "WELSH > STX > sBTC"), now)

	// Hop 1: 100k STX out at 0.00001 sBTC/STX, doubled = 2 sBTC.
	// Hop 2: 10 sBTC out, doubled = 20 sBTC. The thin hop bounds the path.
	expected := decimal.NewFromInt(2)
	if !est.TotalLiquidity.Equal(expected) {
		t.Errorf("expected bottleneck liquidity %s, got %s", expected, est.TotalLiquidity)
	}
}

func TestComputeRate_PathConfidenceAndStaleness(t *testing.T) {
	now := time.Now()
	g := app.BuildPoolGraph(testSnapshot(1, now))
	calc := app.NewRateCalculator(5 * time.Minute)

	fresh := calc.ComputeRate(findPath(t, g, token.WELSH, "WELSH > STX > sBTC"), now)
	if fresh.Confidence != 0.9 {
		t.Errorf("expected 0.9 confidence for fresh 2-hop path, got %f", fresh.Confidence)
	}
	if fresh.AgeSeconds != 0 {
		t.Errorf("expected zero age, got %f", fresh.AgeSeconds)
	}

	// Same path scored ten minutes after the pools were updated.
	later := now.Add(10 * time.Minute)
	stale := calc.ComputeRate(findPath(t, g, token.WELSH, "WELSH > STX > sBTC"), later)
	if stale.Confidence != 0.7 {
		t.Errorf("expected staleness penalty down to 0.7, got %f", stale.Confidence)
	}
	if stale.AgeSeconds != 600 {
		t.Errorf("expected 600s age, got %f", stale.AgeSeconds)
	}
}

func TestComputeRate_StableStableHopPinned(t *testing.T) {
	now := time.Now()
	// A depegged-looking stable pool: reserves imply 0.8, policy pins 1.0.
	pool := testPool("SP1.amm.aeusdc-usda", token.AeUSDC, token.USDA, 100_000, 80_000, now)
	path := &domain.Path{
		Tokens: []*token.Token{token.AeUSDC, token.USDA},
		Pools:  []*domain.Pool{pool},
	}

	calc := app.NewRateCalculator(5 * time.Minute)
	est := calc.ComputeRate(path, now)

	if !est.ImpliedRate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("stable-stable hop must be pinned at 1.0, got %s", est.ImpliedRate)
	}
}

func TestComputeRate_ReliabilityReflectsBalance(t *testing.T) {
	now := time.Now()
	calc := app.NewRateCalculator(5 * time.Minute)

	balanced := testPool("SP1.amm.balanced", token.AeUSDC, token.USDA, 100_000, 100_000, now)
	skewed := testPool("SP1.amm.skewed", token.WELSH, token.STX, 1_000_000, 10, now)

	balPath := &domain.Path{Tokens: []*token.Token{token.AeUSDC, token.USDA}, Pools: []*domain.Pool{balanced}}
	skewPath := &domain.Path{Tokens: []*token.Token{token.WELSH, token.STX}, Pools: []*domain.Pool{skewed}}

	balEst := calc.ComputeRate(balPath, now)
	skewEst := calc.ComputeRate(skewPath, now)

	if balEst.Reliability != 1.0 {
		t.Errorf("perfectly balanced pool should score 1.0, got %f", balEst.Reliability)
	}
	if skewEst.Reliability >= balEst.Reliability {
		t.Errorf("skewed pool must score lower: %f vs %f", skewEst.Reliability, balEst.Reliability)
	}
	if skewEst.Reliability < 0.1 {
		t.Errorf("reliability must not fall below the floor, got %f", skewEst.Reliability)
	}
}
