package domain_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/internal/token"
)

func validPool() *domain.Pool {
	return &domain.Pool{
		ID:        "SP000.amm.welsh-sbtc",
		TokenX:    token.WELSH,
		TokenY:    token.SBTC,
		ReserveX:  big.NewInt(500_000_000_000), // 500k WELSH at 6 decimals
		ReserveY:  big.NewInt(100_000_000),     // 1 sBTC at 8 decimals
		FeeRate:   decimal.NewFromFloat(0.003),
		UpdatedAt: time.Now(),
	}
}

func TestPool_Validate(t *testing.T) {
	if err := validPool().Validate(); err != nil {
		t.Fatalf("valid pool rejected: %v", err)
	}

	missing := validPool()
	missing.TokenY = nil
	if err := missing.Validate(); err == nil {
		t.Error("expected error for missing token")
	}

	selfPair := validPool()
	selfPair.TokenY = token.WELSH
	if err := selfPair.Validate(); err == nil {
		t.Error("expected error for self-referential pair")
	}

	negative := validPool()
	negative.ReserveX = big.NewInt(-1)
	if err := negative.Validate(); err == nil {
		t.Error("expected error for negative reserves")
	}

	badFee := validPool()
	badFee.FeeRate = decimal.NewFromInt(1)
	if err := badFee.Validate(); err == nil {
		t.Error("expected error for fee rate >= 1")
	}
}

func TestPool_HasLiquidity(t *testing.T) {
	p := validPool()
	if !p.HasLiquidity() {
		t.Error("expected liquidity")
	}

	p.ReserveX = big.NewInt(0)
	if p.HasLiquidity() {
		t.Error("zero reserve must report no liquidity")
	}
}

func TestPool_ReserveDecimal(t *testing.T) {
	p := validPool()

	welsh := p.ReserveDecimal(token.WELSH.ID())
	if !welsh.Equal(decimal.NewFromInt(500_000)) {
		t.Errorf("expected 500000 WELSH, got %s", welsh)
	}

	sbtc := p.ReserveDecimal(token.SBTC.ID())
	if !sbtc.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1 sBTC, got %s", sbtc)
	}
}

func TestPool_AgeIsRelative(t *testing.T) {
	p := validPool()
	taken := p.UpdatedAt.Add(30 * time.Second)

	if age := p.Age(taken); age != 30*time.Second {
		t.Errorf("expected 30s age, got %s", age)
	}

	// A pool updated after the snapshot timestamp clamps to zero.
	if age := p.Age(p.UpdatedAt.Add(-time.Minute)); age != 0 {
		t.Errorf("expected clamped zero age, got %s", age)
	}
}

func TestPath_StringAndMaxAge(t *testing.T) {
	now := time.Now()
	fresh := validPool()
	fresh.UpdatedAt = now.Add(-5 * time.Second)
	stale := validPool()
	stale.UpdatedAt = now.Add(-2 * time.Minute)

	path := &domain.Path{
		Tokens: []*token.Token{token.WELSH, token.STX, token.SBTC},
		Pools:  []*domain.Pool{fresh, stale},
	}

	if got := path.String(); got != "WELSH > STX > sBTC" {
		t.Errorf("unexpected route rendering: %q", got)
	}
	if path.Hops() != 2 {
		t.Errorf("expected 2 hops, got %d", path.Hops())
	}
	if age := path.MaxAge(now); age != 2*time.Minute {
		t.Errorf("expected oldest pool to dominate, got %s", age)
	}
}
