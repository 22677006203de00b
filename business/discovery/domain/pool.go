// Package domain contains the core types and pure pricing logic for the
// discovery context.
package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/internal/token"
)

// Pool is a point-in-time view of a liquidity pool. Reserves are raw
// atomic-unit integers; decimal conversion always goes through each
// token's own decimals.
type Pool struct {
	ID        string
	TokenX    *token.Token
	TokenY    *token.Token
	ReserveX  *big.Int
	ReserveY  *big.Int
	FeeRate   decimal.Decimal // fraction in [0, 1)
	UpdatedAt time.Time
}

// Validate reports whether the pool record is well formed.
func (p *Pool) Validate() error {
	if p.TokenX == nil || p.TokenY == nil {
		return fmt.Errorf("pool %s: missing token reference", p.ID)
	}
	if p.TokenX.ID() == p.TokenY.ID() {
		return fmt.Errorf("pool %s: self-referential token pair %s", p.ID, p.TokenX.ID())
	}
	if p.ReserveX == nil || p.ReserveY == nil {
		return fmt.Errorf("pool %s: missing reserves", p.ID)
	}
	if p.ReserveX.Sign() < 0 || p.ReserveY.Sign() < 0 {
		return fmt.Errorf("pool %s: negative reserves", p.ID)
	}
	if p.FeeRate.IsNegative() || p.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("pool %s: fee rate %s outside [0, 1)", p.ID, p.FeeRate)
	}
	return nil
}

// HasLiquidity reports whether both sides hold a non-zero reserve.
func (p *Pool) HasLiquidity() bool {
	return p.ReserveX != nil && p.ReserveY != nil &&
		p.ReserveX.Sign() > 0 && p.ReserveY.Sign() > 0
}

// Contains reports whether the pool involves the given token.
func (p *Pool) Contains(id token.ID) bool {
	return p.TokenX.ID() == id || p.TokenY.ID() == id
}

// Other returns the counterpart token of id, or nil if id is not in the pool.
func (p *Pool) Other(id token.ID) *token.Token {
	switch id {
	case p.TokenX.ID():
		return p.TokenY
	case p.TokenY.ID():
		return p.TokenX
	default:
		return nil
	}
}

// Side returns the token and raw reserve for the given token id.
func (p *Pool) Side(id token.ID) (*token.Token, *big.Int) {
	switch id {
	case p.TokenX.ID():
		return p.TokenX, p.ReserveX
	case p.TokenY.ID():
		return p.TokenY, p.ReserveY
	default:
		return nil, nil
	}
}

// ReserveDecimal converts the reserve on the side of id to decimal form
// using that token's decimals.
func (p *Pool) ReserveDecimal(id token.ID) decimal.Decimal {
	tok, raw := p.Side(id)
	if tok == nil || raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(tok.Decimals()))
}

// Age returns how old the pool data is relative to now. Relative ages keep
// pricing deterministic for a frozen snapshot: now is always the snapshot
// timestamp, never the wall clock.
func (p *Pool) Age(now time.Time) time.Duration {
	if p.UpdatedAt.IsZero() || p.UpdatedAt.After(now) {
		return 0
	}
	return now.Sub(p.UpdatedAt)
}

// Snapshot is an immutable point-in-time set of pools. A pricing pass never
// mutates a snapshot; refreshes replace it wholesale.
type Snapshot struct {
	Version uint64
	TakenAt time.Time
	Pools   []*Pool
}

// AnchorPrice is the oracle-reported USD price of the anchor asset.
type AnchorPrice struct {
	Price      decimal.Decimal
	Source     string
	Confidence float64
	Timestamp  time.Time
}
