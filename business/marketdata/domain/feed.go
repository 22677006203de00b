// Package domain contains the wire-level market data types for the
// marketdata context.
package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// PoolRecord is one pool as reported by the snapshot feed. Token ids are
// unresolved contract identifiers; reserves are raw atomic-unit integers.
type PoolRecord struct {
	PoolID    string
	TokenX    string
	TokenY    string
	ReserveX  *big.Int
	ReserveY  *big.Int
	FeeRate   decimal.Decimal
	UpdatedAt time.Time
}

// Validate reports whether the record is structurally usable. Unknown
// token ids are checked later, at registry resolution.
func (r *PoolRecord) Validate() error {
	if r.PoolID == "" {
		return fmt.Errorf("pool record: missing pool id")
	}
	if r.TokenX == "" || r.TokenY == "" {
		return fmt.Errorf("pool %s: missing token id", r.PoolID)
	}
	if r.TokenX == r.TokenY {
		return fmt.Errorf("pool %s: self-referential token pair %s", r.PoolID, r.TokenX)
	}
	if r.ReserveX == nil || r.ReserveY == nil {
		return fmt.Errorf("pool %s: missing reserves", r.PoolID)
	}
	if r.ReserveX.Sign() < 0 || r.ReserveY.Sign() < 0 {
		return fmt.Errorf("pool %s: negative reserves", r.PoolID)
	}
	if r.FeeRate.IsNegative() || r.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("pool %s: fee rate %s outside [0, 1)", r.PoolID, r.FeeRate)
	}
	return nil
}

// PoolSnapshot is a point-in-time set of pool records. Version increases
// monotonically with every refresh or applied update.
type PoolSnapshot struct {
	Version uint64
	TakenAt time.Time
	Pools   []PoolRecord
}

// OraclePrice is the oracle-reported USD price of the anchor asset.
type OraclePrice struct {
	Price      decimal.Decimal
	Source     string
	Confidence float64
	Timestamp  time.Time
}
