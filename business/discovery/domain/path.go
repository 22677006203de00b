package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/internal/token"
)

// Path is an ordered route from a query token to the anchor asset.
// Tokens has one more element than Pools; Pools[i] connects Tokens[i] to
// Tokens[i+1]. Paths are constructed fresh per query and never persisted.
type Path struct {
	Tokens []*token.Token
	Pools  []*Pool
}

// Hops returns the number of pool hops in the path.
func (p *Path) Hops() int {
	return len(p.Pools)
}

// From returns the query token the path starts at.
func (p *Path) From() *token.Token {
	if len(p.Tokens) == 0 {
		return nil
	}
	return p.Tokens[0]
}

// Terminal returns the final token of the path.
func (p *Path) Terminal() *token.Token {
	if len(p.Tokens) == 0 {
		return nil
	}
	return p.Tokens[len(p.Tokens)-1]
}

// MaxAge returns the staleness of the path's oldest pool relative to now.
func (p *Path) MaxAge(now time.Time) time.Duration {
	var max time.Duration
	for _, pool := range p.Pools {
		if age := pool.Age(now); age > max {
			max = age
		}
	}
	return max
}

// String renders the path as a symbol chain, e.g. "WELSH > STX > sBTC".
func (p *Path) String() string {
	symbols := make([]string, len(p.Tokens))
	for i, t := range p.Tokens {
		symbols[i] = t.Symbol()
	}
	return strings.Join(symbols, " > ")
}

// PathEstimate is the price implied by a single path, with the metadata
// the weighting stage needs.
type PathEstimate struct {
	Path *Path

	// ImpliedRate is the token-to-anchor exchange rate composed across
	// all hops, decimal-adjusted per token.
	ImpliedRate decimal.Decimal

	// TotalLiquidity is the bottleneck liquidity along the path,
	// expressed in anchor units. A path is only as liquid as its
	// thinnest pool.
	TotalLiquidity decimal.Decimal

	// Reliability is a structural score in (0, 1] derived from reserve
	// balance across hops.
	Reliability float64

	// Confidence is a per-path data quality score in (0, 1] derived
	// from hop count and staleness.
	Confidence float64

	// AgeSeconds is the staleness of the oldest pool in the path,
	// measured against the snapshot timestamp.
	AgeSeconds float64
}
