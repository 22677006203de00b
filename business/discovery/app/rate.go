package app

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/internal/token"
)

// RateCalculator turns paths into price estimates. Rates are spot
// (fee-excluded): this is a price oracle, not a trade simulator.
type RateCalculator struct {
	maxPoolAge time.Duration
}

// NewRateCalculator creates a calculator. maxPoolAge is the staleness
// threshold beyond which a path's confidence is penalized.
func NewRateCalculator(maxPoolAge time.Duration) *RateCalculator {
	return &RateCalculator{maxPoolAge: maxPoolAge}
}

// ComputeRate prices a single path as of the snapshot timestamp. Hop rates
// compose multiplicatively; every reserve is converted to decimal form
// through its own token's decimals before any division. Mixing raw atomic
// units across tokens of differing decimals silently inflates prices by
// powers of ten.
func (c *RateCalculator) ComputeRate(path *domain.Path, asOf time.Time) domain.PathEstimate {
	hops := path.Hops()
	hopRates := make([]decimal.Decimal, hops)
	for i := 0; i < hops; i++ {
		hopRates[i] = hopRate(path.Pools[i], path.Tokens[i], path.Tokens[i+1])
	}

	one := decimal.NewFromInt(1)

	// rateToAnchor[i] converts Tokens[i] into anchor units.
	rateToAnchor := make([]decimal.Decimal, hops+1)
	rateToAnchor[hops] = one
	for i := hops - 1; i >= 0; i-- {
		rateToAnchor[i] = hopRates[i].Mul(rateToAnchor[i+1])
	}

	// Bottleneck liquidity: each hop's pool size in anchor units, with
	// the thinnest pool bounding the whole path.
	var minLiquidity decimal.Decimal
	for i := 0; i < hops; i++ {
		pool := path.Pools[i]
		out := path.Tokens[i+1]
		hopLiquidity := pool.ReserveDecimal(out.ID()).Mul(rateToAnchor[i+1]).Mul(decimal.NewFromInt(2))
		if i == 0 || hopLiquidity.LessThan(minLiquidity) {
			minLiquidity = hopLiquidity
		}
	}

	maxAge := path.MaxAge(asOf)

	return domain.PathEstimate{
		Path:           path,
		ImpliedRate:    rateToAnchor[0],
		TotalLiquidity: minLiquidity,
		Reliability:    reliability(path),
		Confidence:     c.pathConfidence(hops, maxAge),
		AgeSeconds:     maxAge.Seconds(),
	}
}

// hopRate is the spot exchange rate from in to out through pool. A hop
// between two stablecoins is pinned at 1.0 by policy so depeg noise in
// stable-stable pools never leaks into routed prices.
func hopRate(pool *domain.Pool, in, out *token.Token) decimal.Decimal {
	if in.IsStablecoin() && out.IsStablecoin() {
		return decimal.NewFromInt(1)
	}

	reserveIn := pool.ReserveDecimal(in.ID())
	reserveOut := pool.ReserveDecimal(out.ID())
	if reserveIn.IsZero() {
		return decimal.Zero
	}
	return reserveOut.Div(reserveIn)
}

func reliability(path *domain.Path) float64 {
	if path.Hops() == 0 {
		return 0
	}

	sum := 0.0
	for _, pool := range path.Pools {
		x, _ := pool.ReserveDecimal(pool.TokenX.ID()).Float64()
		y, _ := pool.ReserveDecimal(pool.TokenY.ID()).Float64()
		sum += balanceScore(x, y)
	}
	return sum / float64(path.Hops())
}

// balanceScore softens the raw reserve skew between the two sides. The
// quarter power keeps legitimately price-skewed pairs (a BTC pool vs a
// microcap pool) from being punished as hard as genuinely one-sided pools.
func balanceScore(x, y float64) float64 {
	if x <= 0 || y <= 0 {
		return 0
	}
	ratio := x / y
	if ratio > 1 {
		ratio = 1 / ratio
	}
	score := math.Pow(ratio, 0.25)
	if score < 0.1 {
		return 0.1
	}
	return score
}

// pathConfidence scores data quality: each hop past the first costs 0.1,
// staleness past the threshold costs 0.2.
func (c *RateCalculator) pathConfidence(hops int, maxAge time.Duration) float64 {
	score := 1.0 - 0.1*float64(hops-1)
	if c.maxPoolAge > 0 && maxAge > c.maxPoolAge {
		score -= 0.2
	}
	if score < 0.1 {
		return 0.1
	}
	return score
}
