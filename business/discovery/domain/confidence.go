package domain

import (
	"github.com/shopspring/decimal"
)

// ConfidenceParams holds the tunable constants of the result confidence
// formula.
type ConfidenceParams struct {
	// AgreementWeight, LiquidityWeight and PathCountWeight are the
	// relative weights of the three components. They should sum to 1.
	AgreementWeight float64
	LiquidityWeight float64
	PathCountWeight float64

	// LiquidityReference is the anchor-unit liquidity at which the
	// liquidity component reaches 0.5.
	LiquidityReference float64

	// FullConfidencePaths is the number of independent paths at which
	// the path-count component saturates at 1.
	FullConfidencePaths int

	// StalePenalty multiplies the final score when every surviving path
	// exceeds the staleness threshold. Stale pricing is still served,
	// just marked as weakly trusted.
	StalePenalty float64
}

// DefaultConfidenceParams returns the tuning used in production.
func DefaultConfidenceParams() ConfidenceParams {
	return ConfidenceParams{
		AgreementWeight:     0.5,
		LiquidityWeight:     0.3,
		PathCountWeight:     0.2,
		LiquidityReference:  1.0,
		FullConfidencePaths: 3,
		StalePenalty:        0.5,
	}
}

// Confidence combines path agreement, liquidity depth and path count into
// a 0-1 trust score for an aggregated price.
//
// variation is the relative spread of surviving rates ((max-min)/median),
// liquidity the summed path liquidity in anchor units.
func Confidence(variation decimal.Decimal, liquidity decimal.Decimal, pathCount int, allStale bool, params ConfidenceParams) float64 {
	if pathCount == 0 {
		return 0
	}

	v, _ := variation.Float64()
	if v < 0 {
		v = 0
	}
	agreement := 1.0 / (1.0 + 4.0*v)

	liq, _ := liquidity.Float64()
	liqScore := 0.0
	if liq > 0 && params.LiquidityReference > 0 {
		liqScore = liq / (liq + params.LiquidityReference)
	}

	countScore := float64(pathCount) / float64(params.FullConfidencePaths)
	if countScore > 1 {
		countScore = 1
	}

	score := params.AgreementWeight*agreement +
		params.LiquidityWeight*liqScore +
		params.PathCountWeight*countScore

	if allStale {
		score *= params.StalePenalty
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// RateVariation returns the relative spread of implied rates across
// estimates: (max - min) / median. Zero when fewer than two estimates.
func RateVariation(estimates []PathEstimate) decimal.Decimal {
	if len(estimates) < 2 {
		return decimal.Zero
	}

	min, max := estimates[0].ImpliedRate, estimates[0].ImpliedRate
	for _, est := range estimates[1:] {
		if est.ImpliedRate.LessThan(min) {
			min = est.ImpliedRate
		}
		if est.ImpliedRate.GreaterThan(max) {
			max = est.ImpliedRate
		}
	}

	median := medianRate(estimates)
	if median.IsZero() {
		return decimal.Zero
	}
	return max.Sub(min).Div(median)
}
