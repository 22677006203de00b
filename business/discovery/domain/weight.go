package domain

import (
	"math"
	"time"
)

// WeightParams holds the tunable constants of the path weighting formula.
type WeightParams struct {
	// HopPenalty is the multiplicative penalty per hop beyond the first.
	HopPenalty float64

	// MinWeight floors the reliability*confidence base so no surviving
	// path is starved to zero influence.
	MinWeight float64

	// LiquidityBoostCap caps the liquidity boost multiplier.
	LiquidityBoostCap float64

	// LiquidityReference is the anchor-unit liquidity at which the boost
	// reaches half of its cap.
	LiquidityReference float64

	// RecencyHalfLife controls the exponential age decay.
	RecencyHalfLife time.Duration

	// MinRecencyFactor floors the age decay so stale data still counts,
	// just weakly.
	MinRecencyFactor float64
}

// DefaultWeightParams returns the tuning used in production.
func DefaultWeightParams() WeightParams {
	return WeightParams{
		HopPenalty:         0.9,
		MinWeight:          0.01,
		LiquidityBoostCap:  2.0,
		LiquidityReference: 1.0,
		RecencyHalfLife:    60 * time.Second,
		MinRecencyFactor:   0.1,
	}
}

// Weight scores a path estimate. All factors are multiplicative so a
// single severely unfavorable factor suppresses a path without separate
// veto logic.
func Weight(est PathEstimate, params WeightParams) float64 {
	base := est.Reliability * est.Confidence
	if base < params.MinWeight {
		base = params.MinWeight
	}

	hops := est.Path.Hops()
	hopFactor := math.Pow(params.HopPenalty, float64(hops-1))

	liquidity, _ := est.TotalLiquidity.Float64()
	boost := liquidityBoost(liquidity, params)

	recency := recencyFactor(est.AgeSeconds, params)

	return base * hopFactor * boost * recency
}

// liquidityBoost grows monotonically with liquidity from 1.0 toward the
// cap, saturating around the reference size.
func liquidityBoost(liquidity float64, params WeightParams) float64 {
	if liquidity <= 0 {
		return 1.0
	}
	cap := params.LiquidityBoostCap
	ref := params.LiquidityReference
	if cap <= 1 || ref <= 0 {
		return 1.0
	}
	return 1.0 + (cap-1.0)*(liquidity/(liquidity+ref))
}

// recencyFactor decays exponentially with age, floored at MinRecencyFactor.
func recencyFactor(ageSeconds float64, params WeightParams) float64 {
	if ageSeconds <= 0 {
		return 1.0
	}
	halfLife := params.RecencyHalfLife.Seconds()
	if halfLife <= 0 {
		return 1.0
	}
	factor := math.Pow(0.5, ageSeconds/halfLife)
	if factor < params.MinRecencyFactor {
		return params.MinRecencyFactor
	}
	return factor
}
