package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FilterOutliers removes estimates whose implied rate deviates from the
// cross-path median by more than maxDeviation (a fraction, e.g. 0.5 for
// 50%). A single manipulated or extremely thin pool must not set a price
// unchecked against the consensus of independent paths.
//
// With fewer than two estimates there is nothing to compare against and
// the input is returned unchanged.
func FilterOutliers(estimates []PathEstimate, maxDeviation decimal.Decimal) (kept, dropped []PathEstimate) {
	if len(estimates) < 2 {
		return estimates, nil
	}

	median := medianRate(estimates)
	if median.IsZero() {
		return estimates, nil
	}

	for _, est := range estimates {
		deviation := est.ImpliedRate.Sub(median).Abs().Div(median)
		if deviation.GreaterThan(maxDeviation) {
			dropped = append(dropped, est)
		} else {
			kept = append(kept, est)
		}
	}
	return kept, dropped
}

func medianRate(estimates []PathEstimate) decimal.Decimal {
	rates := make([]decimal.Decimal, len(estimates))
	for i, est := range estimates {
		rates[i] = est.ImpliedRate
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].LessThan(rates[j]) })

	mid := len(rates) / 2
	if len(rates)%2 == 1 {
		return rates[mid]
	}
	return rates[mid-1].Add(rates[mid]).Div(decimal.NewFromInt(2))
}
