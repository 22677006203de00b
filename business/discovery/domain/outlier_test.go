package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/business/discovery/domain"
)

func estimateWithRate(rate float64) domain.PathEstimate {
	return domain.PathEstimate{
		Path:        &domain.Path{},
		ImpliedRate: decimal.NewFromFloat(rate),
	}
}

func TestFilterOutliers_DropsManipulatedPath(t *testing.T) {
	// Two honest paths agree near 1.0, a third implies 5x. The median sits
	// at 1.02 so the 5.0 estimate deviates far beyond 50% and must go.
	estimates := []domain.PathEstimate{
		estimateWithRate(1.00),
		estimateWithRate(1.02),
		estimateWithRate(5.00),
	}

	kept, dropped := domain.FilterOutliers(estimates, decimal.NewFromFloat(0.5))

	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if len(dropped) != 1 {
		t.Fatalf("expected 1 dropped, got %d", len(dropped))
	}
	if !dropped[0].ImpliedRate.Equal(decimal.NewFromFloat(5.00)) {
		t.Errorf("expected the 5.00 estimate dropped, got %s", dropped[0].ImpliedRate)
	}
}

func TestFilterOutliers_KeepsAgreeingPaths(t *testing.T) {
	estimates := []domain.PathEstimate{
		estimateWithRate(0.98),
		estimateWithRate(1.00),
		estimateWithRate(1.05),
	}

	kept, dropped := domain.FilterOutliers(estimates, decimal.NewFromFloat(0.5))

	if len(kept) != 3 {
		t.Errorf("expected all 3 kept, got %d", len(kept))
	}
	if len(dropped) != 0 {
		t.Errorf("expected none dropped, got %d", len(dropped))
	}
}

func TestFilterOutliers_SingleEstimatePassesThrough(t *testing.T) {
	// One estimate has nothing to be compared against.
	estimates := []domain.PathEstimate{estimateWithRate(42.0)}

	kept, dropped := domain.FilterOutliers(estimates, decimal.NewFromFloat(0.5))

	if len(kept) != 1 || len(dropped) != 0 {
		t.Errorf("expected single estimate untouched, got kept=%d dropped=%d", len(kept), len(dropped))
	}
}

func TestFilterOutliers_EmptyInput(t *testing.T) {
	kept, dropped := domain.FilterOutliers(nil, decimal.NewFromFloat(0.5))
	if len(kept) != 0 || len(dropped) != 0 {
		t.Errorf("expected empty result, got kept=%d dropped=%d", len(kept), len(dropped))
	}
}

func TestFilterOutliers_EvenCountUsesMiddleAverage(t *testing.T) {
	// Median of [1.0, 1.0, 1.0, 2.2] is 1.0; deviation of 2.2 is 120%.
	estimates := []domain.PathEstimate{
		estimateWithRate(1.0),
		estimateWithRate(1.0),
		estimateWithRate(1.0),
		estimateWithRate(2.2),
	}

	kept, dropped := domain.FilterOutliers(estimates, decimal.NewFromFloat(0.5))

	if len(kept) != 3 {
		t.Errorf("expected 3 kept, got %d", len(kept))
	}
	if len(dropped) != 1 {
		t.Errorf("expected 1 dropped, got %d", len(dropped))
	}
}

func TestFilterOutliers_BoundaryDeviationKept(t *testing.T) {
	// Deviation exactly at the threshold is not "greater than" and stays.
	estimates := []domain.PathEstimate{
		estimateWithRate(1.0),
		estimateWithRate(1.0),
		estimateWithRate(1.5),
	}

	kept, _ := domain.FilterOutliers(estimates, decimal.NewFromFloat(0.5))
	if len(kept) != 3 {
		t.Errorf("expected boundary estimate kept, got %d kept", len(kept))
	}
}
