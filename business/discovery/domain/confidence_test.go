package domain_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/business/discovery/domain"
)

func TestConfidence_AgreementDominates(t *testing.T) {
	params := domain.DefaultConfidenceParams()
	liquidity := decimal.NewFromInt(10)

	agreeing := domain.Confidence(decimal.NewFromFloat(0.01), liquidity, 3, false, params)
	disagreeing := domain.Confidence(decimal.NewFromFloat(0.8), liquidity, 3, false, params)

	if agreeing <= disagreeing {
		t.Errorf("agreeing paths should score higher: %f vs %f", agreeing, disagreeing)
	}
}

func TestConfidence_ZeroPathsIsZero(t *testing.T) {
	params := domain.DefaultConfidenceParams()
	if c := domain.Confidence(decimal.Zero, decimal.Zero, 0, false, params); c != 0 {
		t.Errorf("expected 0 confidence with no paths, got %f", c)
	}
}

func TestConfidence_PathCountSaturates(t *testing.T) {
	params := domain.DefaultConfidenceParams()
	liquidity := decimal.NewFromInt(10)
	variation := decimal.NewFromFloat(0.02)

	three := domain.Confidence(variation, liquidity, 3, false, params)
	ten := domain.Confidence(variation, liquidity, 10, false, params)

	if math.Abs(three-ten) > 1e-12 {
		t.Errorf("path count component should saturate at %d paths: %f vs %f",
			params.FullConfidencePaths, three, ten)
	}

	one := domain.Confidence(variation, liquidity, 1, false, params)
	if one >= three {
		t.Errorf("single path should score below three paths: %f vs %f", one, three)
	}
}

func TestConfidence_StalePenaltyHalves(t *testing.T) {
	params := domain.DefaultConfidenceParams()
	liquidity := decimal.NewFromInt(10)
	variation := decimal.NewFromFloat(0.05)

	fresh := domain.Confidence(variation, liquidity, 2, false, params)
	stale := domain.Confidence(variation, liquidity, 2, true, params)

	if math.Abs(stale-fresh*params.StalePenalty) > 1e-12 {
		t.Errorf("expected stale score %f, got %f", fresh*params.StalePenalty, stale)
	}
}

func TestConfidence_Bounded(t *testing.T) {
	params := domain.DefaultConfidenceParams()

	perfect := domain.Confidence(decimal.Zero, decimal.NewFromInt(1000000), 5, false, params)
	if perfect > 1 {
		t.Errorf("confidence must not exceed 1, got %f", perfect)
	}

	awful := domain.Confidence(decimal.NewFromInt(100), decimal.Zero, 1, true, params)
	if awful < 0 {
		t.Errorf("confidence must not go negative, got %f", awful)
	}
}

func TestRateVariation(t *testing.T) {
	estimates := []domain.PathEstimate{
		estimateWithRate(0.9),
		estimateWithRate(1.0),
		estimateWithRate(1.1),
	}

	v := domain.RateVariation(estimates)
	// (1.1 - 0.9) / 1.0
	if !v.Equal(decimal.NewFromFloat(0.2)) {
		t.Errorf("expected variation 0.2, got %s", v)
	}

	if v := domain.RateVariation(estimates[:1]); !v.IsZero() {
		t.Errorf("expected zero variation for single estimate, got %s", v)
	}
}
