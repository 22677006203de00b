package app

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/internal/token"
)

// AggregatorConfig holds the tunables of the aggregation stage.
type AggregatorConfig struct {
	OutlierMaxDeviation decimal.Decimal
	MinSurvivingPaths   int
	MaxPoolAge          time.Duration
	Weight              domain.WeightParams
	Confidence          domain.ConfidenceParams
}

// Aggregator combines per-path estimates into one price and confidence.
type Aggregator struct {
	cfg AggregatorConfig
}

// NewAggregator creates an aggregator with the given tuning.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	if cfg.MinSurvivingPaths < 1 {
		cfg.MinSurvivingPaths = 1
	}
	return &Aggregator{cfg: cfg}
}

// Aggregate produces the final PriceResult for one token on one frozen
// snapshot. Anchor and stablecoin queries short-circuit before any path
// math; everything else is the weighted average of surviving paths times
// the anchor's USD price.
func (a *Aggregator) Aggregate(tok *token.Token, estimates []domain.PathEstimate, anchor domain.AnchorPrice, snapshot *domain.Snapshot) *domain.PriceResult {
	if tok.IsAnchor() {
		price := anchor.Price
		return &domain.PriceResult{
			TokenID:    tok.ID().String(),
			Symbol:     tok.Symbol(),
			State:      domain.StatePriced,
			USDPrice:   &price,
			Confidence: anchor.Confidence,
			Details: domain.CalculationDetails{
				AnchorPriceUSD: anchor.Price,
				AnchorSource:   anchor.Source,
			},
			SnapshotVersion: snapshot.Version,
			CalculatedAt:    snapshot.TakenAt,
		}
	}

	if tok.IsStablecoin() {
		one := decimal.NewFromInt(1)
		return &domain.PriceResult{
			TokenID:    tok.ID().String(),
			Symbol:     tok.Symbol(),
			State:      domain.StatePriced,
			USDPrice:   &one,
			Confidence: 1.0,
			Details: domain.CalculationDetails{
				AnchorPriceUSD: anchor.Price,
				AnchorSource:   "stablecoin-pin",
			},
			SnapshotVersion: snapshot.Version,
			CalculatedAt:    snapshot.TakenAt,
		}
	}

	details := domain.CalculationDetails{
		AnchorPriceUSD: anchor.Price,
		AnchorSource:   anchor.Source,
		PathsFound:     len(estimates),
	}

	if len(estimates) == 0 {
		return domain.NewUnpriced(tok, domain.StateNoPath, snapshot, details)
	}

	kept, _ := domain.FilterOutliers(estimates, a.cfg.OutlierMaxDeviation)
	details.PathsSurviving = len(kept)
	if len(kept) < a.cfg.MinSurvivingPaths {
		return domain.NewUnpriced(tok, domain.StateInsufficientData, snapshot, details)
	}

	ranked := a.rank(kept, anchor)

	var weightedSum, weightTotal, liquidityTotal decimal.Decimal
	allStale := a.cfg.MaxPoolAge > 0
	for i, est := range kept {
		w := decimal.NewFromFloat(ranked[i].weight)
		weightedSum = weightedSum.Add(est.ImpliedRate.Mul(w))
		weightTotal = weightTotal.Add(w)
		liquidityTotal = liquidityTotal.Add(est.TotalLiquidity)
		if est.AgeSeconds <= a.cfg.MaxPoolAge.Seconds() {
			allStale = false
		}
	}
	if weightTotal.IsZero() {
		return domain.NewUnpriced(tok, domain.StateInsufficientData, snapshot, details)
	}

	avgRate := weightedSum.Div(weightTotal)
	usdPrice := avgRate.Mul(anchor.Price)

	variation := domain.RateVariation(kept)
	details.PriceVariation = variation
	details.TotalLiquidityUSD = liquidityTotal.Mul(anchor.Price)

	confidence := domain.Confidence(variation, liquidityTotal, len(kept), allStale, a.cfg.Confidence)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].rendered.Route < ranked[j].rendered.Route
	})

	paths := make([]domain.RankedPath, len(ranked))
	for i, r := range ranked {
		paths[i] = r.rendered
	}

	return &domain.PriceResult{
		TokenID:          tok.ID().String(),
		Symbol:           tok.Symbol(),
		State:            domain.StatePriced,
		USDPrice:         &usdPrice,
		Confidence:       confidence,
		PrimaryPath:      &paths[0],
		AlternativePaths: paths[1:],
		Details:          details,
		SnapshotVersion:  snapshot.Version,
		CalculatedAt:     snapshot.TakenAt,
	}
}

type rankedEstimate struct {
	weight   float64
	rendered domain.RankedPath
}

func (a *Aggregator) rank(estimates []domain.PathEstimate, anchor domain.AnchorPrice) []rankedEstimate {
	out := make([]rankedEstimate, len(estimates))
	for i, est := range estimates {
		w := domain.Weight(est, a.cfg.Weight)
		out[i] = rankedEstimate{
			weight: w,
			rendered: domain.RankedPath{
				Route:          est.Path.String(),
				Hops:           est.Path.Hops(),
				ImpliedRate:    est.ImpliedRate,
				USDPrice:       est.ImpliedRate.Mul(anchor.Price),
				Weight:         w,
				LiquidityUSD:   est.TotalLiquidity.Mul(anchor.Price),
				Reliability:    est.Reliability,
				PathConfidence: est.Confidence,
				AgeSeconds:     est.AgeSeconds,
			},
		}
	}
	return out
}
