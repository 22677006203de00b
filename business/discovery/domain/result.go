package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/internal/token"
)

// ResultState classifies the outcome of a pricing pass for one token.
type ResultState string

const (
	// StatePriced means a usable USD price was produced.
	StatePriced ResultState = "priced"

	// StateNoPath means no liquidity route to the anchor exists within
	// the hop budget. Expected for isolated or illiquid tokens.
	StateNoPath ResultState = "no_path"

	// StateInsufficientData means paths were found but too few survived
	// outlier filtering.
	StateInsufficientData ResultState = "insufficient_data"
)

// RankedPath is a surviving path estimate with its final weight and the
// USD price it individually implies.
type RankedPath struct {
	Route          string          `json:"route"`
	Hops           int             `json:"hops"`
	ImpliedRate    decimal.Decimal `json:"impliedRate"`
	USDPrice       decimal.Decimal `json:"usdPrice"`
	Weight         float64         `json:"weight"`
	LiquidityUSD   decimal.Decimal `json:"liquidityUsd"`
	Reliability    float64         `json:"reliability"`
	PathConfidence float64         `json:"pathConfidence"`
	AgeSeconds     float64         `json:"ageSeconds"`
}

// CalculationDetails records the inputs behind an aggregated price.
type CalculationDetails struct {
	AnchorPriceUSD    decimal.Decimal `json:"anchorPriceUsd"`
	AnchorSource      string          `json:"anchorSource"`
	PathsFound        int             `json:"pathsFound"`
	PathsSurviving    int             `json:"pathsSurviving"`
	TotalLiquidityUSD decimal.Decimal `json:"totalLiquidityUsd"`
	PriceVariation    decimal.Decimal `json:"priceVariation"`
}

// PriceResult is the outcome of pricing a single token against one frozen
// snapshot. Absence of a price is an expected, displayable state, not an
// error.
type PriceResult struct {
	TokenID          string             `json:"tokenId"`
	Symbol           string             `json:"symbol"`
	State            ResultState        `json:"state"`
	USDPrice         *decimal.Decimal   `json:"usdPrice,omitempty"`
	Confidence       float64            `json:"confidence"`
	PrimaryPath      *RankedPath        `json:"primaryPath,omitempty"`
	AlternativePaths []RankedPath       `json:"alternativePaths,omitempty"`
	Details          CalculationDetails `json:"calculationDetails"`
	SnapshotVersion  uint64             `json:"snapshotVersion"`
	CalculatedAt     time.Time          `json:"calculatedAt"`
}

// HistoryPoint is one stored observation of a token's price.
type HistoryPoint struct {
	TokenID         string          `json:"tokenId"`
	USDPrice        decimal.Decimal `json:"usdPrice"`
	Confidence      float64         `json:"confidence"`
	PathCount       int             `json:"pathCount"`
	SnapshotVersion uint64          `json:"snapshotVersion"`
	CalculatedAt    time.Time       `json:"calculatedAt"`
}

// Priced reports whether the result carries a usable price.
func (r *PriceResult) Priced() bool {
	return r.State == StatePriced && r.USDPrice != nil
}

// NewUnpriced builds a result for a token that could not be priced.
func NewUnpriced(tok *token.Token, state ResultState, snapshot *Snapshot, details CalculationDetails) *PriceResult {
	return &PriceResult{
		TokenID:         tok.ID().String(),
		Symbol:          tok.Symbol(),
		State:           state,
		Confidence:      0,
		Details:         details,
		SnapshotVersion: snapshot.Version,
		CalculatedAt:    snapshot.TakenAt,
	}
}
