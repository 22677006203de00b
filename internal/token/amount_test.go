package token_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stxforge/pricegraph/internal/token"
)

func TestAmount_Basic(t *testing.T) {
	// 1 sBTC = 1e8 sats
	oneBTC := token.NewAmount(token.SBTC, big.NewInt(1e8))

	if oneBTC.IsZero() {
		t.Error("expected non-zero amount")
	}

	d := oneBTC.ToDecimal()
	if !d.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", d.String())
	}

	if oneBTC.String() != "1 sBTC" {
		t.Errorf("expected '1 sBTC', got '%s'", oneBTC.String())
	}
}

func TestAmount_Add(t *testing.T) {
	one := token.NewAmount(token.SBTC, big.NewInt(1e8))
	two := token.NewAmount(token.SBTC, big.NewInt(2e8))

	sum, err := one.Add(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sum.ToDecimal().Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected 3, got %s", sum.ToDecimal().String())
	}
}

func TestAmount_CannotAddDifferentTokens(t *testing.T) {
	oneBTC := token.NewAmount(token.SBTC, big.NewInt(1e8))
	oneUSDC := token.NewAmount(token.AeUSDC, big.NewInt(1e6))

	_, err := oneBTC.Add(oneUSDC)
	if err == nil {
		t.Error("expected error when adding different tokens")
	}
}

func TestAmount_SubNegativeError(t *testing.T) {
	one := token.NewAmount(token.SBTC, big.NewInt(1e8))
	two := token.NewAmount(token.SBTC, big.NewInt(2e8))

	_, err := one.Sub(two)
	if err == nil {
		t.Error("expected error for negative result")
	}
}

func TestAmount_DecimalConversion(t *testing.T) {
	// 0.5 aeUSDC with 6 decimals = 500000 micro-units
	amt, err := token.ParseString(token.AeUSDC, "0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amt.Raw().Cmp(big.NewInt(500000)) != 0 {
		t.Errorf("expected 500000, got %s", amt.Raw().String())
	}
}

func TestParseDecimal_TooManyDecimals(t *testing.T) {
	// aeUSDC has 6 decimals, 1.1234567 has 7
	d := decimal.NewFromFloat(1.1234567)
	_, err := token.ParseDecimal(token.AeUSDC, d)
	if err == nil {
		t.Error("expected error for too many decimals")
	}
}
