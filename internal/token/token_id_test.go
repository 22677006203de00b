package token_test

import (
	"testing"

	"github.com/stxforge/pricegraph/internal/token"
)

func TestParseID(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"native stx", "stx", false},
		{"native stx uppercase", "STX", false},
		{"contract principal", "SP3NE50GEXFG9SZGTT51P40X2CKYSZ5CC4ZTZ7A2G.welshcorgicoin-token", false},
		{"sm principal", "SM3VDXK3WZZSA84XXFKAFAF15NNZX32CTSG82JFQ4.sbtc-token::sbtc", false},
		{"with asset name", "SP102V8P0F7JX67ARQ77WEA3D3CFB5XW39REDT0AM.token-alex", false},
		{"empty", "", true},
		{"no dot", "no-dot", true},
		{"bare principal", "SP102V8P0F7JX67ARQ77WEA3D3CFB5XW39REDT0AM", true},
		{"bad prefix", "XX1234.contract", true},
		{"non-c32 characters", "SP1ILOU.contract", true},
		{"empty contract name", "SP1ABCDEF.", true},
		{"contract name starts with digit", "SP1ABCDEF.9starts-digit", true},
		{"empty asset name", "SP1ABCDEF.token::", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := token.ParseID(tc.in)
			if tc.wantErr && err == nil {
				t.Errorf("ParseID(%q): expected error", tc.in)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("ParseID(%q): unexpected error %v", tc.in, err)
			}
		})
	}
}

func TestID_Parts(t *testing.T) {
	id := token.MustParseID("SP1ABCDEF.my-token::my-asset")
	if id.Principal() != "SP1ABCDEF.my-token" {
		t.Errorf("wrong principal: %s", id.Principal())
	}
	if id.AssetName() != "my-asset" {
		t.Errorf("wrong asset name: %s", id.AssetName())
	}
	if id.String() != "SP1ABCDEF.my-token::my-asset" {
		t.Errorf("wrong round trip: %s", id.String())
	}

	native := token.NewNativeID()
	if !native.IsNative() {
		t.Error("expected native id")
	}
	if native.String() != "stx" {
		t.Errorf("wrong native rendering: %s", native.String())
	}
}

func TestRegistry_ResolveAndAnchor(t *testing.T) {
	r := token.DefaultRegistry()

	tok, ok := r.Resolve(token.WELSH.ID().String())
	if !ok || tok.Symbol() != "WELSH" {
		t.Errorf("failed to resolve WELSH by contract id")
	}

	anchor := r.Anchor()
	if anchor == nil || anchor.Symbol() != "sBTC" {
		t.Error("expected sBTC as the registry anchor")
	}

	stables := r.Stablecoins()
	if len(stables) != 2 {
		t.Errorf("expected 2 stablecoins, got %d", len(stables))
	}
}

func TestRegistry_DuplicateAnchorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on second anchor registration")
		}
	}()

	r := token.NewRegistry()
	r.Register(token.New(token.IDSBTC, "sBTC", 8, token.AsAnchor()))
	r.Register(token.New(token.IDXBTC, "xBTC", 8, token.AsAnchor()))
}
