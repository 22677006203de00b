package dexfeed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stxforge/pricegraph/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func TestClient_FetchSnapshot(t *testing.T) {
	response := poolsResponse{
		Pools: []poolDTO{
			{
				PoolID:    "SP1.amm.welsh-stx",
				TokenX:    "SP3NE50GEXFG9SZGTT51P40X2CKYSZ5CC4ZTZ7A2G.welshcorgicoin-token",
				TokenY:    "stx",
				ReserveX:  "500000000000",
				ReserveY:  "100000000000",
				FeeRate:   "0.003",
				UpdatedAt: time.Now().Unix(),
			},
			{
				PoolID:    "SP1.amm.broken",
				TokenX:    "SP1ABCDEF.token-a",
				TokenY:    "SP1ABCDEF.token-b",
				ReserveX:  "not-a-number",
				ReserveY:  "1",
				UpdatedAt: time.Now().Unix(),
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/pools" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL}, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	records, err := client.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The undecodable pool is skipped, not fatal.
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.PoolID != "SP1.amm.welsh-stx" {
		t.Errorf("wrong pool id: %s", rec.PoolID)
	}
	if rec.ReserveX.String() != "500000000000" {
		t.Errorf("wrong reserveX: %s", rec.ReserveX)
	}
	if !rec.FeeRate.Equal(decimal.RequireFromString("0.003")) {
		t.Errorf("wrong fee rate: %s", rec.FeeRate)
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("fetched record failed validation: %v", err)
	}
}

func TestClient_FetchSnapshotServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(feedError{Code: "MAINTENANCE", Message: "feed down"})
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL}, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.FetchSnapshot(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 503")
	}
}

func TestClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{}, testLogger()); err == nil {
		t.Fatal("expected error for missing base URL")
	}
}

func TestPoolDTO_ToRecord(t *testing.T) {
	dto := poolDTO{
		PoolID:    "p1",
		TokenX:    "SP1ABCDEF.token-a",
		TokenY:    "SP1ABCDEF.token-b",
		ReserveX:  "123",
		ReserveY:  "456",
		UpdatedAt: 1_700_000_000,
	}

	rec, err := dto.toRecord()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.FeeRate.IsZero() {
		t.Errorf("empty fee rate must default to zero, got %s", rec.FeeRate)
	}
	if rec.UpdatedAt.Unix() != 1_700_000_000 {
		t.Errorf("wrong timestamp: %d", rec.UpdatedAt.Unix())
	}

	dto.ReserveY = "-"
	if _, err := dto.toRecord(); err == nil {
		t.Error("expected error for malformed reserve")
	}
}
