// Package rest implements the HTTP API for token prices.
package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/stxforge/pricegraph/business/discovery/app"
	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/internal/apperror"
	"github.com/stxforge/pricegraph/internal/logger"
	"github.com/stxforge/pricegraph/internal/token"
)

// Handler serves the price discovery HTTP API.
type Handler struct {
	discovery *app.Service
	registry  *token.Registry
	log       logger.LoggerInterface
}

// NewHandler creates the API handler.
func NewHandler(discovery *app.Service, registry *token.Registry, log logger.LoggerInterface) *Handler {
	return &Handler{discovery: discovery, registry: registry, log: log}
}

// Routes registers all API routes on the router.
func (h *Handler) Routes(r *mux.Router) {
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/prices", h.handlePrices).Methods(http.MethodGet)
	v1.HandleFunc("/prices/{tokenId}", h.handlePrice).Methods(http.MethodGet)
	v1.HandleFunc("/history/{tokenId}", h.handleHistory).Methods(http.MethodGet)
	v1.HandleFunc("/tokens", h.handleTokens).Methods(http.MethodGet)
}

// handlePrice prices one token. The tokenId path segment accepts a full
// contract identifier, "stx", or a registered symbol.
func (h *Handler) handlePrice(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["tokenId"]

	tok, err := h.resolve(raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.discovery.Price(r.Context(), tok.ID())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// handlePrices prices multiple tokens in one call. With no tokens query
// parameter, every registered token is priced.
func (h *Handler) handlePrices(w http.ResponseWriter, r *http.Request) {
	var results []*domain.PriceResult
	var err error

	if raw := r.URL.Query().Get("tokens"); raw != "" {
		ids := make([]token.ID, 0)
		for _, part := range strings.Split(raw, ",") {
			tok, resolveErr := h.resolve(strings.TrimSpace(part))
			if resolveErr != nil {
				h.writeError(w, r, resolveErr)
				return
			}
			ids = append(ids, tok.ID())
		}
		results, err = h.discovery.PriceAll(r.Context(), ids)
	} else {
		results, err = h.discovery.PriceRegistered(r.Context())
	}

	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"prices": results})
}

// handleHistory returns stored price observations for one token.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	tok, err := h.resolve(mux.Vars(r)["tokenId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			h.writeError(w, r, apperror.Validation(apperror.CodeInvalidInput, "since must be RFC3339"))
			return
		}
		since = parsed
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil || parsed < 1 || parsed > 1000 {
			h.writeError(w, r, apperror.Validation(apperror.CodeInvalidInput, "limit must be in [1, 1000]"))
			return
		}
		limit = parsed
	}

	points, err := h.discovery.History(r.Context(), tok.ID(), since, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"tokenId": tok.ID().String(),
		"points":  points,
	})
}

// handleTokens lists the registered tokens.
func (h *Handler) handleTokens(w http.ResponseWriter, r *http.Request) {
	all := h.registry.All()
	out := make([]map[string]any, len(all))
	for i, tok := range all {
		out[i] = map[string]any{
			"tokenId":      tok.ID().String(),
			"symbol":       tok.Symbol(),
			"name":         tok.Name(),
			"decimals":     tok.Decimals(),
			"isStablecoin": tok.IsStablecoin(),
			"isAnchor":     tok.IsAnchor(),
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"tokens": out})
}

func (h *Handler) resolve(raw string) (*token.Token, error) {
	if raw == "" {
		return nil, apperror.Validation(apperror.CodeRequiredField, "tokenId")
	}

	if tok, ok := h.registry.Resolve(raw); ok {
		return tok, nil
	}
	if tok, ok := h.registry.GetBySymbol(raw); ok {
		return tok, nil
	}

	if _, err := token.ParseID(raw); err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidContractID, raw)
	}
	return nil, apperror.NotFound(apperror.CodeUnknownToken, raw)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.Wrap(err, apperror.CodeInternalError, "")

	if appErr.StatusCode >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	json.NewEncoder(w).Encode(appErr.ToResponse())
}
