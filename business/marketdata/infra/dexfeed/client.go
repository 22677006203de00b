// Package dexfeed implements the pool snapshot feed adapters.
package dexfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stxforge/pricegraph/business/marketdata/domain"
	"github.com/stxforge/pricegraph/internal/apperror"
	"github.com/stxforge/pricegraph/internal/circuitbreaker"
	"github.com/stxforge/pricegraph/internal/httpclient"
	"github.com/stxforge/pricegraph/internal/logger"
	"github.com/stxforge/pricegraph/internal/ratelimit"
)

const (
	tracerName = "dexfeed"

	poolsEndpoint = "/v1/pools"

	defaultTimeout = 10 * time.Second
)

// ClientConfig holds configuration for the snapshot feed client.
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimitRPS float64
}

// Client fetches full pool snapshots over HTTP. Requests pass through a
// rate limiter and a circuit breaker so a struggling feed is backed off
// instead of hammered.
type Client struct {
	client  httpclient.Client
	config  ClientConfig
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[[]domain.PoolRecord]
}

// NewClient creates a new snapshot feed client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("dexfeed: base URL is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 5
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("dexfeed"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		client:  client,
		config:  cfg,
		logger:  log,
		tracer:  tracer,
		limiter: ratelimit.NewWithBurst(rps, int(rps)+1),
		breaker: circuitbreaker.New[[]domain.PoolRecord](circuitbreaker.DefaultConfig("dexfeed"), nil),
	}, nil
}

// poolDTO is the feed's wire representation of one pool.
type poolDTO struct {
	PoolID    string `json:"poolId"`
	TokenX    string `json:"tokenX"`
	TokenY    string `json:"tokenY"`
	ReserveX  string `json:"reserveX"`
	ReserveY  string `json:"reserveY"`
	FeeRate   string `json:"feeRate"`
	UpdatedAt int64  `json:"updatedAt"` // unix seconds
}

// poolsResponse is the feed's snapshot payload.
type poolsResponse struct {
	Pools []poolDTO `json:"pools"`
}

// FetchSnapshot pulls the full pool list from the feed.
func (c *Client) FetchSnapshot(ctx context.Context) ([]domain.PoolRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return c.breaker.Execute(func() ([]domain.PoolRecord, error) {
		return c.fetch(ctx)
	})
}

func (c *Client) fetch(ctx context.Context) ([]domain.PoolRecord, error) {
	ctx, span := c.tracer.Start(ctx, "dexfeed.fetch_snapshot")
	defer span.End()

	var result poolsResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "pools")),
		httpclient.WithResponseErrorHandler(feedErrorHandler),
	).
		SetResult(&result).
		Get(ctx, poolsEndpoint)

	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeFeedUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch pool snapshot"))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeFeedUnavailable,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	records := make([]domain.PoolRecord, 0, len(result.Pools))
	for _, dto := range result.Pools {
		rec, err := dto.toRecord()
		if err != nil {
			c.logger.Warn(ctx, "skipping undecodable pool", "pool", dto.PoolID, "error", err)
			continue
		}
		records = append(records, rec)
	}

	span.SetAttributes(attribute.Int("pools", len(records)))
	c.logger.Debug(ctx, "fetched pool snapshot", "pools", len(records))
	return records, nil
}

func (d *poolDTO) toRecord() (domain.PoolRecord, error) {
	reserveX, ok := new(big.Int).SetString(d.ReserveX, 10)
	if !ok {
		return domain.PoolRecord{}, fmt.Errorf("invalid reserveX %q", d.ReserveX)
	}
	reserveY, ok := new(big.Int).SetString(d.ReserveY, 10)
	if !ok {
		return domain.PoolRecord{}, fmt.Errorf("invalid reserveY %q", d.ReserveY)
	}

	feeRate := decimal.Zero
	if d.FeeRate != "" {
		var err error
		feeRate, err = decimal.NewFromString(d.FeeRate)
		if err != nil {
			return domain.PoolRecord{}, fmt.Errorf("invalid feeRate %q: %w", d.FeeRate, err)
		}
	}

	return domain.PoolRecord{
		PoolID:    d.PoolID,
		TokenX:    d.TokenX,
		TokenY:    d.TokenY,
		ReserveX:  reserveX,
		ReserveY:  reserveY,
		FeeRate:   feeRate,
		UpdatedAt: time.Unix(d.UpdatedAt, 0).UTC(),
	}, nil
}

// feedError represents an error payload from the feed.
type feedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *feedError) Error() string {
	return fmt.Sprintf("feed error %s: %s", e.Code, e.Message)
}

// feedErrorHandler parses feed error responses.
func feedErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr feedError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
