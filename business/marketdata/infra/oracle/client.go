// Package oracle implements the anchor price oracle adapter.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
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
)

const (
	tracerName = "oracle"

	priceEndpoint = "/v1/prices/btc"

	defaultTimeout = 5 * time.Second
)

// ClientConfig holds configuration for the oracle client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client fetches the anchor asset's USD price.
type Client struct {
	client  httpclient.Client
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	breaker *circuitbreaker.CircuitBreaker[domain.OraclePrice]
}

// NewClient creates a new oracle client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("oracle: base URL is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("oracle"),
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
		logger:  log,
		tracer:  tracer,
		breaker: circuitbreaker.New[domain.OraclePrice](circuitbreaker.DefaultConfig("oracle"), nil),
	}, nil
}

// priceDTO is the oracle's wire representation.
type priceDTO struct {
	Price      string  `json:"price"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Timestamp  int64   `json:"timestamp"` // unix seconds
}

// FetchAnchorPrice pulls the anchor USD price from the oracle.
func (c *Client) FetchAnchorPrice(ctx context.Context) (domain.OraclePrice, error) {
	return c.breaker.Execute(func() (domain.OraclePrice, error) {
		return c.fetch(ctx)
	})
}

func (c *Client) fetch(ctx context.Context) (domain.OraclePrice, error) {
	ctx, span := c.tracer.Start(ctx, "oracle.fetch_anchor_price")
	defer span.End()

	var dto priceDTO
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "anchor_price")),
		httpclient.WithResponseErrorHandler(oracleErrorHandler),
	).
		SetResult(&dto).
		Get(ctx, priceEndpoint)

	if err != nil {
		span.RecordError(err)
		return domain.OraclePrice{}, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch anchor price"))
	}

	if resp.IsError() {
		return domain.OraclePrice{}, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	price, err := decimal.NewFromString(dto.Price)
	if err != nil {
		return domain.OraclePrice{}, apperror.New(apperror.CodeOracleDecodeError,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("invalid price %q", dto.Price)))
	}
	if !price.IsPositive() {
		return domain.OraclePrice{}, apperror.New(apperror.CodeOracleDecodeError,
			apperror.WithContext(fmt.Sprintf("non-positive price %s", price)))
	}

	confidence := dto.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	span.SetAttributes(
		attribute.String("source", dto.Source),
		attribute.Float64("confidence", confidence),
	)
	c.logger.Debug(ctx, "fetched anchor price", "price", price.String(), "source", dto.Source)

	return domain.OraclePrice{
		Price:      price,
		Source:     dto.Source,
		Confidence: confidence,
		Timestamp:  time.Unix(dto.Timestamp, 0).UTC(),
	}, nil
}

// oracleError represents an error payload from the oracle.
type oracleError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *oracleError) Error() string {
	return fmt.Sprintf("oracle error %s: %s", e.Code, e.Message)
}

func oracleErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr oracleError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
