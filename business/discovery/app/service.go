package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/internal/apm"
	"github.com/stxforge/pricegraph/internal/apperror"
	"github.com/stxforge/pricegraph/internal/cache"
	"github.com/stxforge/pricegraph/internal/logger"
	"github.com/stxforge/pricegraph/internal/token"
)

// ServiceConfig holds the engine tuning for the discovery service.
type ServiceConfig struct {
	MaxHops     int
	Parallelism int
	CacheTTL    time.Duration
	Aggregator  AggregatorConfig
	MaxPoolAge  time.Duration
}

type resultKey struct {
	version uint64
	tokenID token.ID
}

// Service orchestrates the pricing pipeline: snapshot in, graph build,
// path enumeration, rate computation, outlier filtering, aggregation.
type Service struct {
	source   PoolSource
	oracle   AnchorOracle
	history  HistoryStore // nil when history is disabled
	registry *token.Registry
	log      logger.LoggerInterface
	cfg      ServiceConfig

	calc *RateCalculator
	agg  *Aggregator

	// results are cached per snapshot version so repeated queries on the
	// same frozen snapshot never mix pool states.
	results *cache.Cache[resultKey, *domain.PriceResult]

	graphMu      sync.Mutex
	graph        *PoolGraph
	graphVersion uint64

	tracer        apm.Tracer
	priceCounter  metric.Int64Counter
	priceDuration metric.Float64Histogram
}

// NewService creates the discovery service.
func NewService(source PoolSource, oracle AnchorOracle, history HistoryStore, registry *token.Registry, log logger.LoggerInterface, cfg ServiceConfig) *Service {
	if cfg.MaxHops < 1 {
		cfg.MaxHops = 4
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Second
	}

	meter := otel.GetMeterProvider().Meter("discovery")
	priceCounter, _ := meter.Int64Counter(
		"price_calculations_total",
		metric.WithDescription("Total number of token price calculations"),
	)
	priceDuration, _ := meter.Float64Histogram(
		"price_calculation_duration_seconds",
		metric.WithDescription("Duration of token price calculations"),
	)

	return &Service{
		source:        source,
		oracle:        oracle,
		history:       history,
		registry:      registry,
		log:           log,
		cfg:           cfg,
		calc:          NewRateCalculator(cfg.MaxPoolAge),
		agg:           NewAggregator(cfg.Aggregator),
		results:       cache.New[resultKey, *domain.PriceResult](cfg.CacheTTL),
		tracer:        apm.NewTracer("discovery"),
		priceCounter:  priceCounter,
		priceDuration: priceDuration,
	}
}

// Price computes the USD price of one token against the current snapshot.
func (s *Service) Price(ctx context.Context, id token.ID) (*domain.PriceResult, error) {
	tok, ok := s.registry.Get(id)
	if !ok {
		return nil, apperror.NotFound(apperror.CodeUnknownToken, id.String())
	}

	snapshot, graph, anchor, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	return s.priceOne(ctx, tok, snapshot, graph, anchor), nil
}

// PriceBySymbol resolves a symbol through the registry and prices it.
func (s *Service) PriceBySymbol(ctx context.Context, symbol string) (*domain.PriceResult, error) {
	tok, ok := s.registry.GetBySymbol(symbol)
	if !ok {
		return nil, apperror.NotFound(apperror.CodeUnknownToken, symbol)
	}
	return s.Price(ctx, tok.ID())
}

// PriceAll prices every requested token against one consistent snapshot.
// Tokens are independent once the snapshot is frozen, so they are priced
// in parallel up to the configured limit. Results preserve input order.
func (s *Service) PriceAll(ctx context.Context, ids []token.ID) ([]*domain.PriceResult, error) {
	snapshot, graph, anchor, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.PriceResult, len(ids))
	sem := make(chan struct{}, s.cfg.Parallelism)
	var wg sync.WaitGroup

	for i, id := range ids {
		tok, ok := s.registry.Get(id)
		if !ok {
			s.log.Warn(ctx, "skipping unknown token", "token", id.String())
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, tok *token.Token) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.priceOne(ctx, tok, snapshot, graph, anchor)
		}(i, tok)
	}
	wg.Wait()

	// Drop slots left empty by unknown tokens.
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// PriceRegistered prices every token in the registry.
func (s *Service) PriceRegistered(ctx context.Context) ([]*domain.PriceResult, error) {
	all := s.registry.All()
	ids := make([]token.ID, len(all))
	for i, tok := range all {
		ids[i] = tok.ID()
	}
	return s.PriceAll(ctx, ids)
}

// History returns stored price observations for a token.
func (s *Service) History(ctx context.Context, id token.ID, since time.Time, limit int) ([]domain.HistoryPoint, error) {
	if s.history == nil {
		return nil, apperror.New(apperror.CodeHistoryStoreError, apperror.WithContext("history store disabled"))
	}
	if !s.registry.Has(id) {
		return nil, apperror.NotFound(apperror.CodeUnknownToken, id.String())
	}
	points, err := s.history.Recent(ctx, id.String(), since, limit)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeHistoryStoreError, id.String())
	}
	return points, nil
}

// prepare fetches the snapshot and anchor price and reuses the pool graph
// when the snapshot version has not moved.
func (s *Service) prepare(ctx context.Context) (*domain.Snapshot, *PoolGraph, domain.AnchorPrice, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "discovery.prepare")
	defer span.End()

	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		span.NoticeError(err)
		return nil, nil, domain.AnchorPrice{}, apperror.Wrap(err, apperror.CodeFeedUnavailable, "loading pool snapshot")
	}

	anchor, err := s.oracle.AnchorPrice(ctx)
	if err != nil {
		span.NoticeError(err)
		return nil, nil, domain.AnchorPrice{}, apperror.Wrap(err, apperror.CodeOracleUnavailable, "loading anchor price")
	}

	s.graphMu.Lock()
	if s.graph == nil || s.graphVersion != snapshot.Version {
		graph := BuildPoolGraph(snapshot)
		for _, skip := range graph.Skipped() {
			s.log.Warn(ctx, "excluded pool from graph", "pool", skip.PoolID, "reason", skip.Reason)
		}
		s.graph = graph
		s.graphVersion = snapshot.Version
		s.log.Debug(ctx, "rebuilt pool graph",
			"version", snapshot.Version,
			"pools", graph.PoolCount(),
			"tokens", graph.TokenCount(),
			"skipped", len(graph.Skipped()))
	}
	graph := s.graph
	s.graphMu.Unlock()

	return snapshot, graph, anchor, nil
}

func (s *Service) priceOne(ctx context.Context, tok *token.Token, snapshot *domain.Snapshot, graph *PoolGraph, anchor domain.AnchorPrice) *domain.PriceResult {
	key := resultKey{version: snapshot.Version, tokenID: tok.ID()}
	if cached, ok := s.results.Get(key); ok {
		return cached
	}

	ctx, span := s.tracer.StartSpanFromContext(ctx, "discovery.price")
	defer span.End()
	span.SetAttribute(attribute.String("token", tok.Symbol()))

	start := time.Now()

	anchorTok := s.registry.Anchor()
	var estimates []domain.PathEstimate
	if !tok.IsAnchor() && !tok.IsStablecoin() {
		paths := FindPaths(graph, tok, anchorTok, s.cfg.MaxHops)
		estimates = make([]domain.PathEstimate, 0, len(paths))
		for _, path := range paths {
			est := s.calc.ComputeRate(path, snapshot.TakenAt)
			if est.ImpliedRate.IsZero() {
				continue
			}
			estimates = append(estimates, est)
		}
	}

	result := s.agg.Aggregate(tok, estimates, anchor, snapshot)
	s.results.Set(key, result)

	elapsed := time.Since(start)
	span.SetAttribute(attribute.String("state", string(result.State)))
	s.priceCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("token", tok.Symbol()),
		attribute.String("state", string(result.State)),
	))
	s.priceDuration.Record(ctx, elapsed.Seconds())

	if !result.Priced() {
		s.log.Debug(ctx, "token not priced",
			"token", tok.Symbol(),
			"state", string(result.State),
			"paths_found", result.Details.PathsFound)
	}

	if s.history != nil && result.Priced() {
		if err := s.history.Record(ctx, result); err != nil {
			s.log.Warn(ctx, "failed to record price history", "token", tok.Symbol(), "error", err)
		}
	}

	return result
}
