package app

import (
	"context"
	"sync"
	"time"

	"github.com/stxforge/pricegraph/business/marketdata/domain"
	"github.com/stxforge/pricegraph/internal/apperror"
	"github.com/stxforge/pricegraph/internal/cache"
	"github.com/stxforge/pricegraph/internal/logger"
)

// ServiceConfig holds marketdata service tuning.
type ServiceConfig struct {
	RefreshInterval  time.Duration
	OracleCacheTTL   time.Duration
	OracleStaleAfter time.Duration
}

// Service maintains the current pool snapshot and anchor price. It is the
// only writer of snapshot state; consumers get immutable point-in-time
// values.
type Service struct {
	fetcher  SnapshotFetcher
	streamer PoolStreamer // nil when streaming is not configured
	oracle   OracleClient
	log      logger.LoggerInterface
	cfg      ServiceConfig

	mu       sync.RWMutex
	snapshot *domain.PoolSnapshot
	byPool   map[string]int // pool id -> index into snapshot.Pools
	version  uint64

	oracleCache *cache.Cache[string, domain.OraclePrice]
}

// NewService creates the marketdata service.
func NewService(fetcher SnapshotFetcher, streamer PoolStreamer, oracle OracleClient, log logger.LoggerInterface, cfg ServiceConfig) *Service {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 10 * time.Second
	}
	if cfg.OracleCacheTTL <= 0 {
		cfg.OracleCacheTTL = 30 * time.Second
	}
	return &Service{
		fetcher:     fetcher,
		streamer:    streamer,
		oracle:      oracle,
		log:         log,
		cfg:         cfg,
		oracleCache: cache.New[string, domain.OraclePrice](cfg.OracleCacheTTL),
	}
}

// Start performs the initial snapshot load and launches the refresh loop
// and, when configured, the streaming subscription.
func (s *Service) Start(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return err
	}

	go s.refreshLoop(ctx)

	if s.streamer != nil {
		if err := s.streamer.Start(ctx, s.ApplyUpdate); err != nil {
			// Polling still works without the stream.
			s.log.Warn(ctx, "pool stream unavailable, falling back to polling", "error", err)
		}
	}

	return nil
}

// Snapshot returns the current point-in-time snapshot.
func (s *Service) Snapshot(ctx context.Context) (*domain.PoolSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, apperror.New(apperror.CodeSnapshotNotLoaded)
	}
	return s.snapshot, nil
}

// AnchorPrice returns the cached anchor price, fetching on expiry. A
// price past the staleness threshold is still served with its confidence
// halved; approximate stale pricing beats no data.
func (s *Service) AnchorPrice(ctx context.Context) (domain.OraclePrice, error) {
	if cached, ok := s.oracleCache.Get("anchor"); ok {
		return cached, nil
	}

	price, err := s.oracle.FetchAnchorPrice(ctx)
	if err != nil {
		return domain.OraclePrice{}, apperror.Wrap(err, apperror.CodeOracleUnavailable, "fetching anchor price")
	}

	if s.cfg.OracleStaleAfter > 0 && time.Since(price.Timestamp) > s.cfg.OracleStaleAfter {
		s.log.Warn(ctx, "anchor oracle price is stale",
			"source", price.Source,
			"age", time.Since(price.Timestamp).String())
		price.Confidence /= 2
	}

	s.oracleCache.Set("anchor", price)
	return price, nil
}

func (s *Service) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.refresh(ctx); err != nil {
				s.log.Warn(ctx, "snapshot refresh failed", "error", err)
			}
		}
	}
}

// refresh pulls a full snapshot and swaps it in wholesale. Malformed
// records are skipped with a warning; one bad pool never aborts the pass.
func (s *Service) refresh(ctx context.Context) error {
	records, err := s.fetcher.FetchSnapshot(ctx)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeFeedUnavailable, "fetching pool snapshot")
	}

	valid := make([]domain.PoolRecord, 0, len(records))
	byPool := make(map[string]int, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			s.log.Warn(ctx, "skipping malformed pool record", "pool", rec.PoolID, "error", err)
			continue
		}
		byPool[rec.PoolID] = len(valid)
		valid = append(valid, rec)
	}

	s.mu.Lock()
	s.version++
	s.snapshot = &domain.PoolSnapshot{
		Version: s.version,
		TakenAt: time.Now().UTC(),
		Pools:   valid,
	}
	s.byPool = byPool
	s.mu.Unlock()

	s.log.Debug(ctx, "pool snapshot refreshed", "pools", len(valid), "skipped", len(records)-len(valid))
	return nil
}

// ApplyUpdate merges one streamed pool update into a fresh snapshot value.
// The previous snapshot is never mutated; readers holding it keep a
// consistent view.
func (s *Service) ApplyUpdate(rec domain.PoolRecord) {
	ctx := context.Background()
	if err := rec.Validate(); err != nil {
		s.log.Warn(ctx, "skipping malformed pool update", "pool", rec.PoolID, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return
	}

	pools := make([]domain.PoolRecord, len(s.snapshot.Pools))
	copy(pools, s.snapshot.Pools)
	byPool := make(map[string]int, len(s.byPool)+1)
	for k, v := range s.byPool {
		byPool[k] = v
	}

	if idx, ok := byPool[rec.PoolID]; ok {
		pools[idx] = rec
	} else {
		byPool[rec.PoolID] = len(pools)
		pools = append(pools, rec)
	}

	s.version++
	s.snapshot = &domain.PoolSnapshot{
		Version: s.version,
		TakenAt: time.Now().UTC(),
		Pools:   pools,
	}
	s.byPool = byPool
}
