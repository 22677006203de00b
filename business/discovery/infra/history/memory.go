package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stxforge/pricegraph/business/discovery/domain"
)

// MemoryStore is an in-memory history store, used in tests and when no
// database is configured but history reads are still wanted.
type MemoryStore struct {
	mu     sync.RWMutex
	points map[string][]domain.HistoryPoint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[string][]domain.HistoryPoint)}
}

// Record stores one priced result.
func (s *MemoryStore) Record(ctx context.Context, result *domain.PriceResult) error {
	if !result.Priced() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.points[result.TokenID]
	for _, p := range existing {
		if p.SnapshotVersion == result.SnapshotVersion {
			return nil
		}
	}

	s.points[result.TokenID] = append(existing, domain.HistoryPoint{
		TokenID:         result.TokenID,
		USDPrice:        *result.USDPrice,
		Confidence:      result.Confidence,
		PathCount:       result.Details.PathsSurviving,
		SnapshotVersion: result.SnapshotVersion,
		CalculatedAt:    result.CalculatedAt,
	})
	return nil
}

// Recent returns stored observations for a token, newest first.
func (s *MemoryStore) Recent(ctx context.Context, tokenID string, since time.Time, limit int) ([]domain.HistoryPoint, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.HistoryPoint
	for _, p := range s.points[tokenID] {
		if p.CalculatedAt.Before(since) {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CalculatedAt.After(out[j].CalculatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
