// Package history implements price history persistence for the discovery
// context.
package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS price_history (
	id               BIGSERIAL PRIMARY KEY,
	token_id         TEXT        NOT NULL,
	usd_price        NUMERIC     NOT NULL,
	confidence       DOUBLE PRECISION NOT NULL,
	path_count       INT         NOT NULL,
	snapshot_version BIGINT      NOT NULL,
	calculated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS price_history_token_time_idx
	ON price_history (token_id, calculated_at DESC);
`

// PostgresStore persists price observations in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  logger.LoggerInterface
}

// NewPostgresStore creates the store and ensures the schema exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, log logger.LoggerInterface) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, log: log}, nil
}

// Record stores one priced result. Duplicate observations for the same
// snapshot version are skipped so the refresh loop and API queries do not
// double-write.
func (s *PostgresStore) Record(ctx context.Context, result *domain.PriceResult) error {
	if !result.Priced() {
		return nil
	}

	const q = `
		INSERT INTO price_history (token_id, usd_price, confidence, path_count, snapshot_version, calculated_at)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM price_history WHERE token_id = $1 AND snapshot_version = $5
		)`

	_, err := s.pool.Exec(ctx, q,
		result.TokenID,
		result.USDPrice.String(),
		result.Confidence,
		result.Details.PathsSurviving,
		int64(result.SnapshotVersion),
		result.CalculatedAt,
	)
	return err
}

// Recent returns stored observations for a token, newest first.
func (s *PostgresStore) Recent(ctx context.Context, tokenID string, since time.Time, limit int) ([]domain.HistoryPoint, error) {
	if limit <= 0 {
		limit = 100
	}

	const q = `
		SELECT token_id, usd_price, confidence, path_count, snapshot_version, calculated_at
		FROM price_history
		WHERE token_id = $1 AND calculated_at >= $2
		ORDER BY calculated_at DESC
		LIMIT $3`

	rows, err := s.pool.Query(ctx, q, tokenID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.HistoryPoint
	for rows.Next() {
		var p domain.HistoryPoint
		var version int64
		if err := rows.Scan(&p.TokenID, &p.USDPrice, &p.Confidence, &p.PathCount, &version, &p.CalculatedAt); err != nil {
			return nil, err
		}
		p.SnapshotVersion = uint64(version)
		points = append(points, p)
	}
	return points, rows.Err()
}

// Prune deletes observations older than the retention window.
func (s *PostgresStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	tag, err := s.pool.Exec(ctx, `DELETE FROM price_history WHERE calculated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
