package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"StockAnalyzer/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists fetched financials to Postgres, for deployments
// where several bot instances share one cache.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and creates the cache table.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("[INFO] postgres store connected: %s", config.ConnConfig.Host)
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS financials_cache (
			source     TEXT        NOT NULL,
			symbol     TEXT        NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL,
			years      INTEGER     NOT NULL,
			payload    JSONB       NOT NULL,
			PRIMARY KEY (source, symbol)
		)`)
	return err
}

func (s *PostgresStore) Load(ctx context.Context, source, symbol string, maxAge time.Duration) ([]model.YearlyFinancials, bool, error) {
	var (
		fetchedAt time.Time
		payload   []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT fetched_at, payload FROM financials_cache WHERE source = $1 AND symbol = $2`,
		source, symbol,
	).Scan(&fetchedAt, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s/%s: %w", source, symbol, err)
	}
	if !fresh(fetchedAt, maxAge, time.Now()) {
		return nil, false, nil
	}

	var recs []model.YearlyFinancials
	if err := json.Unmarshal(payload, &recs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal db cached data: %w", err)
	}
	return recs, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, source, symbol string, recs []model.YearlyFinancials) error {
	payload, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", source, symbol, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO financials_cache (source, symbol, fetched_at, years, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, symbol) DO UPDATE SET
			fetched_at = EXCLUDED.fetched_at,
			years      = EXCLUDED.years,
			payload    = EXCLUDED.payload`,
		source, symbol, time.Now(), len(recs), payload,
	)
	return err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
