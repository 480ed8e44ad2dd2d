package store

import (
	"context"
	"time"

	"StockAnalyzer/internal/model"
)

// Store persists raw provider records keyed by source and symbol.
type Store interface {
	// Load returns the cached records and whether a usable entry exists.
	// Entries older than maxAge are ignored; maxAge <= 0 accepts any age.
	Load(ctx context.Context, source, symbol string, maxAge time.Duration) ([]model.YearlyFinancials, bool, error)
	Save(ctx context.Context, source, symbol string, recs []model.YearlyFinancials) error
	Close() error
}

// Open picks a backend: Postgres when postgresURL is set, then SQLite, else Noop.
func Open(ctx context.Context, sqlitePath, postgresURL string) (Store, error) {
	switch {
	case postgresURL != "":
		s, err := NewPostgresStore(ctx, postgresURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case sqlitePath != "":
		s, err := NewSQLiteStore(sqlitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return NewNoopStore(), nil
	}
}

func fresh(fetchedAt time.Time, maxAge time.Duration, now time.Time) bool {
	return maxAge <= 0 || now.Sub(fetchedAt) <= maxAge
}
