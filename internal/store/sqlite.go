package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"StockAnalyzer/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists fetched financials to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the CLI read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS financials_cache (
			source     TEXT    NOT NULL,
			symbol     TEXT    NOT NULL,
			fetched_at INTEGER NOT NULL,
			years      INTEGER NOT NULL,
			payload    TEXT    NOT NULL,
			PRIMARY KEY (source, symbol)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_financials_fetched ON financials_cache(fetched_at)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("exec %q: %w", q[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, source, symbol string, maxAge time.Duration) ([]model.YearlyFinancials, bool, error) {
	var (
		fetchedAt int64
		payload   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at, payload FROM financials_cache WHERE source = ? AND symbol = ?`,
		source, symbol,
	).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s/%s: %w", source, symbol, err)
	}
	if !fresh(time.Unix(fetchedAt, 0), maxAge, s.now()) {
		return nil, false, nil
	}

	var recs []model.YearlyFinancials
	if err := json.Unmarshal([]byte(payload), &recs); err != nil {
		return nil, false, fmt.Errorf("decode %s/%s: %w", source, symbol, err)
	}
	return recs, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, source, symbol string, recs []model.YearlyFinancials) error {
	payload, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", source, symbol, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT INTO financials_cache
		(source, symbol, fetched_at, years, payload)
		VALUES (?,?,?,?,?)
		ON CONFLICT(source, symbol) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			years      = excluded.years,
			payload    = excluded.payload`,
		source, symbol, s.now().Unix(), len(recs), string(payload),
	)
	return err
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
