package store

import (
	"context"
	"time"

	"StockAnalyzer/internal/model"
)

// NoopStore is used when no database is configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Load(_ context.Context, _, _ string, _ time.Duration) ([]model.YearlyFinancials, bool, error) {
	return nil, false, nil
}
func (n *NoopStore) Save(_ context.Context, _, _ string, _ []model.YearlyFinancials) error {
	return nil
}
func (n *NoopStore) Close() error { return nil }
