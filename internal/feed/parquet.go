package feed

import (
	"context"
	"fmt"
	"time"

	"meridian/internal/domain"
	"meridian/internal/store"
)

// Compile-time interface check.
var _ BarSource = (*ParquetSource)(nil)

// ParquetSource serves bars from a local BarStore. It supports offline
// backtests against previously cached data; live subscription is not
// available.
type ParquetSource struct {
	store store.BarStore
}

// NewParquetSource creates a ParquetSource over the given store.
func NewParquetSource(s store.BarStore) *ParquetSource {
	return &ParquetSource{store: s}
}

// Connect is a no-op; local storage needs no connection.
func (s *ParquetSource) Connect(_ context.Context) error { return nil }

// FetchBars reads bars from local storage. The timeframe argument is
// ignored; the store holds whatever granularity was cached.
func (s *ParquetSource) FetchBars(ctx context.Context, symbol string, start, end time.Time, _ string) ([]domain.Bar, error) {
	bars, err := s.store.ReadBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s %s..%s", ErrNoData, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return bars, nil
}

// SubscribeBars is not supported for local storage.
func (s *ParquetSource) SubscribeBars(_ context.Context, _ string, _ BarHandler) (Subscription, error) {
	return nil, fmt.Errorf("%w: local source does not stream", ErrConnection)
}

// Disconnect is a no-op.
func (s *ParquetSource) Disconnect() {}
