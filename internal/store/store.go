// Package store defines storage interfaces and implementations for
// persisting bar data and archived backtest runs.
package store

import (
	"context"
	"time"

	"meridian/internal/domain"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars to storage.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end].
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols available in storage.
	ListSymbols(ctx context.Context) ([]string, error)
}

// RunRecord is one archived backtest run: the parameters it was launched
// with plus the full result.
type RunRecord struct {
	ID             int64
	Symbol         string
	Start          time.Time
	End            time.Time
	Timeframe      string
	InitialCapital float64
	Status         domain.RunStatus
	FinalPnL       float64
	CreatedAt      time.Time
	Trades         []domain.Trade
	Equity         []domain.EquityPoint
}

// RunSummary is the listing view of an archived run, without the trade
// and equity detail.
type RunSummary struct {
	ID             int64
	Symbol         string
	Start          time.Time
	End            time.Time
	Timeframe      string
	InitialCapital float64
	Status         domain.RunStatus
	FinalPnL       float64
	TradeCount     int
	CreatedAt      time.Time
}

// RunStore archives backtest runs.
type RunStore interface {
	// SaveRun persists a run with its trades and equity curve, returning
	// the assigned run ID.
	SaveRun(ctx context.Context, run *RunRecord) (int64, error)

	// GetRun loads a run with full trade and equity detail.
	GetRun(ctx context.Context, id int64) (*RunRecord, error)

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}
