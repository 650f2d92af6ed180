// Package feed provides bar sources: historical OHLCV fetching and live
// bar streaming for a single symbol at a time.
package feed

import (
	"context"
	"errors"
	"time"

	"meridian/internal/domain"
)

// Sentinel errors returned by bar sources.
var (
	// ErrConnection wraps transport failures while talking to a data
	// provider.
	ErrConnection = errors.New("feed: connection error")

	// ErrNoData means the provider returned no bars for the requested
	// symbol and range.
	ErrNoData = errors.New("feed: no data")
)

// BarHandler receives one live bar. Handlers are invoked sequentially
// per subscription.
type BarHandler func(bar domain.Bar)

// Subscription is a handle to an active live-bar subscription.
type Subscription interface {
	// Unsubscribe stops delivery. Safe to call more than once.
	Unsubscribe() error
}

// BarSource produces OHLCV bars, historical or live.
type BarSource interface {
	// Connect establishes any connection the source needs. Sources
	// without connection state return nil.
	Connect(ctx context.Context) error

	// FetchBars returns bars for symbol within [start, end] at the given
	// timeframe, in timestamp order. Returns ErrNoData (possibly
	// wrapped) when the range is empty.
	FetchBars(ctx context.Context, symbol string, start, end time.Time, timeframe string) ([]domain.Bar, error)

	// SubscribeBars delivers live bars for symbol to handler until the
	// subscription is released or ctx is cancelled.
	SubscribeBars(ctx context.Context, symbol string, handler BarHandler) (Subscription, error)

	// Disconnect releases the source's resources. Safe to call even if
	// Connect was never called or failed.
	Disconnect()
}
