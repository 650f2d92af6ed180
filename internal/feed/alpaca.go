package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata/stream"

	"meridian/internal/domain"
	"meridian/internal/store"
	"meridian/internal/util"
)

// Compile-time interface check.
var _ BarSource = (*AlpacaSource)(nil)

const (
	fetchMaxAttempts = 3
	fetchBaseDelay   = time.Second
)

// AlpacaSource fetches historical bars from the Alpaca market-data API
// and streams live bars over its WebSocket feed. An optional BarStore
// caches fetched bars on disk.
type AlpacaSource struct {
	client    *marketdata.Client
	streams   *stream.StocksClient
	limiter   *util.RateLimiter
	cache     store.BarStore
	feed      string
	apiKey    string
	apiSecret string
	log       *slog.Logger

	mu        sync.Mutex
	connected bool
}

// AlpacaOpts configures an AlpacaSource.
type AlpacaOpts struct {
	APIKey    string
	APISecret string
	DataURL   string

	// Feed selects the market-data feed ("iex" or "sip").
	Feed string

	// RateLimitPerMin throttles historical requests. Zero disables
	// throttling.
	RateLimitPerMin int

	// Cache, when non-nil, receives a write-through copy of every
	// fetched bar batch.
	Cache store.BarStore
}

// NewAlpacaSource creates an AlpacaSource from the given options.
func NewAlpacaSource(opts AlpacaOpts) *AlpacaSource {
	clientOpts := marketdata.ClientOpts{
		APIKey:    opts.APIKey,
		APISecret: opts.APISecret,
	}
	if opts.DataURL != "" {
		clientOpts.BaseURL = opts.DataURL
	}

	feed := opts.Feed
	if feed == "" {
		feed = "iex"
	}

	return &AlpacaSource{
		client:    marketdata.NewClient(clientOpts),
		streams:   stream.NewStocksClient(marketdata.Feed(feed), stream.WithCredentials(opts.APIKey, opts.APISecret)),
		limiter:   util.NewRateLimiter(opts.RateLimitPerMin),
		cache:     opts.Cache,
		feed:      feed,
		apiKey:    opts.APIKey,
		apiSecret: opts.APISecret,
		log:       slog.Default().With("source", "alpaca"),
	}
}

// Connect verifies the source is usable. The streaming WebSocket is
// dialed lazily on the first subscription; historical fetching needs no
// connection.
func (s *AlpacaSource) Connect(_ context.Context) error {
	if s.apiKey == "" || s.apiSecret == "" {
		return fmt.Errorf("%w: missing API credentials", ErrConnection)
	}
	return nil
}

// ensureStream dials the WebSocket connection once.
func (s *AlpacaSource) ensureStream(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}
	if err := s.streams.Connect(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	s.connected = true
	s.log.Info("stream connected", "feed", s.feed)
	return nil
}

// FetchBars fetches historical bars with retry and rate limiting.
// Invalid bars from the provider are dropped.
func (s *AlpacaSource) FetchBars(ctx context.Context, symbol string, start, end time.Time, timeframe string) ([]domain.Bar, error) {
	tf, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var raw []marketdata.Bar
	err = util.Retry(ctx, fetchMaxAttempts, fetchBaseDelay, func() error {
		var ferr error
		raw, ferr = s.client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: tf,
			Start:     start,
			End:       end,
			Feed:      marketdata.Feed(s.feed),
		})
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s bars: %v", ErrConnection, symbol, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s %s..%s", ErrNoData, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	bars := make([]domain.Bar, 0, len(raw))
	for _, ab := range raw {
		b := domain.Bar{
			Symbol:    symbol,
			Timestamp: ab.Timestamp,
			Open:      ab.Open,
			High:      ab.High,
			Low:       ab.Low,
			Close:     ab.Close,
			Volume:    float64(ab.Volume),
		}
		if err := b.Validate(); err != nil {
			s.log.Warn("dropping invalid bar", "symbol", symbol, "timestamp", ab.Timestamp, "err", err)
			continue
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s (all bars invalid)", ErrNoData, symbol)
	}

	if s.cache != nil {
		if err := s.cache.WriteBars(ctx, bars); err != nil {
			s.log.Warn("caching bars failed", "symbol", symbol, "err", err)
		}
	}

	s.log.Info("fetched bars", "symbol", symbol, "count", len(bars), "timeframe", timeframe)
	return bars, nil
}

// SubscribeBars subscribes to live minute bars for symbol, dialing the
// stream if needed.
func (s *AlpacaSource) SubscribeBars(ctx context.Context, symbol string, handler BarHandler) (Subscription, error) {
	if err := s.ensureStream(ctx); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)

	err := s.streams.SubscribeToBars(func(sb stream.Bar) {
		b := domain.Bar{
			Symbol:    sb.Symbol,
			Timestamp: sb.Timestamp,
			Open:      sb.Open,
			High:      sb.High,
			Low:       sb.Low,
			Close:     sb.Close,
			Volume:    float64(sb.Volume),
		}
		if err := b.Validate(); err != nil {
			s.log.Warn("dropping invalid live bar", "symbol", sb.Symbol, "err", err)
			return
		}
		handler(b)
	}, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: subscribing to %s: %v", ErrConnection, symbol, err)
	}

	s.log.Info("subscribed", "symbol", symbol)
	return &alpacaSubscription{source: s, symbol: symbol}, nil
}

// Disconnect tears down the streaming connection.
func (s *AlpacaSource) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return
	}
	s.connected = false
	s.log.Info("stream disconnected")
}

type alpacaSubscription struct {
	source *AlpacaSource
	symbol string
	once   sync.Once
	err    error
}

func (sub *alpacaSubscription) Unsubscribe() error {
	sub.once.Do(func() {
		sub.err = sub.source.streams.UnsubscribeFromBars(sub.symbol)
	})
	return sub.err
}

// ParseTimeframe maps a timeframe string to the provider's bar
// granularity. Supported: 1Min, 5Min, 15Min, 1Hour, 1Day.
func ParseTimeframe(timeframe string) (marketdata.TimeFrame, error) {
	switch timeframe {
	case "1Min":
		return marketdata.OneMin, nil
	case "5Min":
		return marketdata.NewTimeFrame(5, marketdata.Min), nil
	case "15Min":
		return marketdata.NewTimeFrame(15, marketdata.Min), nil
	case "1Hour":
		return marketdata.OneHour, nil
	case "1Day", "":
		return marketdata.OneDay, nil
	default:
		return marketdata.TimeFrame{}, fmt.Errorf("unsupported timeframe %q", timeframe)
	}
}
