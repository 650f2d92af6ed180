package engine

import (
	"context"
	"fmt"

	"meridian/internal/broker"
	"meridian/internal/domain"
	"meridian/internal/util"
)

// maxLiveHistory bounds the in-memory bar history during a realtime
// session; plugins never need more than a few hundred bars of context.
const maxLiveHistory = 1000

// RunRealtime streams live bars for symbol through the same pipeline as
// a backtest, submitting orders through the broker when the decision
// rule fires. It blocks until ctx is cancelled and returns the reason
// the stream ended.
func (e *TradingEngine) RunRealtime(ctx context.Context, symbol string, initialCapital float64) error {
	e.setStatus(domain.RunRunning)
	e.port.Reset(initialCapital)

	defer e.source.Disconnect()

	if err := e.source.Connect(ctx); err != nil {
		e.setStatus(domain.RunFailed)
		return fmt.Errorf("connecting feed: %w", err)
	}

	var history []domain.Bar

	sub, err := e.source.SubscribeBars(ctx, symbol, func(bar domain.Bar) {
		// Stream callbacks are serialized through the engine mutex so
		// bar processing never interleaves.
		e.mu.Lock()
		defer e.mu.Unlock()

		history = append(history, bar)
		if len(history) > maxLiveHistory {
			history = history[len(history)-maxLiveHistory:]
		}

		// Price-taking brokers fill at the latest observed close.
		if q, ok := e.broker.(broker.Quoter); ok {
			q.Quote(bar.Symbol, bar.Close)
		}

		if len(history) < 2 {
			return
		}

		trade, ok := e.step(history, bar)
		e.port.Update(bar.Close)
		if !ok {
			return
		}

		if e.broker != nil {
			if _, err := e.broker.SubmitMarketOrder(ctx, symbol, trade.Side, trade.Shares); err != nil {
				e.log.Error("order submission failed",
					"category", util.CategoryError,
					"symbol", symbol, "side", trade.Side, "shares", trade.Shares, "err", err)
			}
		}
	})
	if err != nil {
		e.setStatus(domain.RunFailed)
		return fmt.Errorf("subscribing to %s: %w", symbol, err)
	}

	e.log.Info("realtime session started", "category", util.CategoryGlobal, "symbol", symbol)
	<-ctx.Done()

	if err := sub.Unsubscribe(); err != nil {
		e.log.Warn("unsubscribe failed", "symbol", symbol, "err", err)
	}
	e.setStatus(domain.RunDone)
	e.log.Info("realtime session stopped", "category", util.CategoryGlobal, "symbol", symbol)
	return ctx.Err()
}
