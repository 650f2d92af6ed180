// Package engine coordinates the trading loop: it pulls bars from a
// feed, runs them through the plugin registry, applies the trading
// limits gate, and executes the decision rule against the portfolio.
package engine

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"meridian/internal/broker"
	"meridian/internal/domain"
	"meridian/internal/feed"
	"meridian/internal/limits"
	"meridian/internal/plugin"
	"meridian/internal/portfolio"
	"meridian/internal/util"
)

// WinPolicy decides whether an executed trade counts as a win for the
// limits gate. The default proxy scores a buy as a win when the bar
// closed above its open, and a sell as a win when it closed below.
type WinPolicy func(side domain.Side, bar domain.Bar) bool

// DefaultWinPolicy is the same-bar open/close proxy.
func DefaultWinPolicy(side domain.Side, bar domain.Bar) bool {
	if side == domain.SideBuy {
		return bar.Close > bar.Open
	}
	return bar.Close < bar.Open
}

// Params are the inputs to one backtest run.
type Params struct {
	Symbol         string
	Start          time.Time
	End            time.Time
	Timeframe      string
	InitialCapital float64
}

// BacktestResult is the full output of one backtest run.
type BacktestResult struct {
	Symbol         string
	Start          time.Time
	End            time.Time
	Timeframe      string
	InitialCapital float64
	Status         domain.RunStatus
	PnL            float64
	FinalValue     float64
	Bars           []domain.Bar
	Trades         []domain.Trade
	Equity         []domain.EquityPoint
	Metrics        Metrics
}

// Options wires a TradingEngine's collaborators. Source and Registry
// are required; the rest have working defaults.
type Options struct {
	Source   feed.BarSource
	Registry *plugin.Registry
	Gate     *limits.Gate
	Broker   broker.Broker
	Win      WinPolicy
	Logger   *slog.Logger
}

// TradingEngine runs backtests and realtime sessions over a single
// symbol. One engine owns one portfolio and one gate; create a fresh
// engine per concurrent run.
type TradingEngine struct {
	source   feed.BarSource
	registry *plugin.Registry
	gate     *limits.Gate
	port     *portfolio.Portfolio
	broker   broker.Broker
	win      WinPolicy
	log      *slog.Logger

	mu     sync.Mutex
	status domain.RunStatus
}

// New creates a TradingEngine from the given options.
func New(opts Options) *TradingEngine {
	if opts.Gate == nil {
		opts.Gate = limits.NewGate(limits.DefaultConfig())
	}
	if opts.Win == nil {
		opts.Win = DefaultWinPolicy
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &TradingEngine{
		source:   opts.Source,
		registry: opts.Registry,
		gate:     opts.Gate,
		port:     portfolio.New(0),
		broker:   opts.Broker,
		win:      opts.Win,
		log:      opts.Logger.With("component", "engine"),
		status:   domain.RunIdle,
	}
}

// Status returns the engine's current run status.
func (e *TradingEngine) Status() domain.RunStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *TradingEngine) setStatus(s domain.RunStatus) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// RunBacktest replays historical bars through the full pipeline and
// returns the result. A feed failure yields a zero-trade result with a
// failed status rather than an error; the failure is logged.
func (e *TradingEngine) RunBacktest(ctx context.Context, p Params) *BacktestResult {
	e.setStatus(domain.RunRunning)
	e.port.Reset(p.InitialCapital)

	result := &BacktestResult{
		Symbol:         p.Symbol,
		Start:          p.Start,
		End:            p.End,
		Timeframe:      p.Timeframe,
		InitialCapital: p.InitialCapital,
		FinalValue:     p.InitialCapital,
	}

	defer e.source.Disconnect()

	if err := e.source.Connect(ctx); err != nil {
		e.log.Error("feed connect failed", "category", util.CategoryError, "symbol", p.Symbol, "err", err)
		e.setStatus(domain.RunFailed)
		result.Status = domain.RunFailed
		return result
	}

	bars, err := e.source.FetchBars(ctx, p.Symbol, p.Start, p.End, p.Timeframe)
	if err != nil {
		e.log.Error("fetching bars failed", "category", util.CategoryError, "symbol", p.Symbol, "err", err)
		e.setStatus(domain.RunFailed)
		result.Status = domain.RunFailed
		return result
	}
	result.Bars = bars

	// Bar 0 seeds history only; every decision at bar i sees bars[:i+1]
	// and nothing past it.
	for i := 1; i < len(bars); i++ {
		if ctx.Err() != nil {
			e.log.Warn("backtest cancelled", "symbol", p.Symbol, "bar", i)
			e.setStatus(domain.RunFailed)
			result.Status = domain.RunFailed
			return result
		}

		bar := bars[i]
		history := bars[:i+1]

		if trade, ok := e.step(history, bar); ok {
			result.Trades = append(result.Trades, trade)
		}

		e.port.Update(bar.Close)
		result.Equity = append(result.Equity, domain.EquityPoint{
			Time:          bar.Timestamp,
			Cash:          e.port.Cash(),
			PositionValue: e.port.Position() * bar.Close,
			TotalValue:    e.port.Value(),
		})
	}

	result.PnL = e.port.PnL()
	result.FinalValue = e.port.Value()
	result.Metrics = computeMetrics(p.InitialCapital, result.Equity, result.Trades)
	result.Status = domain.RunDone
	e.setStatus(domain.RunDone)

	e.log.Info("backtest done",
		"category", util.CategoryGlobal,
		"symbol", p.Symbol,
		"bars", len(bars),
		"trades", len(result.Trades),
		"pnl", result.PnL,
	)
	return result
}

// step evaluates one bar: gate check, signal computation, and the
// decision rule. It reports the executed trade, if any.
//
// The rule is all-in, all-out: a buy spends the whole cash balance at
// the close (whole shares), a sell closes the whole position. The buy
// condition is checked first, so when both flags are set an executable
// buy wins; an unaffordable buy falls through to the sell check.
func (e *TradingEngine) step(history []domain.Bar, bar domain.Bar) (domain.Trade, bool) {
	if !e.gate.CanTrade(bar.Timestamp) {
		e.log.Debug("trade gated", "category", util.CategoryGlobal, "time", bar.Timestamp)
		return domain.Trade{}, false
	}

	signals := e.registry.Process(history)

	if signals.Buy() {
		shares := math.Floor(e.port.Cash() / bar.Close)
		if shares >= 1 && e.port.Buy(bar.Close, shares) {
			e.recordOutcome(domain.SideBuy, bar)
			e.log.Info("trade", "category", util.CategoryTrade, "side", domain.SideBuy, "price", bar.Close, "shares", shares, "time", bar.Timestamp)
			return domain.Trade{Time: bar.Timestamp, Side: domain.SideBuy, Price: bar.Close, Shares: shares}, true
		}
	}

	if signals.Sell() {
		shares := e.port.Position()
		if shares > 0 && e.port.Sell(bar.Close, shares) {
			e.recordOutcome(domain.SideSell, bar)
			e.log.Info("trade", "category", util.CategoryTrade, "side", domain.SideSell, "price", bar.Close, "shares", shares, "time", bar.Timestamp)
			return domain.Trade{Time: bar.Timestamp, Side: domain.SideSell, Price: bar.Close, Shares: shares}, true
		}
	}

	return domain.Trade{}, false
}

// recordOutcome scores an executed trade with the win policy and feeds
// the outcome to the gate.
func (e *TradingEngine) recordOutcome(side domain.Side, bar domain.Bar) {
	e.gate.RecordResult(bar.Timestamp, e.win(side, bar))
}
