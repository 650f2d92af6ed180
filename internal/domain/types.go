// Package domain defines the core data types shared across the meridian
// platform: OHLCV bars, plugin signal maps, executed trades, and equity
// curve points.
package domain

import (
	"fmt"
	"time"
)

// Bar is one OHLCV sample for a fixed time interval. Bars are immutable
// once produced by a feed; the engine only ever slices bar history, it
// never rewrites it.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Validate reports whether the bar satisfies the OHLC ordering invariant
// (low <= open,close <= high) and has non-negative volume.
func (b Bar) Validate() error {
	if b.Low > b.Open || b.Low > b.Close {
		return fmt.Errorf("bar %s %s: low %.4f above open/close", b.Symbol, b.Timestamp.Format(time.RFC3339), b.Low)
	}
	if b.High < b.Open || b.High < b.Close {
		return fmt.Errorf("bar %s %s: high %.4f below open/close", b.Symbol, b.Timestamp.Format(time.RFC3339), b.High)
	}
	if b.Volume < 0 {
		return fmt.Errorf("bar %s %s: negative volume %.2f", b.Symbol, b.Timestamp.Format(time.RFC3339), b.Volume)
	}
	return nil
}

// Well-known signal flag keys emitted by plugins.
const (
	FlagBuy  = "buy_signal"
	FlagSell = "sell_signal"
)

// SignalMap holds the named outputs of one or more plugins for a single
// bar: numeric indicator values in Values, boolean flags in Flags. A
// fresh map is produced per bar and never persisted.
type SignalMap struct {
	Values map[string]float64
	Flags  map[string]bool
}

// NewSignalMap returns an empty SignalMap with both maps allocated.
func NewSignalMap() SignalMap {
	return SignalMap{
		Values: make(map[string]float64),
		Flags:  make(map[string]bool),
	}
}

// Buy reports whether the buy flag is set.
func (m SignalMap) Buy() bool { return m.Flags[FlagBuy] }

// Sell reports whether the sell flag is set.
func (m SignalMap) Sell() bool { return m.Flags[FlagSell] }

// Merge copies every key from other into m, overwriting on collision.
// Later plugins therefore win per key, in registration order.
func (m SignalMap) Merge(other SignalMap) {
	for k, v := range other.Values {
		m.Values[k] = v
	}
	for k, v := range other.Flags {
		m.Flags[k] = v
	}
}

// Len returns the total number of keys across both maps.
func (m SignalMap) Len() int {
	return len(m.Values) + len(m.Flags)
}

// Side is the direction of an executed trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Trade is one executed fill recorded by the engine. Trade records are
// append-only for the duration of a run.
type Trade struct {
	Time   time.Time
	Side   Side
	Price  float64
	Shares float64
}

// EquityPoint is one sample of the portfolio's mark-to-market state,
// appended once per processed bar.
type EquityPoint struct {
	Time          time.Time
	Cash          float64
	PositionValue float64
	TotalValue    float64
}

// RunStatus tracks the lifecycle of a backtest run.
type RunStatus string

const (
	RunIdle    RunStatus = "idle"
	RunRunning RunStatus = "running"
	RunDone    RunStatus = "done"
	RunFailed  RunStatus = "failed"
)
