// Package limits implements the trading-limits gate: a stateful
// eligibility filter that tracks per-day trade outcomes and enforces
// session-window, loss-streak, and daily win-rate constraints.
package limits

import (
	"sort"
	"time"

	"meridian/internal/util"
)

// Defaults for the gate thresholds.
const (
	DefaultNoTradeWindowMin     = 30
	DefaultMaxConsecutiveLosses = 5
	DefaultMinDailyWinRate      = 0.51

	// minTradesForWinRate is how many outcomes a day needs before the
	// win-rate floor applies.
	minTradesForWinRate = 5

	// maxRetainedDays caps the per-day state map so a long-running
	// realtime session does not grow without bound.
	maxRetainedDays = 90
)

// Config holds the gate thresholds.
type Config struct {
	NoTradeWindow        time.Duration
	MaxConsecutiveLosses int
	MinDailyWinRate      float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		NoTradeWindow:        DefaultNoTradeWindowMin * time.Minute,
		MaxConsecutiveLosses: DefaultMaxConsecutiveLosses,
		MinDailyWinRate:      DefaultMinDailyWinRate,
	}
}

// dayStats accumulates trade outcomes for one calendar day.
type dayStats struct {
	wins     int
	losses   int
	outcomes []bool
}

// Gate decides whether a trade may be taken at a given time. One Gate
// belongs to one engine instance; it is not safe for concurrent use.
type Gate struct {
	cfg     Config
	cal     *util.TradingCalendar
	days    map[string]*dayStats
	lossRun int
}

// NewGate creates a Gate with the given thresholds. Zero-value fields
// fall back to the defaults.
func NewGate(cfg Config) *Gate {
	if cfg.NoTradeWindow <= 0 {
		cfg.NoTradeWindow = DefaultNoTradeWindowMin * time.Minute
	}
	if cfg.MaxConsecutiveLosses <= 0 {
		cfg.MaxConsecutiveLosses = DefaultMaxConsecutiveLosses
	}
	if cfg.MinDailyWinRate <= 0 {
		cfg.MinDailyWinRate = DefaultMinDailyWinRate
	}
	return &Gate{
		cfg:  cfg,
		cal:  util.NewTradingCalendar(),
		days: make(map[string]*dayStats),
	}
}

// CanTrade reports whether a trade may be taken at t. It is a pure read:
// repeated calls without an intervening RecordResult return the same
// answer.
//
// Rules, in order: the session-edge window (intraday timestamps only),
// the consecutive-loss breaker, and the daily win-rate floor once the
// day has enough recorded outcomes.
func (g *Gate) CanTrade(t time.Time) bool {
	if !util.IsDateOnly(t) {
		open := g.cal.SessionOpen(t)
		close := g.cal.SessionClose(t)
		if t.Before(open.Add(g.cfg.NoTradeWindow)) || t.After(close.Add(-g.cfg.NoTradeWindow)) {
			return false
		}
	}

	if g.lossRun >= g.cfg.MaxConsecutiveLosses {
		return false
	}

	if day, ok := g.days[util.DayKey(t)]; ok && len(day.outcomes) >= minTradesForWinRate {
		total := day.wins + day.losses
		if total > 0 {
			winRate := float64(day.wins) / float64(total)
			if winRate < g.cfg.MinDailyWinRate {
				return false
			}
		}
	}

	return true
}

// RecordResult appends a trade outcome for t's calendar day and updates
// the consecutive-loss counter. The engine calls this at most once per
// executed trade, after CanTrade returned true for that bar.
func (g *Gate) RecordResult(t time.Time, isWin bool) {
	key := util.DayKey(t)
	day, ok := g.days[key]
	if !ok {
		day = &dayStats{}
		g.days[key] = day
		g.prune()
	}

	day.outcomes = append(day.outcomes, isWin)
	if isWin {
		day.wins++
		g.lossRun = 0
	} else {
		day.losses++
		g.lossRun++
	}
}

// ConsecutiveLosses returns the current loss streak.
func (g *Gate) ConsecutiveLosses() int { return g.lossRun }

// DayOutcomes returns the recorded (wins, losses) for t's calendar day.
func (g *Gate) DayOutcomes(t time.Time) (wins, losses int) {
	if day, ok := g.days[util.DayKey(t)]; ok {
		return day.wins, day.losses
	}
	return 0, 0
}

// prune drops the oldest day buckets beyond the retention cap. Day keys
// sort lexicographically in date order.
func (g *Gate) prune() {
	if len(g.days) <= maxRetainedDays {
		return
	}
	keys := make([]string, 0, len(g.days))
	for k := range g.days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys[:len(keys)-maxRetainedDays] {
		delete(g.days, k)
	}
}
