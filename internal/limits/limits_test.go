package limits

import (
	"testing"
	"time"
)

func intraday(hour, min int) time.Time {
	return time.Date(2024, 6, 3, hour, min, 0, 0, time.UTC)
}

func daily(day int) time.Time {
	return time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC)
}

func TestSessionWindowRejection(t *testing.T) {
	g := NewGate(DefaultConfig())

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"10 min after open", intraday(9, 40), false},
		{"exactly open+window", intraday(10, 0), true},
		{"mid-session", intraday(12, 0), true},
		{"exactly close-window", intraday(15, 30), true},
		{"10 min before close", intraday(15, 50), false},
		{"before open", intraday(9, 0), false},
		{"after close", intraday(16, 30), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CanTrade(tt.at); got != tt.want {
				t.Errorf("CanTrade(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestDateOnlyTimestampSkipsWindow(t *testing.T) {
	g := NewGate(DefaultConfig())
	// A daily bar is stamped at midnight; the session window does not apply.
	if !g.CanTrade(daily(3)) {
		t.Error("CanTrade(date-only) = false, want true")
	}
}

func TestCanTradeIsIdempotent(t *testing.T) {
	g := NewGate(DefaultConfig())
	at := intraday(12, 0)

	first := g.CanTrade(at)
	second := g.CanTrade(at)
	if first != second {
		t.Errorf("repeated CanTrade differed: %v then %v", first, second)
	}
}

func TestLossStreakBreaker(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConsecutiveLosses = 2
	g := NewGate(cfg)

	at := intraday(12, 0)
	g.RecordResult(at, false)
	if !g.CanTrade(at) {
		t.Fatal("one loss should not trip a max-2 breaker")
	}
	g.RecordResult(at, false)
	if g.CanTrade(at) {
		t.Fatal("two consecutive losses must trip a max-2 breaker")
	}
	// The breaker holds on later days too, until a win resets it.
	if g.CanTrade(daily(4)) {
		t.Error("breaker must hold across days")
	}

	g.RecordResult(daily(4), true)
	if g.ConsecutiveLosses() != 0 {
		t.Errorf("ConsecutiveLosses = %d, want 0 after a win", g.ConsecutiveLosses())
	}
	if !g.CanTrade(intraday(12, 0)) {
		t.Error("a win should reset the breaker")
	}
}

func TestDailyWinRateFloor(t *testing.T) {
	g := NewGate(DefaultConfig())
	at := intraday(12, 0)

	// 2 wins, 2 losses: only 4 outcomes, floor not yet in force.
	g.RecordResult(at, true)
	g.RecordResult(at, false)
	g.RecordResult(at, true)
	g.RecordResult(at, false)
	if !g.CanTrade(at) {
		t.Fatal("win-rate floor must not apply before 5 outcomes")
	}

	// Fifth outcome pushes the day to 2/5 = 0.40 < 0.51.
	g.RecordResult(at, false)
	if g.CanTrade(at) {
		t.Error("2 wins out of 5 must fail the 0.51 floor")
	}

	// A different day starts with a clean slate (streak is 2, below max 5).
	if !g.CanTrade(intraday(12, 0).AddDate(0, 0, 1)) {
		t.Error("the win-rate floor is per calendar day")
	}

	wins, losses := g.DayOutcomes(at)
	if wins != 2 || losses != 3 {
		t.Errorf("DayOutcomes = (%d, %d), want (2, 3)", wins, losses)
	}
}

func TestDayRetentionPruning(t *testing.T) {
	g := NewGate(DefaultConfig())
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxRetainedDays+30; i++ {
		g.RecordResult(start.AddDate(0, 0, i), true)
	}
	if len(g.days) > maxRetainedDays {
		t.Errorf("retained %d day buckets, cap is %d", len(g.days), maxRetainedDays)
	}
	// The most recent day must survive pruning.
	last := start.AddDate(0, 0, maxRetainedDays+29)
	if w, _ := g.DayOutcomes(last); w != 1 {
		t.Error("most recent day was pruned")
	}
}
