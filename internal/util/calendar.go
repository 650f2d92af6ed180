package util

import "time"

// TradingCalendar provides session-hours math for a single market. Times
// are interpreted in the wall clock of the timestamp being examined, which
// matches how bar feeds deliver exchange-local timestamps.
type TradingCalendar struct {
	openHour, openMin   int
	closeHour, closeMin int
}

// NewTradingCalendar creates a calendar for the NYSE regular session,
// 09:30–16:00.
func NewTradingCalendar() *TradingCalendar {
	return &TradingCalendar{openHour: 9, openMin: 30, closeHour: 16, closeMin: 0}
}

// SessionOpen returns the session open on t's calendar day.
func (tc *TradingCalendar) SessionOpen(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), tc.openHour, tc.openMin, 0, 0, t.Location())
}

// SessionClose returns the session close on t's calendar day.
func (tc *TradingCalendar) SessionClose(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), tc.closeHour, tc.closeMin, 0, 0, t.Location())
}

// IsMarketOpen reports whether t falls within the regular session.
// Weekends are closed; holiday calendars are not modelled.
func (tc *TradingCalendar) IsMarketOpen(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !t.Before(tc.SessionOpen(t)) && !t.After(tc.SessionClose(t))
}

// IsDateOnly reports whether t carries no intraday time component, which
// is how daily bars arrive (timestamped at midnight).
func IsDateOnly(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// DayKey returns the calendar-day key for t, used to bucket per-day
// trading state.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
