package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	err := Retry(context.Background(), maxAttempts, 0, func() error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRateLimiterNilNeverBlocks(t *testing.T) {
	var rl *RateLimiter
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter Wait returned error: %v", err)
	}
	if NewRateLimiter(0) != nil {
		t.Error("NewRateLimiter(0) should return nil (disabled)")
	}
}

func TestTradingCalendarSessionBounds(t *testing.T) {
	cal := NewTradingCalendar()
	ts := time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC) // a Monday

	open := cal.SessionOpen(ts)
	if open.Hour() != 9 || open.Minute() != 30 {
		t.Errorf("SessionOpen = %v, want 09:30", open)
	}
	close := cal.SessionClose(ts)
	if close.Hour() != 16 || close.Minute() != 0 {
		t.Errorf("SessionClose = %v, want 16:00", close)
	}

	if !cal.IsMarketOpen(ts) {
		t.Error("IsMarketOpen(Monday 11:00) = false, want true")
	}
	if cal.IsMarketOpen(time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)) {
		t.Error("IsMarketOpen(Saturday) = true, want false")
	}
	if cal.IsMarketOpen(time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)) {
		t.Error("IsMarketOpen(pre-open) = true, want false")
	}
}

func TestIsDateOnly(t *testing.T) {
	daily := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if !IsDateOnly(daily) {
		t.Error("IsDateOnly(midnight) = false, want true")
	}
	intraday := time.Date(2024, 6, 3, 9, 40, 0, 0, time.UTC)
	if IsDateOnly(intraday) {
		t.Error("IsDateOnly(09:40) = true, want false")
	}
	if DayKey(intraday) != "2024-06-03" {
		t.Errorf("DayKey = %q, want 2024-06-03", DayKey(intraday))
	}
}
