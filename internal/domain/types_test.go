package domain

import (
	"testing"
	"time"
)

func TestBarValidate(t *testing.T) {
	ts := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		bar     Bar
		wantErr bool
	}{
		{
			name: "valid bar",
			bar:  Bar{Symbol: "AAPL", Timestamp: ts, Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000},
		},
		{
			name: "flat bar",
			bar:  Bar{Symbol: "AAPL", Timestamp: ts, Open: 100, High: 100, Low: 100, Close: 100, Volume: 0},
		},
		{
			name:    "low above close",
			bar:     Bar{Symbol: "AAPL", Timestamp: ts, Open: 100, High: 102, Low: 101, Close: 100.5, Volume: 1000},
			wantErr: true,
		},
		{
			name:    "high below open",
			bar:     Bar{Symbol: "AAPL", Timestamp: ts, Open: 103, High: 102, Low: 99, Close: 101, Volume: 1000},
			wantErr: true,
		},
		{
			name:    "negative volume",
			bar:     Bar{Symbol: "AAPL", Timestamp: ts, Open: 100, High: 102, Low: 99, Close: 101, Volume: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bar.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSignalMapMerge(t *testing.T) {
	m := NewSignalMap()
	m.Values["rsi"] = 28.5
	m.Flags[FlagBuy] = true

	other := NewSignalMap()
	other.Values["macd"] = 0.7
	other.Flags[FlagBuy] = false
	other.Flags[FlagSell] = true

	m.Merge(other)

	if m.Values["rsi"] != 28.5 {
		t.Errorf("rsi = %v, want 28.5", m.Values["rsi"])
	}
	if m.Values["macd"] != 0.7 {
		t.Errorf("macd = %v, want 0.7", m.Values["macd"])
	}
	// Last writer wins per key: the later map cleared the buy flag.
	if m.Buy() {
		t.Error("Buy() = true, want false after merge overwrote the flag")
	}
	if !m.Sell() {
		t.Error("Sell() = false, want true")
	}
	if m.Len() != 4 {
		t.Errorf("Len() = %d, want 4", m.Len())
	}
}

func TestSignalMapEmpty(t *testing.T) {
	m := NewSignalMap()
	if m.Buy() || m.Sell() {
		t.Error("empty SignalMap should have no actionable flags")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}
