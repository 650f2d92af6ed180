package plugin

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"meridian/internal/domain"
)

// stubPlugin returns a fixed signal map (or error) for every call.
type stubPlugin struct {
	name string
	out  domain.SignalMap
	err  error
}

func (s *stubPlugin) Name() string { return s.name }
func (s *stubPlugin) Process(_ []domain.Bar) (domain.SignalMap, error) {
	return s.out, s.err
}

// panicPlugin blows up on every call.
type panicPlugin struct{}

func (p *panicPlugin) Name() string { return "panicker" }
func (p *panicPlugin) Process(_ []domain.Bar) (domain.SignalMap, error) {
	panic("index out of range")
}

func valueMap(key string, v float64) domain.SignalMap {
	m := domain.NewSignalMap()
	m.Values[key] = v
	return m
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func risingBars(n int) []domain.Bar {
	bars := make([]domain.Bar, n)
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		c := 100.0 + float64(i)
		bars[i] = domain.Bar{
			Symbol:    "TEST",
			Timestamp: ts.AddDate(0, 0, i),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestRegistryLastWriterWins(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Register(&stubPlugin{name: "first", out: valueMap("x", 1)})
	r.Register(&stubPlugin{name: "second", out: valueMap("x", 2)})

	got := r.Process(nil)
	if got.Values["x"] != 2 {
		t.Errorf("x = %v, want 2 (last registered plugin wins)", got.Values["x"])
	}
}

func TestRegistryFailingPluginIsolated(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Register(&stubPlugin{name: "broken", err: errors.New("boom")})
	r.Register(NewRSI(14, 30, 70))

	got := r.Process(risingBars(20))
	if _, ok := got.Values["rsi"]; !ok {
		t.Error("rsi key missing: a failing plugin must not abort the rest")
	}
}

func TestRegistryPanickingPluginIsolated(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Register(&panicPlugin{})
	r.Register(&stubPlugin{name: "ok", out: valueMap("y", 7)})

	got := r.Process(risingBars(5))
	if got.Values["y"] != 7 {
		t.Errorf("y = %v, want 7 despite a panicking sibling", got.Values["y"])
	}
}

func TestRegistryDisabledPluginSkipped(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Register(&stubPlugin{name: "a", out: valueMap("a", 1)})
	r.Register(&stubPlugin{name: "b", out: valueMap("b", 2)})

	if !r.SetEnabled("a", false) {
		t.Fatal("SetEnabled did not find plugin a")
	}
	got := r.Process(nil)
	if _, ok := got.Values["a"]; ok {
		t.Error("disabled plugin contributed to the merged map")
	}
	if got.Values["b"] != 2 {
		t.Error("enabled plugin should still contribute")
	}
}

func TestRegistryEnableOnly(t *testing.T) {
	r := NewRegistry(testLogger())
	for _, p := range Defaults() {
		r.Register(p)
	}

	r.EnableOnly([]string{"rsi"})

	got := r.Process(risingBars(40))
	if _, ok := got.Values["rsi"]; !ok {
		t.Error("rsi should be enabled")
	}
	if _, ok := got.Values["atr"]; ok {
		t.Error("atr should be disabled by EnableOnly")
	}
}

func TestRegistryNamesOrder(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Register(&stubPlugin{name: "z"})
	r.Register(&stubPlugin{name: "a"})

	names := r.Names()
	if len(names) != 2 || names[0] != "z" || names[1] != "a" {
		t.Errorf("Names() = %v, want registration order [z a]", names)
	}
}
