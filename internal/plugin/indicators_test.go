package plugin

import (
	"math"
	"testing"
	"time"

	"meridian/internal/domain"
)

func barsFromCloses(vals []float64) []domain.Bar {
	bars := make([]domain.Bar, len(vals))
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range vals {
		bars[i] = domain.Bar{
			Symbol:    "TEST",
			Timestamp: ts.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestRSIWarmupReturnsNoSignal(t *testing.T) {
	p := NewRSI(14, 30, 70)
	out, err := p.Process(risingBars(14))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, ok := out.Values["rsi"]; ok {
		t.Error("rsi value present during warm-up")
	}
	if out.Buy() || out.Sell() {
		t.Error("warm-up map must carry no actionable flags")
	}
}

func TestRSIAllGains(t *testing.T) {
	p := NewRSI(14, 30, 70)
	out, err := p.Process(risingBars(30))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := out.Values["rsi"]; got != 100 {
		t.Errorf("rsi = %v, want 100 for a monotonically rising series", got)
	}
	if !out.Sell() || out.Buy() {
		t.Errorf("flags = buy:%v sell:%v, want sell only at rsi 100", out.Buy(), out.Sell())
	}
}

func TestRSIFlatSeriesNeutral(t *testing.T) {
	vals := make([]float64, 30)
	for i := range vals {
		vals[i] = 100
	}
	p := NewRSI(14, 30, 70)
	out, _ := p.Process(barsFromCloses(vals))
	if got := out.Values["rsi"]; got != 50 {
		t.Errorf("rsi = %v, want neutral 50 for a flat series", got)
	}
	if out.Buy() || out.Sell() {
		t.Error("flat series should yield no flags")
	}
}

func TestStochasticOversold(t *testing.T) {
	// Constant 90..110 range with closes pinned near the low.
	bars := make([]domain.Bar, 16)
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = domain.Bar{
			Symbol: "TEST", Timestamp: ts.AddDate(0, 0, i),
			Open: 92, High: 110, Low: 90, Close: 91, Volume: 1000,
		}
	}

	p := NewStochastic(14, 3, 20, 80)
	out, err := p.Process(bars)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	wantK := (91.0 - 90.0) / (110.0 - 90.0) * 100
	if got := out.Values["stoch_k"]; math.Abs(got-wantK) > 1e-9 {
		t.Errorf("stoch_k = %v, want %v", got, wantK)
	}
	if got := out.Values["stoch_d"]; math.Abs(got-wantK) > 1e-9 {
		t.Errorf("stoch_d = %v, want %v (constant %%K)", got, wantK)
	}
	if !out.Buy() || out.Sell() {
		t.Errorf("flags = buy:%v sell:%v, want oversold buy", out.Buy(), out.Sell())
	}
}

func TestWilliamsRExtremes(t *testing.T) {
	mk := func(close float64) []domain.Bar {
		bars := make([]domain.Bar, 14)
		ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		for i := range bars {
			bars[i] = domain.Bar{
				Symbol: "TEST", Timestamp: ts.AddDate(0, 0, i),
				Open: 100, High: 110, Low: 90, Close: 100, Volume: 1000,
			}
		}
		bars[13].Close = close
		return bars
	}

	p := NewWilliamsR(14, -80, -20)

	out, _ := p.Process(mk(110)) // close at the high
	if got := out.Values["williams_r"]; got != 0 {
		t.Errorf("williams_r = %v, want 0 at the high", got)
	}
	if !out.Sell() {
		t.Error("close at the high should flag sell")
	}

	out, _ = p.Process(mk(90)) // close at the low
	if got := out.Values["williams_r"]; got != -100 {
		t.Errorf("williams_r = %v, want -100 at the low", got)
	}
	if !out.Buy() {
		t.Error("close at the low should flag buy")
	}
}

func TestMACDAcceleratingUptrend(t *testing.T) {
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = 100 * math.Pow(1.01, float64(i))
	}

	p := NewMACD(12, 26, 9)
	out, err := p.Process(barsFromCloses(vals))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Values["macd"] <= 0 {
		t.Errorf("macd = %v, want > 0 in an accelerating uptrend", out.Values["macd"])
	}
	if !out.Buy() || out.Sell() {
		t.Errorf("flags = buy:%v sell:%v, want buy while line above signal", out.Buy(), out.Sell())
	}
}

func TestMACDWarmup(t *testing.T) {
	p := NewMACD(12, 26, 9)
	out, _ := p.Process(risingBars(30))
	if out.Buy() || out.Sell() {
		t.Error("warm-up MACD must not flag")
	}
}

func TestADXStrongTrend(t *testing.T) {
	// Every bar makes a higher high and a higher low: +DM only, DX = 100.
	p := NewADX(5, 25)
	out, err := p.Process(risingBars(30))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := out.Values["adx"]; math.Abs(got-100) > 1e-6 {
		t.Errorf("adx = %v, want 100 in a one-way trend", got)
	}
	if !out.Flags["trending"] {
		t.Error("trending flag should be set")
	}
	if out.Buy() || out.Sell() {
		t.Error("adx must never emit buy/sell flags")
	}
}

func TestADXWarmupContributesNothing(t *testing.T) {
	p := NewADX(14, 25)
	out, _ := p.Process(risingBars(20))
	if out.Len() != 0 {
		t.Errorf("Len() = %d, want 0 during ADX warm-up", out.Len())
	}
}

func TestMovingAverageAboveEMA(t *testing.T) {
	p := NewMovingAverage(3)
	out, err := p.Process(barsFromCloses([]float64{10, 10, 10, 10, 20}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Buy() || out.Sell() {
		t.Errorf("flags = buy:%v sell:%v, want buy with close above EMA", out.Buy(), out.Sell())
	}
	wantSMA := (10.0 + 10.0 + 20.0) / 3.0
	if got := out.Values["sma"]; math.Abs(got-wantSMA) > 1e-9 {
		t.Errorf("sma = %v, want %v", got, wantSMA)
	}
}

func TestATRFlatMarketIsZero(t *testing.T) {
	bars := make([]domain.Bar, 20)
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = domain.Bar{
			Symbol: "TEST", Timestamp: ts.AddDate(0, 0, i),
			Open: 100, High: 100, Low: 100, Close: 100, Volume: 0,
		}
	}

	p := NewATR(14)
	out, _ := p.Process(bars)
	if got := out.Values["atr"]; got != 0 {
		t.Errorf("atr = %v, want 0 when every bar is flat", got)
	}
}

func TestEMACrossoverBuy(t *testing.T) {
	// Hand-computed with periods 1/3/5: the short EMA is the price itself;
	// the final bar crosses above the medium EMA with medium above long.
	p := NewEMACrossover(1, 3, 5)
	out, err := p.Process(barsFromCloses([]float64{10, 9, 8, 8, 12}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Buy() {
		t.Error("expected buy on upward cross")
	}
	if out.Sell() {
		t.Error("unexpected sell on upward cross")
	}
}

func TestEMACrossoverSell(t *testing.T) {
	p := NewEMACrossover(1, 3, 5)
	out, err := p.Process(barsFromCloses([]float64{10, 11, 12, 12, 8}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Sell() {
		t.Error("expected sell on downward cross")
	}
	if out.Buy() {
		t.Error("unexpected buy on downward cross")
	}
}

func TestEMACrossoverWarmup(t *testing.T) {
	p := NewEMACrossover(9, 20, 200)
	out, _ := p.Process(barsFromCloses([]float64{100}))
	if out.Buy() || out.Sell() {
		t.Error("single bar cannot produce a cross")
	}
}
