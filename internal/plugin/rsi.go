package plugin

import "meridian/internal/domain"

// Compile-time interface check.
var _ Plugin = (*RSI)(nil)

// RSI is an oscillator plugin emitting the Wilder relative strength index
// plus threshold-crossing buy/sell flags (oversold buys, overbought sells).
type RSI struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSI creates an RSI plugin. The classic configuration is
// NewRSI(14, 30, 70).
func NewRSI(period int, oversold, overbought float64) *RSI {
	return &RSI{period: period, oversold: oversold, overbought: overbought}
}

// Name returns "rsi".
func (p *RSI) Name() string { return "rsi" }

// Process emits the current RSI and its threshold flags. With fewer than
// period+1 bars it returns a no-signal map.
func (p *RSI) Process(history []domain.Bar) (domain.SignalMap, error) {
	if len(history) <= p.period {
		return noSignal(), nil
	}

	v := rsiValue(closes(history), p.period)

	m := domain.NewSignalMap()
	m.Values["rsi"] = v
	m.Flags[domain.FlagBuy] = v < p.oversold
	m.Flags[domain.FlagSell] = v > p.overbought
	return m, nil
}
