package plugin

import "meridian/internal/domain"

var _ Plugin = (*MACD)(nil)

// MACD is a trend plugin emitting the MACD line and its signal line, with
// buy/sell flags on the line being above or below the signal.
type MACD struct {
	fast   int
	slow   int
	signal int
}

// NewMACD creates a MACD plugin. The classic configuration is
// NewMACD(12, 26, 9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{fast: fast, slow: slow, signal: signal}
}

// Name returns "macd".
func (p *MACD) Name() string { return "macd" }

// Process emits macd, macd_signal, and flags. The MACD line is the
// difference of the fast and slow EMAs; the signal line is an EMA of the
// MACD line itself.
func (p *MACD) Process(history []domain.Bar) (domain.SignalMap, error) {
	if len(history) < p.slow+p.signal {
		return noSignal(), nil
	}

	vals := closes(history)
	fast := emaSeries(vals, p.fast)
	slow := emaSeries(vals, p.slow)

	line := make([]float64, len(vals))
	for i := range vals {
		line[i] = fast[i] - slow[i]
	}
	sig := emaSeries(line, p.signal)

	last := len(vals) - 1
	m := domain.NewSignalMap()
	m.Values["macd"] = line[last]
	m.Values["macd_signal"] = sig[last]
	m.Flags[domain.FlagBuy] = line[last] > sig[last]
	m.Flags[domain.FlagSell] = line[last] < sig[last]
	return m, nil
}
