package plugin

import "meridian/internal/domain"

var _ Plugin = (*WilliamsR)(nil)

// WilliamsR is an oscillator plugin emitting Williams %R on a -100..0
// scale, with oversold/overbought flags.
type WilliamsR struct {
	period     int
	oversold   float64 // e.g. -80
	overbought float64 // e.g. -20
}

// NewWilliamsR creates a Williams %R plugin. The classic configuration is
// NewWilliamsR(14, -80, -20).
func NewWilliamsR(period int, oversold, overbought float64) *WilliamsR {
	return &WilliamsR{period: period, oversold: oversold, overbought: overbought}
}

// Name returns "williams_r".
func (p *WilliamsR) Name() string { return "williams_r" }

// Process emits williams_r and its threshold flags.
func (p *WilliamsR) Process(history []domain.Bar) (domain.SignalMap, error) {
	if len(history) < p.period {
		return noSignal(), nil
	}

	hh := highestHigh(history, p.period)
	ll := lowestLow(history, p.period)

	var wr float64
	if hh == ll {
		wr = -50
	} else {
		wr = (hh - history[len(history)-1].Close) / (hh - ll) * -100
	}

	m := domain.NewSignalMap()
	m.Values["williams_r"] = wr
	m.Flags[domain.FlagBuy] = wr < p.oversold
	m.Flags[domain.FlagSell] = wr > p.overbought
	return m, nil
}
