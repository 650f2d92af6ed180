package plugin

import "meridian/internal/domain"

var _ Plugin = (*Stochastic)(nil)

// Stochastic is an oscillator plugin emitting %K and its %D smoothing,
// with oversold/overbought flags on %K.
type Stochastic struct {
	kPeriod    int
	dPeriod    int
	oversold   float64
	overbought float64
}

// NewStochastic creates a stochastic oscillator plugin. The classic
// configuration is NewStochastic(14, 3, 20, 80).
func NewStochastic(kPeriod, dPeriod int, oversold, overbought float64) *Stochastic {
	return &Stochastic{kPeriod: kPeriod, dPeriod: dPeriod, oversold: oversold, overbought: overbought}
}

// Name returns "stochastic".
func (p *Stochastic) Name() string { return "stochastic" }

// Process emits stoch_k, stoch_d, and %K threshold flags. %D is the
// simple average of the last dPeriod %K values.
func (p *Stochastic) Process(history []domain.Bar) (domain.SignalMap, error) {
	if len(history) < p.kPeriod+p.dPeriod-1 {
		return noSignal(), nil
	}

	last := len(history) - 1
	k := stochK(history, last, p.kPeriod)

	d := 0.0
	for i := 0; i < p.dPeriod; i++ {
		d += stochK(history, last-i, p.kPeriod)
	}
	d /= float64(p.dPeriod)

	m := domain.NewSignalMap()
	m.Values["stoch_k"] = k
	m.Values["stoch_d"] = d
	m.Flags[domain.FlagBuy] = k < p.oversold
	m.Flags[domain.FlagSell] = k > p.overbought
	return m, nil
}
