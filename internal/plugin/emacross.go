package plugin

import "meridian/internal/domain"

var _ Plugin = (*EMACrossover)(nil)

// EMACrossover is a trend plugin with three EMAs. It buys when the short
// EMA crosses above the medium EMA while the medium sits above the long
// EMA, and sells when the short crosses back below the medium.
type EMACrossover struct {
	short  int
	medium int
	long   int
}

// NewEMACrossover creates an EMA crossover plugin; the standard
// configuration is NewEMACrossover(9, 20, 200).
func NewEMACrossover(short, medium, long int) *EMACrossover {
	return &EMACrossover{short: short, medium: medium, long: long}
}

// Name returns "ema_crossover".
func (p *EMACrossover) Name() string { return "ema_crossover" }

// Process detects a cross between the previous and current bar. With
// fewer than two bars there is nothing to cross, so it returns no signal.
func (p *EMACrossover) Process(history []domain.Bar) (domain.SignalMap, error) {
	if len(history) < 2 {
		return noSignal(), nil
	}

	vals := closes(history)
	short := emaSeries(vals, p.short)
	medium := emaSeries(vals, p.medium)
	long := emaSeries(vals, p.long)

	cur := len(vals) - 1
	prev := cur - 1

	buy := short[prev] < medium[prev] &&
		short[cur] >= medium[cur] &&
		medium[cur] > long[cur]

	sell := short[prev] > medium[prev] &&
		short[cur] <= medium[cur]

	m := domain.NewSignalMap()
	m.Values["ema_short"] = short[cur]
	m.Values["ema_medium"] = medium[cur]
	m.Values["ema_long"] = long[cur]
	m.Flags[domain.FlagBuy] = buy
	m.Flags[domain.FlagSell] = sell
	return m, nil
}
