package plugin

import "meridian/internal/domain"

var _ Plugin = (*ADX)(nil)

// ADX is a trend-strength plugin. It emits the ADX value and a "trending"
// flag but never buy/sell flags: it qualifies other signals rather than
// generating entries itself.
type ADX struct {
	period    int
	threshold float64
}

// NewADX creates an ADX plugin. The classic configuration is
// NewADX(14, 25).
func NewADX(period int, threshold float64) *ADX {
	return &ADX{period: period, threshold: threshold}
}

// Name returns "adx".
func (p *ADX) Name() string { return "adx" }

// Process emits adx and the trending flag. ADX needs roughly two full
// periods of history to seed; until then the plugin contributes nothing.
func (p *ADX) Process(history []domain.Bar) (domain.SignalMap, error) {
	if len(history) <= 2*p.period {
		return domain.NewSignalMap(), nil
	}

	v := adxValue(history, p.period)

	m := domain.NewSignalMap()
	m.Values["adx"] = v
	m.Flags["trending"] = v > p.threshold
	return m, nil
}
