package plugin

import "meridian/internal/domain"

var _ Plugin = (*ATR)(nil)

// ATR is a volatility plugin emitting Wilder's average true range. It
// carries no buy/sell flags; its value feeds sizing and reporting.
type ATR struct {
	period int
}

// NewATR creates an ATR plugin; 14 is the standard period.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// Name returns "atr".
func (p *ATR) Name() string { return "atr" }

// Process emits atr once enough bars exist, otherwise contributes nothing.
func (p *ATR) Process(history []domain.Bar) (domain.SignalMap, error) {
	if len(history) <= p.period {
		return domain.NewSignalMap(), nil
	}

	m := domain.NewSignalMap()
	m.Values["atr"] = atrValue(history, p.period)
	return m, nil
}
