package plugin

import "meridian/internal/domain"

var _ Plugin = (*MovingAverage)(nil)

// MovingAverage is a trend plugin emitting a same-period EMA and SMA of
// the close, flagging buys while price is above the EMA and sells while
// below it.
type MovingAverage struct {
	period int
}

// NewMovingAverage creates a moving-average plugin; 20 is the standard
// period.
func NewMovingAverage(period int) *MovingAverage {
	return &MovingAverage{period: period}
}

// Name returns "ma".
func (p *MovingAverage) Name() string { return "ma" }

// Process emits ema, sma, and price-vs-EMA flags.
func (p *MovingAverage) Process(history []domain.Bar) (domain.SignalMap, error) {
	if len(history) < p.period {
		return noSignal(), nil
	}

	vals := closes(history)
	ema := emaSeries(vals, p.period)
	lastClose := vals[len(vals)-1]
	lastEMA := ema[len(ema)-1]

	m := domain.NewSignalMap()
	m.Values["ema"] = lastEMA
	m.Values["sma"] = sma(vals, p.period)
	m.Flags[domain.FlagBuy] = lastClose > lastEMA
	m.Flags[domain.FlagSell] = lastClose < lastEMA
	return m, nil
}
