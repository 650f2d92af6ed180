package plugin

import (
	"math"

	"meridian/internal/domain"
)

// Shared indicator math. All helpers operate on the tail of the supplied
// series so plugins can pass the full history and let the helper pick its
// window.

func closes(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// sma returns the simple moving average of the last period values.
// The caller must ensure len(vals) >= period.
func sma(vals []float64, period int) float64 {
	sum := 0.0
	for _, v := range vals[len(vals)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// emaSeries returns the exponential moving average series seeded with the
// first value (the ewm(adjust=false) convention).
func emaSeries(vals []float64, period int) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	k := 2.0 / (float64(period) + 1.0)
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = vals[i]*k + out[i-1]*(1-k)
	}
	return out
}

// rsiValue computes Wilder's RSI over the whole series: simple average of
// the first period changes, then Wilder smoothing for the remainder.
// The caller must ensure len(vals) > period.
func rsiValue(vals []float64, period int) float64 {
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := vals[i] - vals[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(vals); i++ {
		change := vals[i] - vals[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// highestHigh and lowestLow scan the last period bars.
func highestHigh(bars []domain.Bar, period int) float64 {
	hh := math.Inf(-1)
	for _, b := range bars[len(bars)-period:] {
		if b.High > hh {
			hh = b.High
		}
	}
	return hh
}

func lowestLow(bars []domain.Bar, period int) float64 {
	ll := math.Inf(1)
	for _, b := range bars[len(bars)-period:] {
		if b.Low < ll {
			ll = b.Low
		}
	}
	return ll
}

// stochK computes the raw %K at index i (inclusive window ending at i).
func stochK(bars []domain.Bar, i, period int) float64 {
	window := bars[i+1-period : i+1]
	hh := math.Inf(-1)
	ll := math.Inf(1)
	for _, b := range window {
		if b.High > hh {
			hh = b.High
		}
		if b.Low < ll {
			ll = b.Low
		}
	}
	if hh == ll {
		return 50
	}
	return (bars[i].Close - ll) / (hh - ll) * 100
}

// trueRange computes the TR at index i (i >= 1 uses the previous close).
func trueRange(bars []domain.Bar, i int) float64 {
	if i == 0 {
		return bars[0].High - bars[0].Low
	}
	prevClose := bars[i-1].Close
	tr := bars[i].High - bars[i].Low
	if v := math.Abs(bars[i].High - prevClose); v > tr {
		tr = v
	}
	if v := math.Abs(bars[i].Low - prevClose); v > tr {
		tr = v
	}
	return tr
}

// atrValue computes Wilder's ATR over the whole series: simple average of
// the first period true ranges, then Wilder smoothing. The caller must
// ensure len(bars) > period.
func atrValue(bars []domain.Bar, period int) float64 {
	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRange(bars, i)
	}
	atr /= float64(period)
	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trueRange(bars, i)) / float64(period)
	}
	return atr
}

// adxValue computes Wilder's ADX. It needs at least 2*period bars; the
// caller must check len(bars) > 2*period.
func adxValue(bars []domain.Bar, period int) float64 {
	n := len(bars)
	fp := float64(period)

	// Wilder-smoothed TR, +DM, -DM over the first period.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += trueRange(bars, i)
		plus, minus := directionalMovement(bars, i)
		smPlus += plus
		smMinus += minus
	}

	dx := func() float64 {
		if smTR == 0 {
			return 0
		}
		pdi := 100 * smPlus / smTR
		mdi := 100 * smMinus / smTR
		if pdi+mdi == 0 {
			return 0
		}
		return 100 * math.Abs(pdi-mdi) / (pdi + mdi)
	}

	// First ADX is the average of the first period DX values.
	var adx float64
	dxCount := 0
	adxSeeded := false

	record := func(v float64) {
		if !adxSeeded {
			adx += v
			dxCount++
			if dxCount == period {
				adx /= fp
				adxSeeded = true
			}
			return
		}
		adx = (adx*(fp-1) + v) / fp
	}

	record(dx())

	for i := period + 1; i < n; i++ {
		smTR = smTR - smTR/fp + trueRange(bars, i)
		plus, minus := directionalMovement(bars, i)
		smPlus = smPlus - smPlus/fp + plus
		smMinus = smMinus - smMinus/fp + minus
		record(dx())
	}

	if !adxSeeded {
		return adx / float64(dxCount)
	}
	return adx
}

func directionalMovement(bars []domain.Bar, i int) (plus, minus float64) {
	up := bars[i].High - bars[i-1].High
	down := bars[i-1].Low - bars[i].Low
	if up > down && up > 0 {
		plus = up
	}
	if down > up && down > 0 {
		minus = down
	}
	return plus, minus
}

// noSignal is the map signal plugins return while warming up.
func noSignal() domain.SignalMap {
	m := domain.NewSignalMap()
	m.Flags[domain.FlagBuy] = false
	m.Flags[domain.FlagSell] = false
	return m
}
