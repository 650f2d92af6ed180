package engine

import (
	"math"

	"meridian/internal/domain"
)

// tradingDaysPerYear annualizes the Sharpe ratio for daily bars.
const tradingDaysPerYear = 252

// Metrics are the summary statistics of a completed backtest.
type Metrics struct {
	TotalReturnPct float64
	WinRate        float64
	ProfitFactor   float64
	MaxDrawdownPct float64
	SharpeRatio    float64
	RoundTrips     int
	Wins           int
	Losses         int
}

// computeMetrics derives summary statistics from the equity curve and
// trade log. Win/loss counting pairs each sell with the preceding buy's
// entry price.
func computeMetrics(initialCapital float64, equity []domain.EquityPoint, trades []domain.Trade) Metrics {
	var m Metrics

	if initialCapital > 0 && len(equity) > 0 {
		final := equity[len(equity)-1].TotalValue
		m.TotalReturnPct = (final - initialCapital) / initialCapital * 100
	}

	var grossProfit, grossLoss float64
	var entryPrice float64
	var holding bool
	for _, tr := range trades {
		switch tr.Side {
		case domain.SideBuy:
			entryPrice = tr.Price
			holding = true
		case domain.SideSell:
			if !holding {
				continue
			}
			pnl := (tr.Price - entryPrice) * tr.Shares
			if pnl > 0 {
				m.Wins++
				grossProfit += pnl
			} else {
				m.Losses++
				grossLoss += -pnl
			}
			m.RoundTrips++
			holding = false
		}
	}

	if m.RoundTrips > 0 {
		m.WinRate = float64(m.Wins) / float64(m.RoundTrips)
	}
	if grossLoss > 0 {
		m.ProfitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		m.ProfitFactor = math.Inf(1)
	}

	m.MaxDrawdownPct = maxDrawdown(equity)
	m.SharpeRatio = sharpeRatio(equity)
	return m
}

// maxDrawdown returns the largest peak-to-trough decline of the equity
// curve, as a positive percentage.
func maxDrawdown(equity []domain.EquityPoint) float64 {
	var peak, maxDD float64
	for _, ep := range equity {
		if ep.TotalValue > peak {
			peak = ep.TotalValue
		}
		if peak > 0 {
			dd := (peak - ep.TotalValue) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpeRatio computes the annualized Sharpe ratio over per-bar equity
// returns, assuming a zero risk-free rate. Returns 0 when the curve is
// too short or has no variance.
func sharpeRatio(equity []domain.EquityPoint) float64 {
	if len(equity) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].TotalValue
		if prev <= 0 {
			continue
		}
		returns = append(returns, (equity[i].TotalValue-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(returns)-1))
	if std == 0 {
		return 0
	}

	return mean / std * math.Sqrt(tradingDaysPerYear)
}
