// Package portfolio implements the cash-and-position ledger used by the
// trading engine: buys, sells, and mark-to-market valuation for a single
// symbol.
package portfolio

// Portfolio tracks cash, a single long position, and realized plus
// mark-to-market P&L. All mutation is sequential; one Portfolio belongs
// to exactly one engine instance and must not be shared across
// concurrently running engines.
type Portfolio struct {
	initialCapital float64
	cash           float64
	position       float64
	entryPrice     float64
	realized       float64
	unrealized     float64
	lastPrice      float64
}

// New creates a Portfolio funded with initialCapital.
func New(initialCapital float64) *Portfolio {
	p := &Portfolio{}
	p.Reset(initialCapital)
	return p
}

// Reset returns the ledger to a fresh snapshot: full cash, no position,
// no P&L.
func (p *Portfolio) Reset(initialCapital float64) {
	p.initialCapital = initialCapital
	p.cash = initialCapital
	p.position = 0
	p.entryPrice = 0
	p.realized = 0
	p.unrealized = 0
	p.lastPrice = 0
}

// Buy debits cash and credits the position. It executes only when cash
// covers the full cost and reports whether it executed; an unaffordable
// buy is a silent no-op. The entry price is overwritten on every buy
// (single-lot accounting; no cost averaging).
func (p *Portfolio) Buy(price, size float64) bool {
	if price <= 0 || size <= 0 {
		return false
	}
	cost := price * size
	if p.cash < cost {
		return false
	}
	p.cash -= cost
	p.position += size
	p.entryPrice = price
	return true
}

// Sell credits cash and debits the position, realizing P&L against the
// recorded entry price. It executes only when the position covers size;
// an oversized sell is a silent no-op. Shorting is not supported.
func (p *Portfolio) Sell(price, size float64) bool {
	if price <= 0 || size <= 0 {
		return false
	}
	if p.position < size {
		return false
	}
	p.cash += price * size
	p.position -= size
	p.realized += (price - p.entryPrice) * size
	return true
}

// Update marks the open position to the given price. The engine calls
// this once per bar, trade or no trade, so the equity curve stays
// continuous.
func (p *Portfolio) Update(currentPrice float64) {
	p.lastPrice = currentPrice
	p.unrealized = (currentPrice - p.entryPrice) * p.position
}

// PnL returns cumulative P&L: realized plus the unrealized mark from the
// last Update.
func (p *Portfolio) PnL() float64 {
	return p.realized + p.unrealized
}

// Cash returns the available cash balance.
func (p *Portfolio) Cash() float64 { return p.cash }

// Position returns the share position (possibly fractional).
func (p *Portfolio) Position() float64 { return p.position }

// EntryPrice returns the entry price of the open position.
func (p *Portfolio) EntryPrice() float64 { return p.entryPrice }

// Realized returns realized P&L from closed positions.
func (p *Portfolio) Realized() float64 { return p.realized }

// Value returns total portfolio value at the last marked price.
func (p *Portfolio) Value() float64 {
	return p.cash + p.position*p.lastPrice
}
