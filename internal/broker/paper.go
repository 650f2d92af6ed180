package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meridian/internal/domain"
)

// Compile-time interface checks.
var _ Broker = (*PaperBroker)(nil)
var _ Quoter = (*PaperBroker)(nil)

// PaperBroker fills orders in memory at the last quoted price. It makes
// no external calls and is safe for concurrent use.
type PaperBroker struct {
	mu         sync.Mutex
	nextID     int
	lastPrices map[string]float64
	orders     []*Order
}

// NewPaperBroker creates an empty PaperBroker.
func NewPaperBroker() *PaperBroker {
	return &PaperBroker{lastPrices: make(map[string]float64)}
}

// Name returns "paper".
func (b *PaperBroker) Name() string { return "paper" }

// Quote records the latest observed price for symbol. Subsequent orders
// fill at this price.
func (b *PaperBroker) Quote(symbol string, price float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastPrices[symbol] = price
}

// SubmitMarketOrder fills the order immediately at the last quoted
// price. Fails if no price has been quoted for the symbol.
func (b *PaperBroker) SubmitMarketOrder(_ context.Context, symbol string, side domain.Side, qty float64) (*Order, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("invalid qty %v", qty)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	price, ok := b.lastPrices[symbol]
	if !ok {
		return nil, fmt.Errorf("no quote for %s", symbol)
	}

	b.nextID++
	order := &Order{
		ID:          fmt.Sprintf("paper-%d", b.nextID),
		Symbol:      symbol,
		Side:        side,
		Qty:         qty,
		Status:      OrderStatusFilled,
		FilledPrice: price,
		SubmittedAt: time.Now().UTC(),
	}
	b.orders = append(b.orders, order)
	return order, nil
}

// Orders returns a copy of all submitted orders, oldest first.
func (b *PaperBroker) Orders() []*Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Order, len(b.orders))
	copy(out, b.orders)
	return out
}
