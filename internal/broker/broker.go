// Package broker defines the Broker interface and implementations for
// routing live orders to a brokerage or a local paper account.
package broker

import (
	"context"
	"time"

	"meridian/internal/domain"
)

// OrderStatus is the lifecycle state of a submitted order.
type OrderStatus string

const (
	OrderStatusAccepted OrderStatus = "accepted"
	OrderStatusFilled   OrderStatus = "filled"
	OrderStatusRejected OrderStatus = "rejected"
)

// Order is the result of a market-order submission.
type Order struct {
	ID          string
	Symbol      string
	Side        domain.Side
	Qty         float64
	Status      OrderStatus
	FilledPrice float64
	SubmittedAt time.Time
}

// Broker abstracts order execution. The realtime runner submits market
// orders only; sizing and eligibility are decided upstream.
type Broker interface {
	// Name returns the broker identifier (e.g. "alpaca", "paper").
	Name() string

	// SubmitMarketOrder sends a market order for qty shares of symbol.
	SubmitMarketOrder(ctx context.Context, symbol string, side domain.Side, qty float64) (*Order, error)
}

// Quoter is implemented by brokers that fill against locally observed
// prices instead of an exchange. The realtime runner feeds it the close
// of every incoming bar.
type Quoter interface {
	Quote(symbol string, price float64)
}
