package broker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"meridian/internal/domain"
)

// Compile-time interface check.
var _ Broker = (*AlpacaBroker)(nil)

// AlpacaBroker submits orders through the Alpaca trading API. Point
// BaseURL at the paper endpoint for paper trading.
type AlpacaBroker struct {
	client *alpaca.Client
	log    *slog.Logger
}

// NewAlpacaBroker creates an AlpacaBroker with the given credentials and
// API endpoint.
func NewAlpacaBroker(apiKey, apiSecret, baseURL string) *AlpacaBroker {
	return &AlpacaBroker{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		log: slog.Default().With("broker", "alpaca"),
	}
}

// Name returns "alpaca".
func (b *AlpacaBroker) Name() string { return "alpaca" }

// SubmitMarketOrder places a day market order.
func (b *AlpacaBroker) SubmitMarketOrder(_ context.Context, symbol string, side domain.Side, qty float64) (*Order, error) {
	alpacaSide := alpaca.Buy
	if side == domain.SideSell {
		alpacaSide = alpaca.Sell
	}
	q := decimal.NewFromFloat(qty)

	placed, err := b.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      symbol,
		Qty:         &q,
		Side:        alpacaSide,
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	})
	if err != nil {
		return nil, fmt.Errorf("placing %s %v x%v: %w", symbol, side, qty, err)
	}

	order := &Order{
		ID:          placed.ID,
		Symbol:      symbol,
		Side:        side,
		Qty:         qty,
		Status:      OrderStatusAccepted,
		SubmittedAt: placed.SubmittedAt,
	}
	if placed.FilledAvgPrice != nil {
		order.Status = OrderStatusFilled
		order.FilledPrice, _ = placed.FilledAvgPrice.Float64()
	}
	if order.SubmittedAt.IsZero() {
		order.SubmittedAt = time.Now().UTC()
	}

	b.log.Info("order submitted", "id", order.ID, "symbol", symbol, "side", side, "qty", qty)
	return order, nil
}
