// Package events publishes order lifecycle messages for downstream consumers.
package events

import (
	"context"
	"time"

	"eshop/internal/domain"
)

// OrderEvent is the message body published when an order is finalized.
type OrderEvent struct {
	OrderID       string             `json:"orderId"`
	Status        domain.OrderStatus `json:"status"`
	CustomerEmail string             `json:"customerEmail"`
	TotalAmount   string             `json:"totalAmount"`
	ItemCount     int                `json:"itemCount"`
	FinalizedAt   time.Time          `json:"finalizedAt"`
}

// NewOrderEvent describes order at time at.
func NewOrderEvent(order domain.Order, at time.Time) OrderEvent {
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}
	return OrderEvent{
		OrderID:       order.ID,
		Status:        order.Status,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.TotalAmount.StringFixed(domain.PriceScale),
		ItemCount:     count,
		FinalizedAt:   at.UTC(),
	}
}

type Publisher interface {
	OrderFinalized(ctx context.Context, event OrderEvent) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) OrderFinalized(context.Context, OrderEvent) error { return nil }
