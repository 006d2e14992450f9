// Package notify delivers order receipts. Delivery is best effort: callers log
// a failed send and carry on.
package notify

import (
	"context"
	"fmt"
	"io"
	"log"

	"eshop/internal/domain"
)

// Sender delivers the confirmation for a finalized order.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, order domain.Order) error
}

// SendError is the only error a Sender returns.
type SendError struct {
	OrderID string
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send confirmation for order %s: %v", e.OrderID, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Disabled is used when no SMTP server is configured.
type Disabled struct {
	logger *log.Logger
}

func NewDisabled(logger *log.Logger) *Disabled {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Disabled{logger: logger}
}

func (d *Disabled) SendOrderConfirmation(_ context.Context, order domain.Order) error {
	d.logger.Printf("notify: smtp not configured, skipping email order_id=%s", order.ID)
	return nil
}
