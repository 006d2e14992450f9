// Package payment hands orders to a hosted payment page.
package payment

import (
	"context"

	"eshop/internal/domain"
)

// Gateway creates a hosted checkout page for an order and returns its URL.
// The success URL may contain the {CHECKOUT_SESSION_ID} placeholder which the
// provider replaces with its session token.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, order domain.Order, successURL, cancelURL string) (string, error)
}
