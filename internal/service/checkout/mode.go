package checkout

import "eshop/internal/payment"

// PaymentMode is chosen once at startup: NoGateway or HostedGateway.
type PaymentMode interface {
	paymentMode()
}

// NoGateway completes every order directly after it is created.
type NoGateway struct{}

// HostedGateway sends the customer to a provider-hosted payment page and
// finalizes the order from the provider's success callback.
type HostedGateway struct {
	Gateway payment.Gateway
	// BaseURL is the public URL callbacks are built from. When empty the
	// request's own base URL is used.
	BaseURL string
}

func (NoGateway) paymentMode()     {}
func (HostedGateway) paymentMode() {}

// ModeName is a short label for logs.
func ModeName(m PaymentMode) string {
	switch m.(type) {
	case HostedGateway:
		return "hosted"
	default:
		return "direct"
	}
}
