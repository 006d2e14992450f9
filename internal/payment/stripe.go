package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"eshop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

type checkoutSessions interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Stripe creates Stripe Checkout sessions.
type Stripe struct {
	sessions checkoutSessions
	// appURL prefixes relative product image paths.
	appURL string
	logger *log.Logger
}

func NewStripe(secretKey, appURL string, logger *log.Logger) *Stripe {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Stripe{sessions: sc.CheckoutSessions, appURL: strings.TrimRight(appURL, "/"), logger: logger}
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, order domain.Order, successURL, cancelURL string) (string, error) {
	if len(order.Items) == 0 {
		return "", errors.New("order has no items")
	}
	s.logger.Printf("payment: creating stripe session order_id=%s", order.ID)

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
		CustomerEmail:      stripe.String(order.CustomerEmail),
		LineItems:          s.lineItems(order),
	}
	params.Context = ctx
	params.AddMetadata("order_id", order.ID)

	sess, err := s.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe session for order %s: %w", order.ID, err)
	}
	s.logger.Printf("payment: created stripe session session_id=%s order_id=%s", sess.ID, order.ID)
	return sess.URL, nil
}

func (s *Stripe) lineItems(order domain.Order) []*stripe.CheckoutSessionLineItemParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.ProductName
		if name == "" {
			name = "Product"
		}
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(name),
		}
		if item.Description != "" {
			product.Description = stripe.String(item.Description)
		}
		if img := s.absoluteImageURL(item.ImageURL); img != "" {
			product.Images = stripe.StringSlice([]string{img})
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(string(stripe.CurrencyUSD)),
				ProductData: product,
				UnitAmount:  stripe.Int64(toCents(item.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}
	return items
}

func (s *Stripe) absoluteImageURL(raw string) string {
	if raw == "" || strings.HasPrefix(raw, "http") {
		return raw
	}
	if s.appURL == "" {
		return ""
	}
	return s.appURL + "/" + strings.TrimLeft(raw, "/")
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
