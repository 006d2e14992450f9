package payment

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"eshop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

type stubSessions struct {
	params *stripe.CheckoutSessionParams
	err    error
}

func (s *stubSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func testOrder() domain.Order {
	return domain.Order{
		ID:            "o1",
		CustomerEmail: "ada@example.com",
		Items: []domain.OrderItem{
			{ProductName: "Yoga Mat", Description: "Non-slip", ImageURL: "/uploads/products/mat.png", Quantity: 2, UnitPrice: decimal.RequireFromString("29.99")},
			{ProductName: "Bands", ImageURL: "https://cdn.example.com/b.png", Quantity: 1, UnitPrice: decimal.RequireFromString("5")},
		},
	}
}

func TestStripeCreateCheckoutSession(t *testing.T) {
	sessions := &stubSessions{}
	gw := &Stripe{sessions: sessions, appURL: "https://shop.example.com", logger: discardLogger()}

	url, err := gw.CreateCheckoutSession(context.Background(), testOrder(), "https://shop.example.com/orders/payment-success?session_id={CHECKOUT_SESSION_ID}", "https://shop.example.com/orders/payment-cancelled?orderId=o1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://checkout.stripe.com/c/pay/cs_test_1" {
		t.Fatalf("unexpected url %q", url)
	}

	p := sessions.params
	if *p.Mode != "payment" || *p.CustomerEmail != "ada@example.com" || p.Metadata["order_id"] != "o1" {
		t.Fatalf("unexpected params %+v", p)
	}
	if len(p.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(p.LineItems))
	}
	first := p.LineItems[0]
	if *first.PriceData.UnitAmount != 2999 || *first.Quantity != 2 || *first.PriceData.Currency != "usd" {
		t.Fatalf("unexpected first line %+v", first.PriceData)
	}
	if got := *first.PriceData.ProductData.Images[0]; got != "https://shop.example.com/uploads/products/mat.png" {
		t.Fatalf("expected absolute image url, got %q", got)
	}
	if got := *p.LineItems[1].PriceData.ProductData.Images[0]; got != "https://cdn.example.com/b.png" {
		t.Fatalf("expected absolute url kept, got %q", got)
	}
	if *p.LineItems[1].PriceData.UnitAmount != 500 {
		t.Fatalf("expected 500 cents, got %d", *p.LineItems[1].PriceData.UnitAmount)
	}
}

func TestStripeCreateCheckoutSessionError(t *testing.T) {
	gw := &Stripe{sessions: &stubSessions{err: errors.New("invalid api key")}, logger: discardLogger()}
	if _, err := gw.CreateCheckoutSession(context.Background(), testOrder(), "s", "c"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStripeRejectsEmptyOrder(t *testing.T) {
	sessions := &stubSessions{}
	gw := &Stripe{sessions: sessions, logger: discardLogger()}
	if _, err := gw.CreateCheckoutSession(context.Background(), domain.Order{ID: "o"}, "s", "c"); err == nil {
		t.Fatalf("expected error for empty order")
	}
	if sessions.params != nil {
		t.Fatalf("gateway should not be called")
	}
}

func TestToCents(t *testing.T) {
	cases := map[string]int64{"0": 0, "19.99": 1999, "0.5": 50, "329.99": 32999}
	for in, want := range cases {
		if got := toCents(decimal.RequireFromString(in)); got != want {
			t.Fatalf("toCents(%s) = %d, want %d", in, got, want)
		}
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
