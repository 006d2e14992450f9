package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks where an order is in the checkout flow. Lines and totals
// never change after creation; only the status moves.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// PriceScale is the number of fractional digits stored for money values.
const PriceScale = 2

type Order struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"createdAt"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        OrderStatus     `json:"status"`
	Items         []OrderItem     `json:"items"`
}

type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"orderId"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Description string          `json:"-"`
	ImageURL    string          `json:"-"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// LineTotal is the captured unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Customer identifies who placed an order.
type Customer struct {
	Name  string
	Email string
}

// SnapshotCart turns cart items into a new order, capturing each product's
// current price as the unit price. It fails with ErrEmptyCart when items is empty.
func SnapshotCart(items []CartItem, customer Customer, now time.Time) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}
	order := Order{
		CreatedAt:     now.UTC(),
		CustomerName:  strings.TrimSpace(customer.Name),
		CustomerEmail: strings.TrimSpace(customer.Email),
		TotalAmount:   decimal.Zero,
		Status:        OrderStatusPending,
		Items:         make([]OrderItem, 0, len(items)),
	}
	for _, ci := range items {
		unit := decimal.Zero
		var name, desc, image string
		if ci.Product != nil {
			unit = ci.Product.Price.Round(PriceScale)
			name = ci.Product.Name
			desc = ci.Product.Description
			image = ci.Product.ImageURL
		}
		line := OrderItem{
			ProductID:   ci.ProductID,
			ProductName: name,
			Description: desc,
			ImageURL:    image,
			Quantity:    ci.Quantity,
			UnitPrice:   unit,
		}
		order.Items = append(order.Items, line)
		order.TotalAmount = order.TotalAmount.Add(line.LineTotal())
	}
	return order, nil
}
