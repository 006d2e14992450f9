package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one product line of an anonymous session cart.
type CartItem struct {
	ID        string    `json:"id"`
	SessionID string    `json:"-"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LineTotal is the current product price times quantity. Items without a
// resolved product count as zero.
func (c CartItem) LineTotal() decimal.Decimal {
	if c.Product == nil {
		return decimal.Zero
	}
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartTotal sums the line totals of items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
