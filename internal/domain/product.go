package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxProductNameLen        = 100
	MaxProductDescriptionLen = 1000
	MaxCategoryNameLen       = 50

	// MaxCartQuantity bounds the units of one product in a session cart.
	MaxCartQuantity = 10000

	// PlaceholderImageURL is assigned to products created without an image.
	PlaceholderImageURL = "https://via.placeholder.com/300x200?text=No+Image"
)

// MaxProductPrice is the highest accepted unit price. Together with
// MaxCartQuantity it keeps order totals within NUMERIC(18, 2).
var MaxProductPrice = decimal.NewFromInt(1_000_000)

// CheckPrice rejects negative prices and prices above MaxProductPrice.
func CheckPrice(price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	case price.GreaterThan(MaxProductPrice):
		return fmt.Errorf("%w: price exceeds %s", ErrInvalidInput, MaxProductPrice.StringFixed(PriceScale))
	}
	return nil
}

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ParseMoney parses a NUMERIC text value into a decimal rounded to PriceScale.
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(PriceScale), nil
}
