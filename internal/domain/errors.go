package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart is returned when an order is requested for a cart without items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidInput marks request data rejected before it reaches the store.
	ErrInvalidInput = errors.New("invalid input")
)
