package order

import (
	"context"

	"eshop/internal/domain"
)

// BuildFunc turns the locked cart rows into the order to persist.
type BuildFunc func(items []domain.CartItem) (domain.Order, error)

type Repository interface {
	// CreateFromCart loads the session cart, persists the order produced by build
	// and deletes the consumed cart rows in one transaction.
	CreateFromCart(ctx context.Context, sessionID string, build BuildFunc) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) error
}
