package cart

import (
	"context"

	"eshop/internal/domain"
)

type Repository interface {
	// ListBySession returns the session's items with their products, oldest first.
	ListBySession(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	FindBySessionAndProduct(ctx context.Context, sessionID, productID string) (*domain.CartItem, error)
	Insert(ctx context.Context, sessionID, productID string, quantity int) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, id string, quantity int) error
	// DeleteOwned removes the item only when it belongs to sessionID.
	DeleteOwned(ctx context.Context, sessionID, id string) (bool, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
}
