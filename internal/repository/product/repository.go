package product

import (
	"context"

	"eshop/internal/domain"
)

type Repository interface {
	// List returns products ordered by name; an empty categoryID lists all of them.
	List(ctx context.Context, categoryID string) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	SetImage(ctx context.Context, id, imageURL string) error
	// Upsert inserts or updates a product identified by (category, name).
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
