package category

import (
	"context"

	"eshop/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	// EnsureByName returns the category with the given name, creating it when missing.
	EnsureByName(ctx context.Context, name string) (*domain.Category, error)
}
