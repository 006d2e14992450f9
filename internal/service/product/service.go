package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"eshop/internal/domain"
	"eshop/internal/imaging"
	productrepo "eshop/internal/repository/product"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeaturedCount is how many products the storefront highlights.
const FeaturedCount = 4

type categoryLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
}

// Service serves the catalog and the admin product operations.
type Service struct {
	repo       productrepo.Repository
	categories categoryLookup
	logger     *log.Logger
}

func New(repo productrepo.Repository, categories categoryLookup, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, categories: categories, logger: logger}
}

// List returns products ordered by name, optionally restricted to a category.
func (s *Service) List(ctx context.Context, categoryID string) ([]domain.Product, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID != "" {
		if _, err := uuid.Parse(categoryID); err != nil {
			return []domain.Product{}, nil
		}
	}
	return s.repo.List(ctx, categoryID)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Featured returns the first FeaturedCount products by name.
func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	all, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(all) > FeaturedCount {
		all = all[:FeaturedCount]
	}
	return all, nil
}

// Input carries the editable product fields.
type Input struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"categoryId"`
}

func (in Input) normalize() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	switch {
	case in.Name == "":
		return in, fmt.Errorf("%w: product name is required", domain.ErrInvalidInput)
	case len([]rune(in.Name)) > domain.MaxProductNameLen:
		return in, fmt.Errorf("%w: product name exceeds %d characters", domain.ErrInvalidInput, domain.MaxProductNameLen)
	case len([]rune(in.Description)) > domain.MaxProductDescriptionLen:
		return in, fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidInput, domain.MaxProductDescriptionLen)
	case in.CategoryID == "":
		return in, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	in.Price = in.Price.Round(domain.PriceScale)
	if err := domain.CheckPrice(in.Price); err != nil {
		return in, err
	}
	return in, nil
}

func (s *Service) checkCategory(ctx context.Context, id string) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: unknown category %s", domain.ErrInvalidInput, id)
		}
		return err
	}
	return nil
}

// Create adds a product with the placeholder image.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		ImageURL:    domain.PlaceholderImageURL,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("product svc: created id=%s name=%s", created.ID, created.Name)
	return created, nil
}

// Update replaces name, description, price and category. The image and
// existing order lines are not affected.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, domain.Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("product svc: updated id=%s price=%s", id, updated.Price.StringFixed(domain.PriceScale))
	return updated, nil
}

func (s *Service) SetImage(ctx context.Context, id, imageURL string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return s.repo.SetImage(ctx, id, imageURL)
}

// ApplyImages assigns image files to products by name and returns how many
// products were updated.
func (s *Service) ApplyImages(ctx context.Context, files []string, rules []imaging.ImageRule) (int, error) {
	products, err := s.repo.List(ctx, "")
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, a := range imaging.MatchImages(products, files, rules) {
		if err := s.repo.SetImage(ctx, a.ProductID, a.ImageURL); err != nil {
			return applied, fmt.Errorf("set image for product %s: %w", a.ProductID, err)
		}
		applied++
	}
	s.logger.Printf("product svc: applied images count=%d", applied)
	return applied, nil
}
