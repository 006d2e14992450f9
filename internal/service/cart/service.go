package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"eshop/internal/domain"
	"github.com/shopspring/decimal"
)

// Service owns the cart rows of anonymous sessions.
type Service struct {
	repo        cartRepo
	productRepo productRepo
	logger      *log.Logger
}

type cartRepo interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	FindBySessionAndProduct(ctx context.Context, sessionID, productID string) (*domain.CartItem, error)
	Insert(ctx context.Context, sessionID, productID string, quantity int) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, id string, quantity int) error
	DeleteOwned(ctx context.Context, sessionID, id string) (bool, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartRepo, productRepo productRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, productRepo: productRepo, logger: logger}
}

// Summary backs the cart view.
type Summary struct {
	Items     []domain.CartItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"itemCount"`
}

var (
	errSessionRequired  = errors.New("session id required")
	errQuantityTooLarge = fmt.Errorf("%w: at most %d units of a product per cart", domain.ErrInvalidInput, domain.MaxCartQuantity)
)

func (s *Service) Items(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, nil
	}
	return s.repo.ListBySession(ctx, sessionID)
}

func (s *Service) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	items, err := s.Items(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return &Summary{Items: items, Total: domain.CartTotal(items), ItemCount: count}, nil
}

// Add puts quantity units of the product into the session cart. Quantities
// below one are treated as one. An existing line for the same product grows
// instead of being duplicated. A line may not exceed domain.MaxCartQuantity.
func (s *Service) Add(ctx context.Context, sessionID, productID string, quantity int) error {
	if strings.TrimSpace(sessionID) == "" {
		return errSessionRequired
	}
	if quantity < 1 {
		quantity = 1
	}
	if quantity > domain.MaxCartQuantity {
		return errQuantityTooLarge
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return err
	}

	existing, err := s.repo.FindBySessionAndProduct(ctx, sessionID, productID)
	switch {
	case err == nil:
		total := existing.Quantity + quantity
		if total > domain.MaxCartQuantity {
			return errQuantityTooLarge
		}
		if err := s.repo.SetQuantity(ctx, existing.ID, total); err != nil {
			return err
		}
		s.logger.Printf("cart svc: merge session_id=%s product_id=%s quantity=%d", sessionID, productID, total)
		return nil
	case errors.Is(err, domain.ErrNotFound):
		if _, err := s.repo.Insert(ctx, sessionID, productID, quantity); err != nil {
			return err
		}
		s.logger.Printf("cart svc: add session_id=%s product_id=%s quantity=%d", sessionID, productID, quantity)
		return nil
	default:
		return err
	}
}

// Remove deletes a cart line owned by the session. Lines that do not exist or
// belong to another session are ignored.
func (s *Service) Remove(ctx context.Context, sessionID, cartItemID string) error {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(cartItemID) == "" {
		return nil
	}
	deleted, err := s.repo.DeleteOwned(ctx, sessionID, cartItemID)
	if err != nil {
		return err
	}
	if deleted {
		s.logger.Printf("cart svc: remove session_id=%s item_id=%s", sessionID, cartItemID)
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	n, err := s.repo.DeleteBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Printf("cart svc: clear session_id=%s removed=%d", sessionID, n)
	}
	return nil
}
