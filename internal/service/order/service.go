package order

import (
	"context"
	"io"
	"log"
	"time"

	"eshop/internal/domain"
	orderrepo "eshop/internal/repository/order"
)

type orderRepo interface {
	CreateFromCart(ctx context.Context, sessionID string, build orderrepo.BuildFunc) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

// Service builds immutable orders from session carts.
type Service struct {
	repo   orderRepo
	now    func() time.Time
	logger *log.Logger
}

func New(repo orderRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, now: time.Now, logger: logger}
}

// CreateFromCart snapshots the session cart into a new order and empties the
// cart in the same transaction. It returns domain.ErrEmptyCart when there is
// nothing to order. Name and email are expected to be validated by the caller.
func (s *Service) CreateFromCart(ctx context.Context, sessionID, customerName, customerEmail string) (*domain.Order, error) {
	customer := domain.Customer{Name: customerName, Email: customerEmail}
	created, err := s.repo.CreateFromCart(ctx, sessionID, func(items []domain.CartItem) (domain.Order, error) {
		return domain.SnapshotCart(items, customer, s.now())
	})
	if err != nil {
		s.logger.Printf("order svc: create session_id=%s error=%v", sessionID, err)
		return nil, err
	}
	s.logger.Printf("order svc: create session_id=%s order_id=%s total=%s", sessionID, created.ID, created.TotalAmount.StringFixed(domain.PriceScale))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) SetStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return s.repo.SetStatus(ctx, id, status)
}
