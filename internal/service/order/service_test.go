package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"eshop/internal/domain"
	orderrepo "eshop/internal/repository/order"
	"github.com/shopspring/decimal"
)

type stubRepo struct {
	cart      []domain.CartItem
	createErr error
	saved     []domain.Order
	statuses  map[string]domain.OrderStatus
}

func (s *stubRepo) CreateFromCart(_ context.Context, _ string, build orderrepo.BuildFunc) (*domain.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	order, err := build(s.cart)
	if err != nil {
		return nil, err
	}
	order.ID = "order-1"
	s.saved = append(s.saved, order)
	s.cart = nil
	return &order, nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	for _, o := range s.saved {
		if o.ID == id {
			clone := o
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) SetStatus(_ context.Context, id string, status domain.OrderStatus) error {
	if s.statuses == nil {
		s.statuses = make(map[string]domain.OrderStatus)
	}
	s.statuses[id] = status
	return nil
}

func TestCreateFromCart(t *testing.T) {
	fixed := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)
	repo := &stubRepo{cart: []domain.CartItem{
		{ID: "c1", ProductID: "p1", Quantity: 2, Product: &domain.Product{ID: "p1", Price: decimal.RequireFromString("10.00")}},
		{ID: "c2", ProductID: "p2", Quantity: 1, Product: &domain.Product{ID: "p2", Price: decimal.RequireFromString("5.00")}},
	}}
	svc := New(repo, nil)
	svc.now = func() time.Time { return fixed }

	got, err := svc.CreateFromCart(context.Background(), "sess", "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "order-1" || !got.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected order header %+v", got)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected total 25.00, got %s", got.TotalAmount)
	}
	if len(got.Items) != 2 || !got.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("unexpected items %+v", got.Items)
	}
	if repo.cart != nil {
		t.Fatalf("expected cart consumed")
	}
}

func TestCreateFromEmptyCart(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo, nil)
	_, err := svc.CreateFromCart(context.Background(), "sess", "Ada", "ada@example.com")
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("expected nothing persisted, got %d orders", len(repo.saved))
	}
}

func TestCreateFromCartRepoError(t *testing.T) {
	svc := New(&stubRepo{createErr: errors.New("tx aborted")}, nil)
	if _, err := svc.CreateFromCart(context.Background(), "sess", "Ada", "ada@example.com"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetAndSetStatus(t *testing.T) {
	repo := &stubRepo{saved: []domain.Order{{ID: "o1"}}}
	svc := New(repo, nil)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.SetStatus(context.Background(), "o1", domain.OrderStatusPaid); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if repo.statuses["o1"] != domain.OrderStatusPaid {
		t.Fatalf("status not recorded: %+v", repo.statuses)
	}
}
