package order

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"eshop/internal/domain"
	"eshop/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestPostgres_CreateFromCartSnapshotsAndClears(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	categoryID := insertCategory(ctx, t, pool, "Fitness")
	p1 := insertProduct(ctx, t, pool, categoryID, "Yoga Mat", "10.00")
	p2 := insertProduct(ctx, t, pool, categoryID, "Resistance Bands", "5.00")
	insertCartItem(ctx, t, pool, "sess-1", p1, 2)
	insertCartItem(ctx, t, pool, "sess-1", p2, 1)
	insertCartItem(ctx, t, pool, "sess-2", p2, 4)

	repo := NewPostgres(pool, nil)
	created, err := repo.CreateFromCart(ctx, "sess-1", func(items []domain.CartItem) (domain.Order, error) {
		return domain.SnapshotCart(items, domain.Customer{Name: "Ada", Email: "ada@example.com"}, time.Now())
	})
	if err != nil {
		t.Fatalf("CreateFromCart: %v", err)
	}
	if created.ID == "" || len(created.Items) != 2 {
		t.Fatalf("unexpected order %+v", created)
	}
	if !created.TotalAmount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected total 25.00, got %s", created.TotalAmount)
	}

	if n := countRows(ctx, t, pool, `SELECT COUNT(*) FROM cart_items WHERE session_id = 'sess-1'`); n != 0 {
		t.Fatalf("expected sess-1 cart cleared, got %d rows", n)
	}
	if n := countRows(ctx, t, pool, `SELECT COUNT(*) FROM cart_items WHERE session_id = 'sess-2'`); n != 1 {
		t.Fatalf("expected sess-2 cart untouched, got %d rows", n)
	}

	if _, err := pool.Exec(ctx, `UPDATE products SET price = 99.99 WHERE id = $1`, p1); err != nil {
		t.Fatalf("update price: %v", err)
	}
	loaded, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !loaded.TotalAmount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("total changed after price update: %s", loaded.TotalAmount)
	}
	for _, item := range loaded.Items {
		if item.ProductID == p1 && !item.UnitPrice.Equal(decimal.RequireFromString("10.00")) {
			t.Fatalf("unit price changed after price update: %s", item.UnitPrice)
		}
	}
	if loaded.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", loaded.Status)
	}
}

func TestPostgres_CreateFromEmptyCartPersistsNothing(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	_, err := repo.CreateFromCart(ctx, "empty", func(items []domain.CartItem) (domain.Order, error) {
		return domain.SnapshotCart(items, domain.Customer{Name: "Ada", Email: "ada@example.com"}, time.Now())
	})
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if n := countRows(ctx, t, pool, `SELECT COUNT(*) FROM orders`); n != 0 {
		t.Fatalf("expected no orders, got %d", n)
	}
	if n := countRows(ctx, t, pool, `SELECT COUNT(*) FROM order_items`); n != 0 {
		t.Fatalf("expected no order items, got %d", n)
	}
}

func TestPostgres_SetStatusAndMissingOrder(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if err := repo.SetStatus(ctx, "00000000-0000-0000-0000-000000000001", domain.OrderStatusPaid); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown order, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func TestPostgres_CreateFromCartAtQuantityAndPriceLimits(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	categoryID := insertCategory(ctx, t, pool, "Gear")
	product := insertProduct(ctx, t, pool, categoryID, "Treadmill", domain.MaxProductPrice.StringFixed(2))
	insertCartItem(ctx, t, pool, "bulk", product, domain.MaxCartQuantity)

	repo := NewPostgres(pool, nil)
	created, err := repo.CreateFromCart(ctx, "bulk", func(items []domain.CartItem) (domain.Order, error) {
		return domain.SnapshotCart(items, domain.Customer{Name: "Ada", Email: "ada@example.com"}, time.Now())
	})
	if err != nil {
		t.Fatalf("CreateFromCart: %v", err)
	}
	want := domain.MaxProductPrice.Mul(decimal.NewFromInt(domain.MaxCartQuantity))
	loaded, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !loaded.TotalAmount.Equal(want) {
		t.Fatalf("expected total %s, got %s", want.StringFixed(2), loaded.TotalAmount)
	}

	if _, err := pool.Exec(ctx, `INSERT INTO cart_items (session_id, product_id, quantity) VALUES ('bulk', $1, $2)`, product, domain.MaxCartQuantity+1); err == nil {
		t.Fatalf("expected quantity above %d to be rejected by the schema", domain.MaxCartQuantity)
	}
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, cart_items, products, categories RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func insertCategory(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string) string {
	t.Helper()
	var id string
	if err := pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id::text`, name).Scan(&id); err != nil {
		t.Fatalf("insert category: %v", err)
	}
	return id
}

func insertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, categoryID, name, price string) string {
	t.Helper()
	var id string
	if err := pool.QueryRow(ctx, `INSERT INTO products (name, price, category_id) VALUES ($1, $2::numeric, $3) RETURNING id::text`, name, price, categoryID).Scan(&id); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}

func insertCartItem(ctx context.Context, t *testing.T, pool *pgxpool.Pool, sessionID, productID string, qty int) {
	t.Helper()
	if _, err := pool.Exec(ctx, `INSERT INTO cart_items (session_id, product_id, quantity) VALUES ($1, $2, $3)`, sessionID, productID, qty); err != nil {
		t.Fatalf("insert cart item: %v", err)
	}
}

func countRows(ctx context.Context, t *testing.T, pool *pgxpool.Pool, q string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(ctx, q).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}
