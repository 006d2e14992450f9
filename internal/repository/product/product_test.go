package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"eshop/internal/domain"
	"eshop/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestPostgres_ListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	books := insertCategory(ctx, t, pool, "Books")
	fitness := insertCategory(ctx, t, pool, "Fitness")

	repo := NewPostgres(pool, nil)
	mat, err := repo.Create(ctx, domain.Product{Name: "Yoga Mat", Price: decimal.RequireFromString("29.99"), CategoryID: fitness})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Product{Name: "C# in Depth", Price: decimal.RequireFromString("49.99"), CategoryID: books}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Name != "C# in Depth" {
		t.Fatalf("expected 2 products ordered by name, got %+v", all)
	}

	filtered, err := repo.List(ctx, fitness)
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != mat.ID || filtered[0].CategoryName != "Fitness" {
		t.Fatalf("unexpected filtered list %+v", filtered)
	}

	got, err := repo.GetByID(ctx, mat.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Price.Equal(decimal.RequireFromString("29.99")) {
		t.Fatalf("unexpected price %s", got.Price)
	}
	if _, err := repo.GetByID(ctx, "bogus"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_UpdateAndUpsert(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	categoryID := insertCategory(ctx, t, pool, "Electronics")
	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{Name: "4K Monitor", Price: decimal.RequireFromString("329.99"), CategoryID: categoryID})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	again, err := repo.Upsert(ctx, domain.Product{Name: "4K Monitor", Description: "27-inch", Price: decimal.RequireFromString("299.00"), CategoryID: categoryID})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if again.ID != p.ID || again.Description != "27-inch" {
		t.Fatalf("expected same product updated, got %+v", again)
	}

	p.Name = "4K Monitor Pro"
	updated, err := repo.Update(ctx, *p)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "4K Monitor Pro" {
		t.Fatalf("unexpected updated product %+v", updated)
	}
	if err := repo.SetImage(ctx, p.ID, "/uploads/products/a.png"); err != nil {
		t.Fatalf("SetImage: %v", err)
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
