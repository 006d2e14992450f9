package cart

import (
	"context"
	"errors"
	"fmt"

	"eshop/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	const q = `
SELECT ci.id::text, ci.session_id, ci.product_id::text, ci.quantity, ci.created_at,
       p.name, COALESCE(p.description, ''), p.price::text, COALESCE(p.image_url, ''), p.category_id::text
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.session_id = $1
ORDER BY ci.created_at ASC, ci.id ASC
`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			item  domain.CartItem
			p     domain.Product
			price string
		)
		if err := rows.Scan(
			&item.ID,
			&item.SessionID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&p.Name,
			&p.Description,
			&price,
			&p.ImageURL,
			&p.CategoryID,
		); err != nil {
			return nil, err
		}
		amount, err := domain.ParseMoney(price)
		if err != nil {
			return nil, fmt.Errorf("parse price for product %s: %w", item.ProductID, err)
		}
		p.ID = item.ProductID
		p.Price = amount
		item.Product = &p
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresRepo) FindBySessionAndProduct(ctx context.Context, sessionID, productID string) (*domain.CartItem, error) {
	const q = `
SELECT id::text, session_id, product_id::text, quantity, created_at
FROM cart_items
WHERE session_id = $1 AND product_id = $2
ORDER BY created_at ASC
LIMIT 1
`
	var item domain.CartItem
	err := r.pool.QueryRow(ctx, q, sessionID, productID).Scan(&item.ID, &item.SessionID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepo) Insert(ctx context.Context, sessionID, productID string, quantity int) (*domain.CartItem, error) {
	const q = `
INSERT INTO cart_items (session_id, product_id, quantity)
VALUES ($1, $2, $3)
RETURNING id::text, session_id, product_id::text, quantity, created_at
`
	var item domain.CartItem
	err := r.pool.QueryRow(ctx, q, sessionID, productID, quantity).Scan(&item.ID, &item.SessionID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepo) SetQuantity(ctx context.Context, id string, quantity int) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, id, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteOwned(ctx context.Context, sessionID, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id::text = $1 AND session_id = $2`, id, sessionID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
