package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"eshop/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) CreateFromCart(ctx context.Context, sessionID string, build BuildFunc) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	items, err := lockCart(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	order, err := build(items)
	if err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx, `
INSERT INTO orders (created_at, customer_name, customer_email, total_amount, status)
VALUES ($1, $2, $3, $4::numeric, $5)
RETURNING id::text
`, order.CreatedAt, order.CustomerName, order.CustomerEmail, order.TotalAmount.StringFixed(domain.PriceScale), string(order.Status)).Scan(&order.ID); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4::numeric)
RETURNING id::text
`, order.ID, item.ProductID, item.Quantity, item.UnitPrice.StringFixed(domain.PriceScale)).Scan(&item.ID); err != nil {
			return nil, fmt.Errorf("insert order item product_id=%s: %w", item.ProductID, err)
		}
	}

	consumed := make([]string, 0, len(items))
	for _, ci := range items {
		consumed = append(consumed, ci.ID)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id::text = ANY($1)`, consumed); err != nil {
		return nil, fmt.Errorf("clear consumed cart items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s session_id=%s items=%d total=%s", order.ID, sessionID, len(order.Items), order.TotalAmount.StringFixed(domain.PriceScale))
	return &order, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	var (
		order domain.Order
		total string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id::text, created_at, customer_name, customer_email, total_amount::text, status
FROM orders
WHERE id = $1
`, id).Scan(&order.ID, &order.CreatedAt, &order.CustomerName, &order.CustomerEmail, &total, &order.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if order.TotalAmount, err = domain.ParseMoney(total); err != nil {
		return nil, fmt.Errorf("parse total for order %s: %w", id, err)
	}
	order.CreatedAt = order.CreatedAt.UTC()

	rows, err := r.pool.Query(ctx, `
SELECT oi.id::text, oi.order_id::text, oi.product_id::text, p.name, COALESCE(p.description, ''), COALESCE(p.image_url, ''), oi.quantity, oi.unit_price::text
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = $1
ORDER BY p.name ASC, oi.id ASC
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item  domain.OrderItem
			price string
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Description, &item.ImageURL, &item.Quantity, &price); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = domain.ParseMoney(price); err != nil {
			return nil, fmt.Errorf("parse unit price for order item %s: %w", item.ID, err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: status id=%s status=%s", id, status)
	return nil
}

func lockCart(ctx context.Context, tx pgx.Tx, sessionID string) ([]domain.CartItem, error) {
	rows, err := tx.Query(ctx, `
SELECT ci.id::text, ci.session_id, ci.product_id::text, ci.quantity, ci.created_at,
       p.name, COALESCE(p.description, ''), p.price::text, COALESCE(p.image_url, '')
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.session_id = $1
ORDER BY ci.created_at ASC, ci.id ASC
FOR UPDATE OF ci
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			item  domain.CartItem
			p     domain.Product
			price string
		)
		if err := rows.Scan(&item.ID, &item.SessionID, &item.ProductID, &item.Quantity, &item.CreatedAt,
			&p.Name, &p.Description, &price, &p.ImageURL); err != nil {
			return nil, err
		}
		if p.Price, err = domain.ParseMoney(price); err != nil {
			return nil, fmt.Errorf("parse price for product %s: %w", item.ProductID, err)
		}
		p.ID = item.ProductID
		item.Product = &p
		items = append(items, item)
	}
	return items, rows.Err()
}
