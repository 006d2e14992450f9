package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"eshop/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `
SELECT p.id::text, p.name, COALESCE(p.description, ''), p.price::text, COALESCE(p.image_url, ''), p.category_id::text, c.name, p.created_at
FROM products p
JOIN categories c ON c.id = p.category_id
`

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

func (r *postgresRepo) List(ctx context.Context, categoryID string) ([]domain.Product, error) {
	q := selectColumns + `
WHERE ($1 = '' OR p.category_id::text = $1)
ORDER BY p.name ASC
`
	rows, err := r.pool.Query(ctx, q, categoryID)
	if err != nil {
		r.logger.Printf("product repo: list category_id=%s error=%v", categoryID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows category_id=%s error=%v", categoryID, err)
		return nil, err
	}
	r.logger.Printf("product repo: list category_id=%s count=%d", categoryID, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := selectColumns + `
WHERE p.id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, description, price, image_url, category_id)
VALUES ($1, NULLIF($2, ''), $3::numeric, NULLIF($4, ''), $5)
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q, p.Name, p.Description, p.Price.StringFixed(domain.PriceScale), p.ImageURL, p.CategoryID).Scan(&id); err != nil {
		r.logger.Printf("product repo: create name=%s error=%v", p.Name, err)
		return nil, translateErr(err)
	}
	r.logger.Printf("product repo: created id=%s name=%s", id, p.Name)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $2,
    description = NULLIF($3, ''),
    price = $4::numeric,
    category_id = $5
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, p.ID, p.Name, p.Description, p.Price.StringFixed(domain.PriceScale), p.CategoryID)
	if err != nil {
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *postgresRepo) SetImage(ctx context.Context, id, imageURL string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET image_url = NULLIF($2, '') WHERE id = $1`, id, imageURL)
	if err != nil {
		r.logger.Printf("product repo: set image id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, description, price, image_url, category_id)
VALUES ($1, NULLIF($2, ''), $3::numeric, NULLIF($4, ''), $5)
ON CONFLICT (category_id, name) DO UPDATE SET
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    image_url = COALESCE(EXCLUDED.image_url, products.image_url)
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, q, p.Name, p.Description, p.Price.StringFixed(domain.PriceScale), p.ImageURL, p.CategoryID).Scan(&id)
	if err != nil {
		r.logger.Printf("product repo: upsert name=%s category_id=%s error=%v", p.Name, p.CategoryID, err)
		return nil, fmt.Errorf("upsert product %q: %w", p.Name, translateErr(err))
	}
	r.logger.Printf("product repo: upserted name=%s id=%s", p.Name, id)
	return r.GetByID(ctx, id)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.ImageURL, &p.CategoryID, &p.CategoryName, &p.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := domain.ParseMoney(price)
	if err != nil {
		return nil, fmt.Errorf("parse price for product %s: %w", p.ID, err)
	}
	p.Price = amount
	return &p, nil
}

// translateErr maps a foreign key violation on category_id to ErrNotFound.
func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return domain.ErrNotFound
	}
	return err
}
