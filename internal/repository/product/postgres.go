package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"enterprise-pos/internal/domain"
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

const productColumns = `
p.id::text, p.name, COALESCE(p.barcode, ''), COALESCE(p.sku, ''), COALESCE(p.description, ''),
p.price_cents, COALESCE(p.cost_cents, 0), p.stock_quantity, p.min_stock_level,
p.category_id::text, COALESCE(c.name, ''), COALESCE(p.image_url, ''), p.is_active, p.created_at`

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE p.is_active
`
	var args []interface{}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		q += " AND p.category_id = $" + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		q += " AND (p.name ILIKE $" + n + " OR p.barcode ILIKE $" + n + ")"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	q += " ORDER BY p.name ASC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
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
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("product repo: list count=%d search=%q", len(result), filter.Search)
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE p.id = $1
`
	row := r.pool.QueryRow(ctx, q, id)
	p, err := scanProduct(row)
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

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, barcode, sku, description, price_cents, cost_cents, stock_quantity, min_stock_level, category_id, image_url, is_active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, NULLIF($11, ''), $12)
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    barcode = EXCLUDED.barcode,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    cost_cents = EXCLUDED.cost_cents,
    stock_quantity = EXCLUDED.stock_quantity,
    min_stock_level = EXCLUDED.min_stock_level,
    category_id = EXCLUDED.category_id,
    image_url = EXCLUDED.image_url,
    is_active = EXCLUDED.is_active
RETURNING id::text, created_at
`
	var res domain.Product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.Name,
		product.Barcode,
		product.SKU,
		product.Description,
		product.PriceCents,
		product.CostCents,
		product.StockQuantity,
		product.MinStockLevel,
		product.CategoryID,
		product.ImageURL,
		product.IsActive,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert sku=%s error=%v", product.SKU, err)
		return nil, fmt.Errorf("upsert product %s: %w", product.SKU, err)
	}
	res.Name = product.Name
	res.Barcode = product.Barcode
	res.SKU = product.SKU
	res.Description = product.Description
	res.PriceCents = product.PriceCents
	res.CostCents = product.CostCents
	res.StockQuantity = product.StockQuantity
	res.MinStockLevel = product.MinStockLevel
	res.CategoryID = product.CategoryID
	res.ImageURL = product.ImageURL
	res.IsActive = product.IsActive
	r.logger.Printf("product repo: upserted sku=%s id=%s", res.SKU, res.ID)
	return &res, nil
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT id::text, name, created_at
FROM categories
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var categoryID *string
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Barcode,
		&p.SKU,
		&p.Description,
		&p.PriceCents,
		&p.CostCents,
		&p.StockQuantity,
		&p.MinStockLevel,
		&categoryID,
		&p.CategoryName,
		&p.ImageURL,
		&p.IsActive,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.CategoryID = categoryID
	return &p, nil
}
