package customer

import (
	"context"
	"errors"
	"io"
	"log"

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

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `
SELECT id::text, name, COALESCE(phone, ''), COALESCE(email, ''), created_at
FROM customers
WHERE id = $1
`
	var c domain.Customer
	err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("customer repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("customer repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Search(ctx context.Context, query string, limit int) ([]domain.Customer, error) {
	const q = `
SELECT id::text, name, COALESCE(phone, ''), COALESCE(email, ''), created_at
FROM customers
WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR phone ILIKE '%' || $1 || '%'
ORDER BY name ASC
LIMIT $2
`
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, q, query, limit)
	if err != nil {
		r.logger.Printf("customer repo: search query=%q error=%v", query, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (id, name, phone, email)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, NULLIF($3, ''), NULLIF($4, ''))
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    phone = EXCLUDED.phone,
    email = EXCLUDED.email
RETURNING id::text, created_at
`
	var out domain.Customer
	if err := r.pool.QueryRow(ctx, q, c.ID, c.Name, c.Phone, c.Email).Scan(&out.ID, &out.CreatedAt); err != nil {
		r.logger.Printf("customer repo: upsert name=%q error=%v", c.Name, err)
		return nil, err
	}
	out.Name = c.Name
	out.Phone = c.Phone
	out.Email = c.Email
	return &out, nil
}
