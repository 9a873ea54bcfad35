package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Name          string
	Barcode       string
	SKU           string
	PriceCents    int64
	StockQuantity int
	MinStockLevel int
	Category      string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{Name: "Espresso", Barcode: "1000000000017", SKU: "SKU-ESPRESSO", PriceCents: 250, StockQuantity: 500, MinStockLevel: 50, Category: "Drinks"},
		{Name: "Cappuccino", Barcode: "1000000000024", SKU: "SKU-CAPPUCCINO", PriceCents: 350, StockQuantity: 500, MinStockLevel: 50, Category: "Drinks"},
		{Name: "Croissant", Barcode: "1000000000031", SKU: "SKU-CROISSANT", PriceCents: 299, StockQuantity: 40, MinStockLevel: 10, Category: "Bakery"},
		{Name: "Vinyl Record", Barcode: "1000000000048", SKU: "SKU-VINYL", PriceCents: 2999, StockQuantity: 4, MinStockLevel: 2, Category: "Merch"},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	customers := []struct{ Name, Phone string }{
		{Name: "Walk-in Customer", Phone: ""},
		{Name: "Ada Brown", Phone: "+1-555-0101"},
	}
	for _, c := range customers {
		if err := upsertCustomer(ctx, pool, c.Name, c.Phone); err != nil {
			return fmt.Errorf("upsert customer %s: %w", c.Name, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	categoryID, err := ensureCategory(ctx, pool, p.Category)
	if err != nil {
		return fmt.Errorf("ensure category %s: %w", p.Category, err)
	}

	const q = `
INSERT INTO products (name, barcode, sku, price_cents, stock_quantity, min_stock_level, category_id, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, true)
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    barcode = EXCLUDED.barcode,
    price_cents = EXCLUDED.price_cents,
    min_stock_level = EXCLUDED.min_stock_level,
    category_id = EXCLUDED.category_id
`
	_, err = pool.Exec(ctx, q, p.Name, p.Barcode, p.SKU, p.PriceCents, p.StockQuantity, p.MinStockLevel, categoryID)
	return err
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	const q = `
INSERT INTO categories (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertCustomer(ctx context.Context, pool *pgxpool.Pool, name, phone string) error {
	const q = `
INSERT INTO customers (name, phone)
SELECT $1, NULLIF($2, '')
WHERE NOT EXISTS (SELECT 1 FROM customers WHERE name = $1)
`
	_, err := pool.Exec(ctx, q, name, phone)
	return err
}
