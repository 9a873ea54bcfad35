package sale

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"enterprise-pos/internal/domain"
	"enterprise-pos/internal/pos"
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

// CreateSale persists the sale in one transaction. Stock for every line is
// decremented with a conditional update, so two terminals racing for the
// last unit cannot both win; the loser gets *pos.OutOfStockError and nothing
// is written.
func (r *postgresRepo) CreateSale(ctx context.Context, req pos.SaleRequest) (*pos.SaleResult, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		r.logger.Printf("sale repo: begin tx error=%v", err)
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if req.CustomerID != nil {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, *req.CustomerID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
		}
		if !exists {
			return nil, &pos.ValidationError{Field: "customerId", Reason: "unknown customer"}
		}
	}

	type committedLine struct {
		pos.SaleLine
		name        string
		previousQty int
		newQty      int
	}
	lines := make([]committedLine, 0, len(req.Lines))

	for _, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, &pos.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		var name string
		var newQty int
		err := tx.QueryRow(ctx, `
UPDATE products
SET stock_quantity = stock_quantity - $2
WHERE id = $1 AND is_active AND stock_quantity >= $2
RETURNING name, stock_quantity
`, l.ProductID, l.Quantity).Scan(&name, &newQty)
		if err == nil {
			lines = append(lines, committedLine{SaleLine: l, name: name, previousQty: newQty + l.Quantity, newQty: newQty})
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
		}

		// Conditional update matched nothing: either the product is gone
		// or stock is short. Look it up to tell the two apart.
		var available int
		var active bool
		err = tx.QueryRow(ctx, `SELECT stock_quantity, is_active FROM products WHERE id = $1`, l.ProductID).Scan(&available, &active)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, &pos.ValidationError{Field: "productId", Reason: "unknown product " + l.ProductID}
		case err != nil:
			return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
		case !active:
			return nil, &pos.ValidationError{Field: "productId", Reason: "product " + l.ProductID + " is inactive"}
		default:
			return nil, &pos.OutOfStockError{ProductID: l.ProductID, Available: available}
		}
	}

	receipt := generateReceiptNumber(time.Now().UTC())
	var saleID string
	err = tx.QueryRow(ctx, `
INSERT INTO sales (customer_id, subtotal_cents, discount_percent, discount_cents, tax_percent, tax_cents, total_cents, status, receipt_number)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text
`, req.CustomerID, req.SubtotalCents, req.DiscountPercent, req.DiscountCents, req.TaxPercent, req.TaxCents, req.TotalCents, req.Status, receipt).Scan(&saleID)
	if err != nil {
		r.logger.Printf("sale repo: insert sale error=%v", err)
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}

	for _, l := range lines {
		lineTotal := l.UnitPriceCents * int64(l.Quantity)
		if _, err := tx.Exec(ctx, `
INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6)
`, saleID, l.ProductID, l.name, l.Quantity, l.UnitPriceCents, lineTotal); err != nil {
			return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO stock_movements (product_id, type, quantity, previous_quantity, new_quantity, reference_type, reference_id, reason)
VALUES ($1, 'out', $2, $3, $4, 'sale', $5, 'POS checkout')
`, l.ProductID, l.Quantity, l.previousQty, l.newQty, saleID); err != nil {
			return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
		}
	}

	var tendered, change *int64
	if req.PaymentMethod == pos.PaymentCash {
		t := req.TenderedCents
		c := req.TenderedCents - req.TotalCents
		tendered, change = &t, &c
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO payments (sale_id, method, amount_cents, status, tendered_cents, change_cents)
VALUES ($1, $2, $3, 'completed', $4, $5)
`, saleID, string(req.PaymentMethod), req.TotalCents, tendered, change); err != nil {
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Printf("sale repo: commit error=%v", err)
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}

	r.logger.Printf("sale repo: created sale id=%s receipt=%s total_cents=%d lines=%d", saleID, receipt, req.TotalCents, len(lines))
	return &pos.SaleResult{SaleID: saleID, ReceiptNumber: receipt}, nil
}

func (r *postgresRepo) GetReceipt(ctx context.Context, saleID string) (*domain.Receipt, error) {
	const saleQ = `
SELECT s.receipt_number, s.created_at, s.subtotal_cents, s.discount_cents, s.tax_cents, s.total_cents,
       s.customer_id::text, COALESCE(c.name, ''), COALESCE(c.phone, ''), COALESCE(c.email, '')
FROM sales s
LEFT JOIN customers c ON c.id = s.customer_id
WHERE s.id = $1
`
	var rec domain.Receipt
	var customerID *string
	var custName, custPhone, custEmail string
	err := r.pool.QueryRow(ctx, saleQ, saleID).Scan(
		&rec.ReceiptNumber,
		&rec.CreatedAt,
		&rec.SubtotalCents,
		&rec.DiscountCents,
		&rec.TaxCents,
		&rec.TotalCents,
		&customerID,
		&custName,
		&custPhone,
		&custEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if customerID != nil {
		rec.Customer = &domain.Customer{ID: *customerID, Name: custName, Phone: custPhone, Email: custEmail}
	}

	const itemsQ = `
SELECT product_name, quantity, unit_price_cents, total_cents
FROM sale_items
WHERE sale_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, itemsQ, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line domain.ReceiptLine
		if err := rows.Scan(&line.Name, &line.Quantity, &line.UnitPriceCents, &line.TotalCents); err != nil {
			return nil, err
		}
		rec.Items = append(rec.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const payQ = `
SELECT method, amount_cents, tendered_cents, change_cents
FROM payments
WHERE sale_id = $1
ORDER BY created_at ASC
LIMIT 1
`
	if err := r.pool.QueryRow(ctx, payQ, saleID).Scan(&rec.Payment.Method, &rec.Payment.AmountCents, &rec.Payment.TenderedCents, &rec.Payment.ChangeCents); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	return &rec, nil
}

// RefundSale reverses a completed sale in one transaction: stock comes back
// for every line, a reverse stock movement is recorded per product, the sale
// flips to 'refunded' and a refund payment row is written for the sale total.
// A sale can only be refunded once.
func (r *postgresRepo) RefundSale(ctx context.Context, saleID, reason string) (*RefundResult, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		r.logger.Printf("sale repo: begin refund tx error=%v", err)
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}
	defer tx.Rollback(ctx)

	var status string
	var totalCents int64
	err = tx.QueryRow(ctx, `SELECT status, total_cents FROM sales WHERE id = $1 FOR UPDATE`, saleID).Scan(&status, &totalCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}
	if status == "refunded" {
		return nil, pos.ErrAlreadyRefunded
	}

	rows, err := tx.Query(ctx, `SELECT product_id::text, quantity FROM sale_items WHERE sale_id = $1`, saleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}
	type refundLine struct {
		productID string
		quantity  int
	}
	var items []refundLine
	for rows.Next() {
		var l refundLine
		if err := rows.Scan(&l.productID, &l.quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
		}
		items = append(items, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}

	movementReason := "Refund"
	if reason != "" {
		movementReason = "Refund: " + reason
	}
	for _, l := range items {
		var newQty int
		err := tx.QueryRow(ctx, `
UPDATE products
SET stock_quantity = stock_quantity + $2
WHERE id = $1
RETURNING stock_quantity
`, l.productID, l.quantity).Scan(&newQty)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO stock_movements (product_id, type, quantity, previous_quantity, new_quantity, reference_type, reference_id, reason)
VALUES ($1, 'in', $2, $3, $4, 'refund', $5, $6)
`, l.productID, l.quantity, newQty-l.quantity, newQty, saleID, movementReason); err != nil {
			return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE sales SET status = 'refunded' WHERE id = $1`, saleID); err != nil {
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO payments (sale_id, method, amount_cents, status)
VALUES ($1, 'refund', $2, 'completed')
`, saleID, totalCents); err != nil {
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Printf("sale repo: refund commit error=%v", err)
		return nil, fmt.Errorf("%w: %v", pos.ErrServiceUnavailable, err)
	}

	r.logger.Printf("sale repo: refunded sale id=%s amount_cents=%d lines=%d", saleID, totalCents, len(items))
	return &RefundResult{SaleID: saleID, RefundedCents: totalCents}, nil
}

// generateReceiptNumber produces RCP-YYYYMMDD-NNNN. The random suffix is
// backed by a unique index on sales.receipt_number, so a rare same-day
// collision fails the insert instead of duplicating a receipt.
func generateReceiptNumber(now time.Time) string {
	return fmt.Sprintf("RCP-%s-%04d", now.Format("20060102"), 1000+rand.Intn(9000))
}
