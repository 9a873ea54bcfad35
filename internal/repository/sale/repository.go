package sale

import (
	"context"

	"enterprise-pos/internal/domain"
	"enterprise-pos/internal/pos"
)

// RefundResult reports a completed refund.
type RefundResult struct {
	SaleID        string
	RefundedCents int64
}

// Repository is the sale store: it persists checkouts, serves receipts and
// reverses completed sales. CreateSale satisfies pos.SaleStore.
type Repository interface {
	CreateSale(ctx context.Context, req pos.SaleRequest) (*pos.SaleResult, error)
	GetReceipt(ctx context.Context, saleID string) (*domain.Receipt, error)
	RefundSale(ctx context.Context, saleID, reason string) (*RefundResult, error)
}
