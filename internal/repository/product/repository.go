package product

import (
	"context"

	"enterprise-pos/internal/domain"
)

// ListFilter narrows the POS product listing.
type ListFilter struct {
	CategoryID string
	Search     string
	Limit      int
}

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}
