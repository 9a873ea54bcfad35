package customer

import (
	"context"

	"enterprise-pos/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Customer, error)
	Upsert(ctx context.Context, c domain.Customer) (*domain.Customer, error)
}
