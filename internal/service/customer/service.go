package customer

import (
	"context"
	"strings"

	"enterprise-pos/internal/domain"
	customerrepo "enterprise-pos/internal/repository/customer"
)

// Service is the customer directory consulted when a sale is attached to a
// known customer.
type Service struct {
	repo customerrepo.Repository
}

func New(repo customerrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Find(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) Search(ctx context.Context, query string, limit int) ([]domain.Customer, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query), limit)
}
