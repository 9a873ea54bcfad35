package catalog

import (
	"context"
	"strings"

	"enterprise-pos/internal/domain"
	productrepo "enterprise-pos/internal/repository/product"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Service serves the product listing shown on the POS terminal.
type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns active products matched by category and name/barcode search.
// The limit is clamped to [1, 100] with a default of 50.
func (s *Service) List(ctx context.Context, filter productrepo.ListFilter) ([]domain.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}
