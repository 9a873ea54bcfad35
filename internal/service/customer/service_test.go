package customer

import (
	"context"
	"errors"
	"testing"

	"enterprise-pos/internal/domain"
)

type stubRepo struct {
	customer  *domain.Customer
	err       error
	lastID    string
	lastQuery string
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	s.lastID = id
	return s.customer, s.err
}

func (s *stubRepo) Search(_ context.Context, query string, _ int) ([]domain.Customer, error) {
	s.lastQuery = query
	if s.customer == nil {
		return nil, s.err
	}
	return []domain.Customer{*s.customer}, s.err
}

func (s *stubRepo) Upsert(_ context.Context, _ domain.Customer) (*domain.Customer, error) {
	return nil, nil
}

func TestFindTrimsID(t *testing.T) {
	repo := &stubRepo{customer: &domain.Customer{ID: "c1", Name: "Ada"}}
	svc := New(repo)

	got, err := svc.Find(context.Background(), "  c1  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastID != "c1" {
		t.Fatalf("expected trimmed id, got %q", repo.lastID)
	}
	if got.Name != "Ada" {
		t.Fatalf("unexpected customer %+v", got)
	}
}

func TestFindNotFound(t *testing.T) {
	repo := &stubRepo{err: domain.ErrNotFound}
	svc := New(repo)

	_, err := svc.Find(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
