package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/lessonforge/internal/domain"
)

// TenantService owns tenant registration and lookup. It enforces identifier
// format before uniqueness: a malformed slug fails validation without ever
// touching the repository.
type TenantService struct {
	repo domain.TenantRepository
}

// NewTenantService creates a service backed by the given repository.
func NewTenantService(repo domain.TenantRepository) *TenantService {
	return &TenantService{repo: repo}
}

// Register validates the input and persists a new tenant atomically.
// Uniqueness is left to the repository's check-and-insert, so two
// concurrent registrations of the same slug yield exactly one success.
func (s *TenantService) Register(ctx context.Context, in domain.RegisterTenantInput) (domain.Tenant, error) {
	tenant, err := domain.NewTenant(newID(), in)
	if err != nil {
		return domain.Tenant{}, err
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		return domain.Tenant{}, err
	}

	return tenant, nil
}

// List returns all tenants newest-first, each with its derived lesson count.
func (s *TenantService) List(ctx context.Context) ([]domain.TenantWithLessonCount, error) {
	tenants, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	return tenants, nil
}

// FindBySlug returns the tenant registered under slug, or
// domain.ErrTenantNotFound. A well-formed but unknown slug is not an
// invalid request, just an absent one.
func (s *TenantService) FindBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	return s.repo.GetBySlug(ctx, slug)
}
