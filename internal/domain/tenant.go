package domain

import (
	"regexp"
	"strings"
	"time"
)

// slugPattern: lowercase alphanumeric segments joined by single hyphens,
// no leading/trailing hyphen, no empty segment.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a well-formed tenant slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Tenant is an independently administered organization using the platform,
// identified externally by its slug. Slugs are never reassigned: the
// slug-to-tenant binding is append-only for the lifetime of the system.
type Tenant struct {
	ID        string
	Name      string
	Slug      string
	Address   *string
	City      *string
	State     *string
	Zip       *string
	Phone     *string
	Website   *string
	CreatedAt time.Time
}

// TenantWithLessonCount annotates a tenant with its derived lesson count.
// The count is computed on read, never stored.
type TenantWithLessonCount struct {
	Tenant
	LessonCount int
}

// RegisterTenantInput carries caller-supplied fields for tenant registration.
// Optional fields are nil when absent, never the empty string.
type RegisterTenantInput struct {
	Name    string
	Slug    string
	Address *string
	City    *string
	State   *string
	Zip     *string
	Phone   *string
	Website *string
}

// NewTenant validates and builds a tenant from registration input.
// Format validation happens here, before any uniqueness lookup, so a
// malformed slug can never surface as a conflict.
func NewTenant(id string, in RegisterTenantInput) (Tenant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Tenant{}, &ValidationError{Msg: "name required"}
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" || !ValidSlug(slug) {
		return Tenant{}, &ValidationError{Msg: "invalid slug format"}
	}

	return Tenant{
		ID:        id,
		Name:      name,
		Slug:      slug,
		Address:   normalizeOptional(in.Address),
		City:      normalizeOptional(in.City),
		State:     normalizeOptional(in.State),
		Zip:       normalizeOptional(in.Zip),
		Phone:     normalizeOptional(in.Phone),
		Website:   normalizeOptional(in.Website),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// normalizeOptional trims an optional field and collapses blank values to nil.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
