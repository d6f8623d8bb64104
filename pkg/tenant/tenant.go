package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is the minimal tenant record needed for request-scoped
// resolution. Deactivation is a soft flag: inactive tenants refuse all
// new resolution but their rows and owned data remain.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Directory looks tenants up by their URL slug.
type Directory interface {
	// GetBySlug returns the tenant for a slug, active or not.
	// Returns ErrTenantNotFound when no tenant matches.
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
}
