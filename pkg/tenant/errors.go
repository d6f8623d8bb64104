package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches a slug.
	ErrTenantNotFound = errors.New("tenant.not_found")

	// ErrInactiveTenant is returned when a resolved tenant is deactivated.
	// Mapped to the same client response as ErrTenantNotFound.
	ErrInactiveTenant = errors.New("tenant.inactive")

	// ErrInvalidSlug is returned when a slug fails format validation.
	ErrInvalidSlug = errors.New("tenant.invalid_slug")

	// ErrNoTenantInContext is returned when an operation requires a
	// resolved tenant and the context has none.
	ErrNoTenantInContext = errors.New("tenant.not_in_context")

	// ErrSlugTaken is returned when creating or renaming a tenant to a
	// slug already in use.
	ErrSlugTaken = errors.New("tenant.slug_taken")
)
