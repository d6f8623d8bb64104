package isolation

import "errors"

var (
	// ErrNoTenantInContext is returned when a filtered operation runs
	// without a resolved tenant and without bypass.
	ErrNoTenantInContext = errors.New("isolation.no_tenant_in_context")

	// ErrCrossTenantWrite is returned when a write carries a tenant id
	// different from the one resolved for the request.
	ErrCrossTenantWrite = errors.New("isolation.cross_tenant_write")

	// ErrMissingTenantID is returned when a bypassed insert carries no
	// tenant id. Bypass skips stamping, it does not make rows tenantless.
	ErrMissingTenantID = errors.New("isolation.missing_tenant_id")

	// ErrNotFound is returned by FindOne when no row matches.
	ErrNotFound = errors.New("isolation.not_found")
)
