package rbac

import "errors"

var (
	// ErrForbidden is the uniform deny for administrative mutations.
	// It never says why.
	ErrForbidden = errors.New("rbac.forbidden")

	// ErrRoleNotFound is returned by admin operations targeting a role
	// that does not exist in the current tenant.
	ErrRoleNotFound = errors.New("rbac.role_not_found")

	// ErrInvalidLevel is returned when a grant uses an undefined level.
	ErrInvalidLevel = errors.New("rbac.invalid_level")

	// ErrInvalidResource is returned when a grant names an empty resource.
	ErrInvalidResource = errors.New("rbac.invalid_resource")
)
