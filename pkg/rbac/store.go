package rbac

import (
	"context"

	"github.com/google/uuid"
)

// Store persists roles, permission rows, and assignments. All queries are
// tenant-keyed; the store applies no implicit tenant logic beyond the ids
// it is handed.
type Store interface {
	// CreateRole persists a new role.
	CreateRole(ctx context.Context, role Role) error

	// GetRole returns a role by id within a tenant, or ErrRoleNotFound.
	GetRole(ctx context.Context, tenantID, roleID uuid.UUID) (*Role, error)

	// RoleIDsForUser returns the ids of all roles the user holds within
	// the tenant. An empty slice is a valid result.
	RoleIDsForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]uuid.UUID, error)

	// UpsertPermission stores a permission row, replacing any existing
	// row for the same (role, resource) pair.
	UpsertPermission(ctx context.Context, perm ResourcePermission) error

	// AssignRole links a user to a role. Assigning an already-held role
	// is a no-op, not an error.
	AssignRole(ctx context.Context, a RoleAssignment) error

	// UnassignRole removes a user-role link. Removing a link that does
	// not exist is a no-op.
	UnassignRole(ctx context.Context, a RoleAssignment) error

	// HasGrant reports whether any of the roles holds at least minLevel
	// on the resource within the tenant.
	HasGrant(ctx context.Context, tenantID uuid.UUID, roleIDs []uuid.UUID, resource string, minLevel Level) (bool, error)
}
