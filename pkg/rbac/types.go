package rbac

import "github.com/google/uuid"

// Level is an ordered permission level. Comparison, not equality, is the
// grant check: holding a level implies all levels below it.
type Level int

const (
	LevelView   Level = 1
	LevelCreate Level = 2
	LevelUpdate Level = 3
	LevelDelete Level = 4
)

// Valid reports whether l is a defined level.
func (l Level) Valid() bool {
	return l >= LevelView && l <= LevelDelete
}

func (l Level) String() string {
	switch l {
	case LevelView:
		return "view"
	case LevelCreate:
		return "create"
	case LevelUpdate:
		return "update"
	case LevelDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ResourceAdmin gates administrative operations: role creation,
// permission grants, and role assignment. The engine protects itself
// through the same check it offers everyone else.
const ResourceAdmin = "admin"

// Role is a named, tenant-scoped bundle of resource permissions.
type Role struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
}

// ResourcePermission grants a level on one resource to one role. At most
// one row exists per (role, resource) pair.
type ResourcePermission struct {
	RoleID   uuid.UUID `json:"role_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Resource string    `json:"resource"`
	Level    Level     `json:"level"`
}

// RoleAssignment links a user to a role within a tenant. A user cannot
// hold the same role twice.
type RoleAssignment struct {
	UserID   uuid.UUID `json:"user_id"`
	RoleID   uuid.UUID `json:"role_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}
