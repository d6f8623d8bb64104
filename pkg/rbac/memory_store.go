package rbac

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type permKey struct {
	roleID   uuid.UUID
	resource string
}

// MemoryStore is an in-memory Store for tests and single-node setups.
type MemoryStore struct {
	mu          sync.RWMutex
	roles       map[uuid.UUID]Role
	perms       map[permKey]ResourcePermission
	assignments []RoleAssignment
}

// NewMemoryStore returns an empty in-memory RBAC store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		roles: make(map[uuid.UUID]Role),
		perms: make(map[permKey]ResourcePermission),
	}
}

func (m *MemoryStore) CreateRole(ctx context.Context, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roles[role.ID] = role
	return nil
}

func (m *MemoryStore) GetRole(ctx context.Context, tenantID, roleID uuid.UUID) (*Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, ok := m.roles[roleID]
	if !ok || role.TenantID != tenantID {
		return nil, ErrRoleNotFound
	}
	return &role, nil
}

func (m *MemoryStore) RoleIDsForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []uuid.UUID
	for _, a := range m.assignments {
		if a.TenantID == tenantID && a.UserID == userID {
			ids = append(ids, a.RoleID)
		}
	}
	return ids, nil
}

func (m *MemoryStore) UpsertPermission(ctx context.Context, perm ResourcePermission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Replace, never accumulate: one row per (role, resource).
	m.perms[permKey{roleID: perm.RoleID, resource: perm.Resource}] = perm
	return nil
}

func (m *MemoryStore) AssignRole(ctx context.Context, a RoleAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.assignments, a) {
		return nil
	}
	m.assignments = append(m.assignments, a)
	return nil
}

func (m *MemoryStore) UnassignRole(ctx context.Context, a RoleAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assignments = slices.DeleteFunc(m.assignments, func(existing RoleAssignment) bool {
		return existing == a
	})
	return nil
}

func (m *MemoryStore) HasGrant(ctx context.Context, tenantID uuid.UUID, roleIDs []uuid.UUID, resource string, minLevel Level) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, roleID := range roleIDs {
		perm, ok := m.perms[permKey{roleID: roleID, resource: resource}]
		if ok && perm.TenantID == tenantID && perm.Level >= minLevel {
			return true, nil
		}
	}
	return false, nil
}
