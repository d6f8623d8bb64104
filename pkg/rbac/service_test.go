package rbac_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perimetra/tenantcore/pkg/rbac"
	"github.com/perimetra/tenantcore/pkg/tenant"
)

func ctxForTenant(id uuid.UUID) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id, Active: true})
}

// newTenantWithAdmin returns a service plus a bootstrapped admin user.
func newTenantWithAdmin(t *testing.T) (*rbac.Service, uuid.UUID, uuid.UUID) {
	t.Helper()
	svc := rbac.NewService(rbac.NewMemoryStore())
	tenantID := uuid.New()
	adminID := uuid.New()
	_, err := svc.Bootstrap(context.Background(), tenantID, adminID)
	require.NoError(t, err)
	return svc, tenantID, adminID
}

func TestHasPermission_LevelHierarchy(t *testing.T) {
	svc, tenantID, admin := newTenantWithAdmin(t)
	ctx := ctxForTenant(tenantID)

	role, err := svc.CreateRole(ctx, admin, "manager")
	require.NoError(t, err)
	require.NoError(t, svc.Grant(ctx, admin, role.ID, "package", rbac.LevelDelete))

	user := uuid.New()
	require.NoError(t, svc.AssignRole(ctx, admin, user, role.ID))

	// Delete implies every lower level on the same resource.
	for _, level := range []rbac.Level{rbac.LevelView, rbac.LevelCreate, rbac.LevelUpdate, rbac.LevelDelete} {
		ok, err := svc.HasPermission(ctx, user, "package", level)
		require.NoError(t, err)
		assert.True(t, ok, "level %s should be implied by Delete", level)
	}
}

func TestHasPermission_InsufficientLevel(t *testing.T) {
	svc, tenantID, admin := newTenantWithAdmin(t)
	ctx := ctxForTenant(tenantID)

	role, err := svc.CreateRole(ctx, admin, "scheduler")
	require.NoError(t, err)
	require.NoError(t, svc.Grant(ctx, admin, role.ID, "schedule", rbac.LevelCreate))

	user := uuid.New()
	require.NoError(t, svc.AssignRole(ctx, admin, user, role.ID))

	ok, err := svc.HasPermission(ctx, user, "schedule", rbac.LevelDelete)
	require.NoError(t, err)
	assert.False(t, ok, "Create must not imply Delete")

	ok, err = svc.HasPermission(ctx, user, "schedule", rbac.LevelCreate)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasPermission_NoRoles(t *testing.T) {
	svc, tenantID, _ := newTenantWithAdmin(t)

	ok, err := svc.HasPermission(ctxForTenant(tenantID), uuid.New(), "package", rbac.LevelView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermission_RoleInOtherTenantDenied(t *testing.T) {
	svc, tenantID, admin := newTenantWithAdmin(t)
	ctx := ctxForTenant(tenantID)

	role, err := svc.CreateRole(ctx, admin, "viewer")
	require.NoError(t, err)
	require.NoError(t, svc.Grant(ctx, admin, role.ID, "package", rbac.LevelView))

	user := uuid.New()
	require.NoError(t, svc.AssignRole(ctx, admin, user, role.ID))

	// The same user evaluated in a different tenant context is denied,
	// indistinguishably from having no role at all.
	ok, err := svc.HasPermission(ctxForTenant(uuid.New()), user, "package", rbac.LevelView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermission_NoTenantContext(t *testing.T) {
	svc, _, admin := newTenantWithAdmin(t)

	ok, err := svc.HasPermission(context.Background(), admin, "package", rbac.LevelView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrant_ReplacesExistingRow(t *testing.T) {
	svc, tenantID, admin := newTenantWithAdmin(t)
	ctx := ctxForTenant(tenantID)

	role, err := svc.CreateRole(ctx, admin, "ops")
	require.NoError(t, err)
	user := uuid.New()
	require.NoError(t, svc.AssignRole(ctx, admin, user, role.ID))

	require.NoError(t, svc.Grant(ctx, admin, role.ID, "package", rbac.LevelDelete))
	require.NoError(t, svc.Grant(ctx, admin, role.ID, "package", rbac.LevelView))

	// The second grant replaced the first: Delete is gone.
	ok, err := svc.HasPermission(ctx, user, "package", rbac.LevelDelete)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.HasPermission(ctx, user, "package", rbac.LevelView)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssignRole_DuplicateIsNoop(t *testing.T) {
	svc, tenantID, admin := newTenantWithAdmin(t)
	ctx := ctxForTenant(tenantID)

	role, err := svc.CreateRole(ctx, admin, "viewer")
	require.NoError(t, err)
	user := uuid.New()

	require.NoError(t, svc.AssignRole(ctx, admin, user, role.ID))
	require.NoError(t, svc.AssignRole(ctx, admin, user, role.ID))

	require.NoError(t, svc.Grant(ctx, admin, role.ID, "package", rbac.LevelView))
	ok, err := svc.HasPermission(ctx, user, "package", rbac.LevelView)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdminOperations_SelfProtecting(t *testing.T) {
	svc, tenantID, admin := newTenantWithAdmin(t)
	ctx := ctxForTenant(tenantID)

	role, err := svc.CreateRole(ctx, admin, "viewer")
	require.NoError(t, err)

	outsider := uuid.New()

	_, err = svc.CreateRole(ctx, outsider, "rogue")
	require.ErrorIs(t, err, rbac.ErrForbidden)

	err = svc.Grant(ctx, outsider, role.ID, "package", rbac.LevelDelete)
	require.ErrorIs(t, err, rbac.ErrForbidden)

	err = svc.AssignRole(ctx, outsider, outsider, role.ID)
	require.ErrorIs(t, err, rbac.ErrForbidden)
}

func TestGrant_UnknownRole(t *testing.T) {
	svc, tenantID, admin := newTenantWithAdmin(t)
	ctx := ctxForTenant(tenantID)

	err := svc.Grant(ctx, admin, uuid.New(), "package", rbac.LevelView)
	require.ErrorIs(t, err, rbac.ErrRoleNotFound)
}

func TestUnassignRole_RevokesAccess(t *testing.T) {
	svc, tenantID, admin := newTenantWithAdmin(t)
	ctx := ctxForTenant(tenantID)

	role, err := svc.CreateRole(ctx, admin, "viewer")
	require.NoError(t, err)
	require.NoError(t, svc.Grant(ctx, admin, role.ID, "package", rbac.LevelView))

	user := uuid.New()
	require.NoError(t, svc.AssignRole(ctx, admin, user, role.ID))
	require.NoError(t, svc.UnassignRole(ctx, admin, user, role.ID))

	ok, err := svc.HasPermission(ctx, user, "package", rbac.LevelView)
	require.NoError(t, err)
	assert.False(t, ok)
}
