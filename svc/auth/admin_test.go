package auth_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/perimetra/tenantcore/pkg/accesstoken"
	userauth "github.com/perimetra/tenantcore/pkg/auth"
	"github.com/perimetra/tenantcore/pkg/rbac"
	"github.com/perimetra/tenantcore/pkg/session"
	"github.com/perimetra/tenantcore/pkg/tenant"
	authsvc "github.com/perimetra/tenantcore/svc/auth"
)

type adminEnv struct {
	*testEnv
	cache tenant.Cache
}

// newAdminEnv builds a stack where the resolver middleware and the
// admin surface share one cache, so slug changes invalidate correctly.
func newAdminEnv(t *testing.T) *adminEnv {
	t.Helper()
	ctx := context.Background()

	tokens, err := accesstoken.New([]byte("0123456789abcdef0123456789abcdef"), "tenantcore", 15*time.Minute)
	require.NoError(t, err)

	dir := tenant.NewMemoryDirectory()
	users := userauth.NewService(userauth.NewMemoryStorage(), userauth.WithBcryptCost(bcrypt.MinCost))
	perms := rbac.NewService(rbac.NewMemoryStore())
	store := session.NewMemoryStore()
	sessions := session.NewManager(store, tokens, 7*24*time.Hour)
	cache := tenant.NewMemoryCache()

	acme, err := dir.Create(ctx, "acme", "Acme Corp")
	require.NoError(t, err)
	admin, err := users.Register(ctx, "owner@acme.test", adminPassword)
	require.NoError(t, err)
	_, err = perms.Bootstrap(ctx, acme.ID, admin.ID)
	require.NoError(t, err)

	h := authsvc.NewHandler(users, sessions, tokens, perms, 7*24*time.Hour,
		authsvc.WithSecureCookies(false))
	adminH := authsvc.NewAdminHandler(dir, perms, tokens, store,
		authsvc.WithAdminCache(cache))

	env := &testEnv{
		router: authsvc.Router(h, adminH, dir, tenant.WithCache(cache)),
		dir:    dir,
		users:  users,
		perms:  perms,
		acme:   acme,
		admin:  admin,
	}
	return &adminEnv{testEnv: env, cache: cache}
}

func (e *adminEnv) adminToken(t *testing.T) string {
	t.Helper()
	return e.login(t, "acme", "owner@acme.test", adminPassword).AccessToken
}

func TestAdminCreateTenant(t *testing.T) {
	env := newAdminEnv(t)
	token := env.adminToken(t)

	owner, err := env.users.Register(context.Background(), "owner@beta.test", "another password")
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/api/admin/tenants",
		map[string]any{"slug": "beta", "name": "Beta Inc", "owner_id": owner.ID},
		withBearer(token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created tenant.Tenant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "beta", created.Slug)
	assert.True(t, created.Active)

	// The owner can log in and manage roles right away.
	creds := env.login(t, "beta", "owner@beta.test", "another password")
	rec = env.do(http.MethodPost, "/beta/api/rbac/roles",
		map[string]string{"name": "viewer"}, withBearer(creds.AccessToken))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestAdminCreateTenant_DuplicateSlug(t *testing.T) {
	env := newAdminEnv(t)
	token := env.adminToken(t)

	rec := env.do(http.MethodPost, "/api/admin/tenants",
		map[string]any{"slug": "acme", "name": "Clone", "owner_id": uuid.New()},
		withBearer(token))
	require.Equal(t, http.StatusConflict, rec.Code)
}

// Renaming a tenant drops the cached slug, so the old slug stops
// resolving immediately and the new one starts.
func TestAdminRenameTenant_InvalidatesResolver(t *testing.T) {
	env := newAdminEnv(t)
	token := env.adminToken(t)

	// Prime the resolver cache under the old slug.
	env.login(t, "acme", "owner@acme.test", adminPassword)

	rec := env.do(http.MethodPatch, fmt.Sprintf("/api/admin/tenants/%s/slug", env.acme.ID),
		map[string]string{"slug": "acme-corp"}, withBearer(token))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/acme/api/auth/login",
		map[string]string{"email": "owner@acme.test", "password": adminPassword})
	require.Equal(t, http.StatusNotFound, rec.Code)

	env.login(t, "acme-corp", "owner@acme.test", adminPassword)

	// Credentials issued before the rename still work: they carry the
	// tenant id, not the slug.
	rec = env.do(http.MethodGet, "/api/admin/sessions", nil, withBearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminDeactivateTenant(t *testing.T) {
	env := newAdminEnv(t)
	token := env.adminToken(t)

	owner, err := env.users.Register(context.Background(), "owner@beta.test", "another password")
	require.NoError(t, err)
	rec := env.do(http.MethodPost, "/api/admin/tenants",
		map[string]any{"slug": "beta", "name": "Beta Inc", "owner_id": owner.ID},
		withBearer(token))
	require.Equal(t, http.StatusCreated, rec.Code)

	var beta tenant.Tenant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &beta))

	env.login(t, "beta", "owner@beta.test", "another password")

	rec = env.do(http.MethodPatch, fmt.Sprintf("/api/admin/tenants/%s/active", beta.ID),
		map[string]bool{"active": false}, withBearer(token))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodPost, "/beta/api/auth/login",
		map[string]string{"email": "owner@beta.test", "password": "another password"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminSessionReport(t *testing.T) {
	env := newAdminEnv(t)
	token := env.adminToken(t)

	owner, err := env.users.Register(context.Background(), "owner@beta.test", "another password")
	require.NoError(t, err)
	rec := env.do(http.MethodPost, "/api/admin/tenants",
		map[string]any{"slug": "beta", "name": "Beta Inc", "owner_id": owner.ID},
		withBearer(token))
	require.Equal(t, http.StatusCreated, rec.Code)

	env.login(t, "beta", "owner@beta.test", "another password")

	rec = env.do(http.MethodGet, "/api/admin/sessions", nil, withBearer(token))
	require.Equal(t, http.StatusOK, rec.Code)

	var report []struct {
		SessionID uuid.UUID `json:"session_id"`
		TenantID  uuid.UUID `json:"tenant_id"`
		IssuingIP string    `json:"issuing_ip"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	// Sessions from both tenants appear in one report, each carrying the
	// address the login came from.
	tenants := make(map[uuid.UUID]bool)
	for _, row := range report {
		tenants[row.TenantID] = true
		assert.Equal(t, "192.0.2.1", row.IssuingIP)
	}
	assert.True(t, tenants[env.acme.ID])
	assert.Len(t, tenants, 2)
}

func TestAdmin_NonAdminForbidden(t *testing.T) {
	env := newAdminEnv(t)
	_, err := env.users.Register(context.Background(), "member@acme.test", "another password")
	require.NoError(t, err)
	creds := env.login(t, "acme", "member@acme.test", "another password")

	rec := env.do(http.MethodGet, "/api/admin/sessions", nil, withBearer(creds.AccessToken))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdmin_NoToken(t *testing.T) {
	env := newAdminEnv(t)

	rec := env.do(http.MethodGet, "/api/admin/sessions", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
