package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perimetra/tenantcore/pkg/tenant"
)

func newDirectory(t *testing.T) *tenant.MemoryDirectory {
	t.Helper()
	return tenant.NewMemoryDirectory()
}

func TestMiddleware_ResolvesActiveTenant(t *testing.T) {
	dir := newDirectory(t)
	acme, err := dir.Create(context.Background(), "acme", "Acme Inc")
	require.NoError(t, err)

	var resolved *tenant.Tenant
	var seenPath string
	h := tenant.Middleware(tenant.NewPathResolver(1), dir)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resolved = tenant.MustFromContext(r.Context())
			seenPath = r.URL.Path
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/acme/api/packages", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resolved)
	assert.Equal(t, acme.ID, resolved.ID)
	// The slug segment stays in the forwarded path.
	assert.Equal(t, "/acme/api/packages", seenPath)
}

func TestMiddleware_UnknownSlug(t *testing.T) {
	dir := newDirectory(t)

	called := false
	h := tenant.Middleware(tenant.NewPathResolver(1), dir)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ghost/api/things", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, called, "downstream handler must not run")
}

func TestMiddleware_MalformedSlugIndistinguishableFromUnknown(t *testing.T) {
	dir := newDirectory(t)
	_, err := dir.Create(context.Background(), "acme", "Acme Inc")
	require.NoError(t, err)

	called := false
	h := tenant.Middleware(tenant.NewPathResolver(1), dir)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	unknown := httptest.NewRecorder()
	h.ServeHTTP(unknown, httptest.NewRequest(http.MethodGet, "/ghost/api/things", nil))

	// Uppercase fails slug validation, but the response must not say so.
	malformed := httptest.NewRecorder()
	h.ServeHTTP(malformed, httptest.NewRequest(http.MethodGet, "/Acme/api/things", nil))

	assert.Equal(t, http.StatusNotFound, malformed.Code)
	assert.Equal(t, unknown.Body.String(), malformed.Body.String())
	assert.False(t, called)
}

func TestMiddleware_DeactivatedSlug(t *testing.T) {
	dir := newDirectory(t)
	fpt, err := dir.Create(context.Background(), "fpt", "FPT")
	require.NoError(t, err)
	require.NoError(t, dir.SetActive(context.Background(), fpt.ID, false))

	called := false
	h := tenant.Middleware(tenant.NewPathResolver(1), dir)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fpt/api/anything", nil))

	// Indistinguishable from an unknown slug.
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, called)
}

func TestMiddleware_DeactivationAppliesToCachedTenant(t *testing.T) {
	dir := newDirectory(t)
	acme, err := dir.Create(context.Background(), "acme", "Acme Inc")
	require.NoError(t, err)

	cache := tenant.NewMemoryCache()
	h := tenant.Middleware(tenant.NewPathResolver(1), dir, tenant.WithCache(cache))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/acme/api/x", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, dir.SetActive(context.Background(), acme.ID, false))
	cache.Delete(context.Background(), "acme")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/acme/api/x", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddleware_SkipPrefixes(t *testing.T) {
	dir := newDirectory(t)

	var hadTenant bool
	h := tenant.Middleware(tenant.NewPathResolver(1), dir, tenant.WithSkipPrefixes("/api"))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hadTenant = tenant.FromContext(r.Context())
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/tenants", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, hadTenant)
}

func TestMiddleware_NoCrossRequestLeak(t *testing.T) {
	dir := newDirectory(t)
	acme, err := dir.Create(context.Background(), "acme", "Acme Inc")
	require.NoError(t, err)
	beta, err := dir.Create(context.Background(), "beta", "Beta LLC")
	require.NoError(t, err)

	h := tenant.Middleware(tenant.NewPathResolver(1), dir)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := tenant.MustFromContext(r.Context())
			want := "/" + got.Slug + "/api/x"
			if r.URL.Path != want {
				http.Error(w, "tenant leaked across requests", http.StatusInternalServerError)
			}
		}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, slug := range []string{"acme", "beta"} {
			wg.Add(1)
			go func(slug string) {
				defer wg.Done()
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+slug+"/api/x", nil))
				assert.Equal(t, http.StatusOK, rec.Code)
			}(slug)
		}
	}
	wg.Wait()

	_ = acme
	_ = beta
}

func TestMiddleware_RenameInvalidation(t *testing.T) {
	dir := newDirectory(t)
	acme, err := dir.Create(context.Background(), "acme", "Acme Inc")
	require.NoError(t, err)

	cache := tenant.NewMemoryCache()
	h := tenant.Middleware(tenant.NewPathResolver(1), dir, tenant.WithCache(cache))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/acme/api/x", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, dir.Rename(context.Background(), acme.ID, "acme-corp"))
	cache.Delete(context.Background(), "acme")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/acme/api/x", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/acme-corp/api/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
