package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/perimetra/tenantcore/pkg/accesstoken"
	"github.com/perimetra/tenantcore/pkg/isolation"
	"github.com/perimetra/tenantcore/pkg/logger"
	"github.com/perimetra/tenantcore/pkg/rbac"
	"github.com/perimetra/tenantcore/pkg/session"
	"github.com/perimetra/tenantcore/pkg/tenant"
)

// ManagedDirectory is the writable tenant directory the admin surface
// requires. Both the memory and Postgres directories implement it.
type ManagedDirectory interface {
	tenant.Directory
	GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	Create(ctx context.Context, slug, name string) (*tenant.Tenant, error)
	Rename(ctx context.Context, id uuid.UUID, newSlug string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// AdminHandler serves the system-wide routes under /api/admin. Every
// route requires the caller to hold the administrative resource at
// Delete level within their own tenant.
type AdminHandler struct {
	dir      ManagedDirectory
	cache    tenant.Cache
	perms    *rbac.Service
	tokens   *accesstoken.Service
	sessions session.ActiveLister
	log      *slog.Logger
}

// AdminOption configures an AdminHandler.
type AdminOption func(*AdminHandler)

// WithAdminLogger sets the admin handler logger.
func WithAdminLogger(log *slog.Logger) AdminOption {
	return func(a *AdminHandler) {
		if log != nil {
			a.log = log
		}
	}
}

// WithAdminCache sets the resolver cache to invalidate on slug changes.
func WithAdminCache(cache tenant.Cache) AdminOption {
	return func(a *AdminHandler) {
		if cache != nil {
			a.cache = cache
		}
	}
}

// NewAdminHandler wires the administrative surface.
func NewAdminHandler(dir ManagedDirectory, perms *rbac.Service, tokens *accesstoken.Service, sessions session.ActiveLister, opts ...AdminOption) *AdminHandler {
	a := &AdminHandler{
		dir:      dir,
		cache:    tenant.NewNoopCache(),
		perms:    perms,
		tokens:   tokens,
		sessions: sessions,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate verifies the Bearer token and rebuilds tenant context
// from its claims, since admin routes carry no slug in the path. The
// claimed tenant must still exist and be active.
func (a *AdminHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.tokens.Parse(bearerToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		t, err := a.dir.GetByID(r.Context(), claims.TenantID)
		if err != nil || !t.Active {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}

		ctx := tenant.WithTenant(r.Context(), t)
		ctx = accesstoken.WithClaims(ctx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type createTenantRequest struct {
	Slug    string    `json:"slug"`
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// handleCreateTenant provisions a tenant and bootstraps its admin role
// for the given owner.
func (a *AdminHandler) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OwnerID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	t, err := a.dir.Create(r.Context(), req.Slug, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrInvalidSlug):
			writeError(w, http.StatusBadRequest, "invalid slug")
		case errors.Is(err, tenant.ErrSlugTaken):
			writeError(w, http.StatusConflict, "slug already taken")
		default:
			a.log.ErrorContext(r.Context(), "creating tenant failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if _, err := a.perms.Bootstrap(r.Context(), t.ID, req.OwnerID); err != nil {
		a.log.ErrorContext(r.Context(), "bootstrapping tenant admin failed",
			logger.TenantID(t.ID.String()), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

type renameTenantRequest struct {
	Slug string `json:"slug"`
}

// handleRenameTenant changes a tenant's slug and drops both the old and
// new slugs from the resolver cache. Issued credentials keep working:
// they reference the tenant id, never the slug.
func (a *AdminHandler) handleRenameTenant(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	var req renameTenantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	old, err := a.dir.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "tenant not found")
		return
	}

	if err := a.dir.Rename(r.Context(), id, req.Slug); err != nil {
		switch {
		case errors.Is(err, tenant.ErrInvalidSlug):
			writeError(w, http.StatusBadRequest, "invalid slug")
		case errors.Is(err, tenant.ErrSlugTaken):
			writeError(w, http.StatusConflict, "slug already taken")
		case errors.Is(err, tenant.ErrTenantNotFound):
			writeError(w, http.StatusNotFound, "tenant not found")
		default:
			a.log.ErrorContext(r.Context(), "renaming tenant failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	a.cache.Delete(r.Context(), old.Slug)
	a.cache.Delete(r.Context(), req.Slug)
	w.WriteHeader(http.StatusNoContent)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (a *AdminHandler) handleSetTenantActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	var req setActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := a.dir.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "tenant not found")
		return
	}

	if err := a.dir.SetActive(r.Context(), id, req.Active); err != nil {
		a.log.ErrorContext(r.Context(), "updating tenant state failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	a.cache.Delete(r.Context(), t.Slug)
	w.WriteHeader(http.StatusNoContent)
}

type sessionReport struct {
	SessionID   uuid.UUID `json:"session_id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	PrincipalID uuid.UUID `json:"principal_id"`
	IssuingIP   string    `json:"issuing_ip"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// handleSessionReport lists active sessions across every tenant. The
// read runs inside an isolation bypass scope because it deliberately
// crosses tenant boundaries.
func (a *AdminHandler) handleSessionReport(w http.ResponseWriter, r *http.Request) {
	var pairs []*session.SessionPair
	err := isolation.Bypass(r.Context(), func(ctx context.Context) error {
		var err error
		pairs, err = a.sessions.ListActive(ctx, time.Now().UTC())
		return err
	})
	if err != nil {
		a.log.ErrorContext(r.Context(), "listing sessions failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	report := make([]sessionReport, 0, len(pairs))
	for _, pair := range pairs {
		report = append(report, sessionReport{
			SessionID:   pair.ID,
			TenantID:    pair.TenantID,
			PrincipalID: pair.PrincipalID,
			IssuingIP:   pair.IssuingIP,
			IssuedAt:    pair.IssuedAt,
			ExpiresAt:   pair.ExpiresAt,
		})
	}
	writeJSON(w, http.StatusOK, report)
}
