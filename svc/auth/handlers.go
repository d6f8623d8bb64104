package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/perimetra/tenantcore/pkg/accesstoken"
	userauth "github.com/perimetra/tenantcore/pkg/auth"
	"github.com/perimetra/tenantcore/pkg/logger"
	"github.com/perimetra/tenantcore/pkg/rbac"
	"github.com/perimetra/tenantcore/pkg/session"
	"github.com/perimetra/tenantcore/pkg/tenant"
)

// Handler serves the tenant-scoped authentication and role management
// endpoints.
type Handler struct {
	users         *userauth.Service
	sessions      *session.Manager
	tokens        *accesstoken.Service
	perms         *rbac.Service
	refreshTTL    time.Duration
	secureCookies bool
	log           *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithSecureCookies marks refresh cookies Secure. On by default; tests
// over plain HTTP turn it off.
func WithSecureCookies(secure bool) HandlerOption {
	return func(h *Handler) { h.secureCookies = secure }
}

// WithLogger sets the handler logger.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler wires the authentication surface. refreshTTL bounds the
// refresh cookie lifetime and must match the session manager's TTL.
func NewHandler(users *userauth.Service, sessions *session.Manager, tokens *accesstoken.Service, perms *rbac.Service, refreshTTL time.Duration, opts ...HandlerOption) *Handler {
	h := &Handler{
		users:         users,
		sessions:      sessions,
		tokens:        tokens,
		perms:         perms,
		refreshTTL:    refreshTTL,
		secureCookies: true,
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "tenant not found")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	creds, err := h.sessions.Issue(r.Context(), t.ID, user.ID, clientIP(r))
	if err != nil {
		h.log.ErrorContext(r.Context(), "issuing session failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.setRefreshCookie(w, creds.RefreshToken, h.refreshTTL)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresIn:    creds.ExpiresIn,
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "tenant not found")
		return
	}

	token := refreshTokenFromRequest(w, r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	creds, err := h.sessions.Rotate(r.Context(), t.ID, token, clientIP(r))
	if err != nil {
		if errors.Is(err, session.ErrInvalidToken) {
			h.clearRefreshCookie(w)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		h.log.ErrorContext(r.Context(), "rotating session failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.setRefreshCookie(w, creds.RefreshToken, h.refreshTTL)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresIn:    creds.ExpiresIn,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := refreshTokenFromRequest(w, r); token != "" {
		if err := h.sessions.Revoke(r.Context(), token); err != nil {
			h.log.ErrorContext(r.Context(), "revoking session failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := accesstoken.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	n, err := h.sessions.RevokeAll(r.Context(), claims.TenantID, claims.PrincipalID())
	if err != nil {
		h.log.ErrorContext(r.Context(), "revoking sessions failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]int64{"revoked": n})
}

type createRoleRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	claims, ok := accesstoken.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req createRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	role, err := h.perms.CreateRole(r.Context(), claims.PrincipalID(), req.Name)
	if err != nil {
		h.writeRBACError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

type grantRequest struct {
	Resource string `json:"resource"`
	Level    int    `json:"level"`
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	claims, ok := accesstoken.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var req grantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.perms.Grant(r.Context(), claims.PrincipalID(), roleID, req.Resource, rbac.Level(req.Level))
	if err != nil {
		h.writeRBACError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	claims, ok := accesstoken.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.perms.AssignRole(r.Context(), claims.PrincipalID(), req.UserID, roleID)
	if err != nil {
		h.writeRBACError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnassignRole(w http.ResponseWriter, r *http.Request) {
	claims, ok := accesstoken.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role id")
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	err = h.perms.UnassignRole(r.Context(), claims.PrincipalID(), userID, roleID)
	if err != nil {
		h.writeRBACError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeRBACError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, rbac.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, rbac.ErrRoleNotFound):
		writeError(w, http.StatusNotFound, "role not found")
	case errors.Is(err, rbac.ErrInvalidLevel), errors.Is(err, rbac.ErrInvalidResource):
		writeError(w, http.StatusBadRequest, "invalid request")
	default:
		h.log.ErrorContext(r.Context(), "rbac operation failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
