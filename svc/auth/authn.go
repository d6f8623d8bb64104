package auth

import (
	"net/http"
	"strings"

	"github.com/perimetra/tenantcore/pkg/accesstoken"
	"github.com/perimetra/tenantcore/pkg/tenant"
)

// Authenticate verifies the Bearer access token and stores its claims
// in the request context. On tenant-scoped routes the token must belong
// to the resolved tenant; a valid token for another tenant answers the
// same 401 as no token at all.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.tokens.Parse(bearerToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		if t, ok := tenant.FromContext(r.Context()); ok && t.ID != claims.TenantID {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(accesstoken.WithClaims(r.Context(), claims)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
