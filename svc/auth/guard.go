package auth

import (
	"net/http"

	"github.com/perimetra/tenantcore/pkg/accesstoken"
	"github.com/perimetra/tenantcore/pkg/rbac"
)

// Require guards a route with a permission declaration. The handler
// behind it runs only if the authenticated principal holds the resource
// at the required level or above within the current tenant. Denials are
// a bare 403 with no detail about roles or resources.
func Require(perms *rbac.Service, resource string, level rbac.Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := accesstoken.ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			granted, err := perms.HasPermission(r.Context(), claims.PrincipalID(), resource, level)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !granted {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
