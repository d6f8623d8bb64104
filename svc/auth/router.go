package auth

import (
	"github.com/go-chi/chi/v5"

	"github.com/perimetra/tenantcore/pkg/rbac"
	"github.com/perimetra/tenantcore/pkg/requestid"
	"github.com/perimetra/tenantcore/pkg/tenant"
)

// Router assembles the full HTTP surface.
//
// Tenant routes are mounted under /{slug}/api with the tenant resolver
// in front, so an unknown or deactivated slug answers 404 before any
// handler runs. Admin routes live under /api/admin and derive their
// tenant from the access token instead of the path.
func Router(h *Handler, admin *AdminHandler, directory tenant.Directory, tenantOpts ...tenant.Option) chi.Router {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(admin.Authenticate)
		r.Use(Require(admin.perms, rbac.ResourceAdmin, rbac.LevelDelete))

		r.Post("/tenants", admin.handleCreateTenant)
		r.Patch("/tenants/{id}/slug", admin.handleRenameTenant)
		r.Patch("/tenants/{id}/active", admin.handleSetTenantActive)
		r.Get("/sessions", admin.handleSessionReport)
	})

	r.Route("/{slug}/api", func(r chi.Router) {
		r.Use(tenant.Middleware(tenant.NewPathResolver(1), directory, tenantOpts...))
		r.Use(tenant.RequireTenant(tenant.DefaultErrorHandler))

		r.Post("/auth/login", h.handleLogin)
		r.Post("/auth/refresh", h.handleRefresh)
		r.Post("/auth/logout", h.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Post("/auth/logout-all", h.handleLogoutAll)
			r.Post("/rbac/roles", h.handleCreateRole)
			r.Post("/rbac/roles/{roleID}/permissions", h.handleGrant)
			r.Post("/rbac/roles/{roleID}/assignments", h.handleAssignRole)
			r.Delete("/rbac/roles/{roleID}/assignments/{userID}", h.handleUnassignRole)
		})
	})

	return r
}
