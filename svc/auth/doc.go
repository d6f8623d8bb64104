// Package auth is the HTTP surface of the authorization core.
//
// It wires the tenant resolver, password authentication, session
// rotation, and the permission guard into chi routers. Tenant-scoped
// routes live under /{slug}/api and require a resolved, active tenant;
// system routes live under /api/admin and require the administrative
// permission of the caller's own tenant.
package auth
