// Package tenant resolves which tenant an HTTP request belongs to and
// carries that decision through the request context.
//
// A Resolver extracts a tenant slug from the request (the leading path
// segment by convention, or a header). The Middleware looks the slug up
// in a Directory, rejects unknown or deactivated tenants before any
// downstream handler runs, and stores the resolved Tenant in the request
// context. The slug segment stays in the path so route generation and
// logging remain unambiguous.
//
// Lookups go through a Cache (in-memory LRU by default, Redis optional)
// because every request pays the directory round trip otherwise. Renaming
// a slug requires invalidating its cache entry; the admin code paths call
// Cache.Delete with the old slug. Issued credentials carry the tenant id,
// never the slug, so a rename does not invalidate them.
//
// Unknown and inactive slugs are deliberately indistinguishable to the
// client: both answer 404.
package tenant
