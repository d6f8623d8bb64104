// Package isolation guarantees that reads and writes against
// tenant-owned entities never cross tenant boundaries.
//
// A Store is the narrow find/insert/update/delete interface a backing
// store exposes over predicate filters. Scoped wraps any Store and, at
// this single query-construction choke point, appends a tenant_id
// predicate sourced from the request context to every operation and
// stamps the tenant id onto inserted rows. Call sites cannot forget the
// filter because they never build the final predicate themselves;
// queries touching two tenant-owned entity types are two Scoped stores,
// each filtered independently, so a half-filtered join cannot be
// expressed.
//
// Cross-tenant administrative reads use Bypass, which disables filtering
// for exactly one function call:
//
//	err := isolation.Bypass(ctx, func(ctx context.Context) error {
//		all, err := sessions.Find(ctx)
//		...
//	})
//
// The bypass marker lives on the derived context passed to the closure
// and dies with it; there is no flag to forget to reset.
package isolation
