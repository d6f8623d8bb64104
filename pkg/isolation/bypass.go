package isolation

import "context"

type bypassKey struct{}

// Bypass runs fn with tenant filtering disabled. The override is carried
// on the derived context handed to fn and ends when fn returns; the
// caller's context is never marked. Reserved for system-administrator
// code paths that legitimately cross tenants.
func Bypass(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(context.WithValue(ctx, bypassKey{}, true))
}

// Bypassed reports whether ctx carries the bypass override.
func Bypassed(ctx context.Context) bool {
	active, _ := ctx.Value(bypassKey{}).(bool)
	return active
}
