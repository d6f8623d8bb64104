package tenant

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Slug length limits follow DNS label rules so slugs stay usable as
// subdomains later.
const (
	MinSlugLength = 1
	MaxSlugLength = 63
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidSlug reports whether s is a well-formed tenant slug.
func ValidSlug(s string) bool {
	if len(s) < MinSlugLength || len(s) > MaxSlugLength {
		return false
	}
	return slugPattern.MatchString(s)
}

// Resolver extracts a tenant slug from an HTTP request. An empty result
// with a nil error means the request carries no tenant identifier.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// PathResolver extracts the slug from a 1-based path segment position.
// Position 1 matches the /{slug}/api/... convention.
type PathResolver struct {
	Position int
}

// NewPathResolver returns a resolver for the given path position.
func NewPathResolver(position int) *PathResolver {
	if position < 1 {
		position = 1
	}
	return &PathResolver{Position: position}
}

func (pr *PathResolver) Resolve(r *http.Request) (string, error) {
	path := strings.Trim(r.URL.Path, "/")
	if path == "" {
		return "", nil
	}

	parts := strings.Split(path, "/")
	if pr.Position > len(parts) {
		return "", nil
	}

	slug := parts[pr.Position-1]
	if slug == "" {
		return "", nil
	}
	if !ValidSlug(slug) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return slug, nil
}

// HeaderResolver extracts the slug from an HTTP header. Used by internal
// clients that do not address tenants through the path.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver returns a resolver reading the given header,
// defaulting to "X-Tenant-Slug".
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant-Slug"
	}
	return &HeaderResolver{HeaderName: headerName}
}

func (hr *HeaderResolver) Resolve(r *http.Request) (string, error) {
	slug := strings.TrimSpace(r.Header.Get(hr.HeaderName))
	if slug == "" {
		return "", nil
	}
	if !ValidSlug(slug) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return slug, nil
}
