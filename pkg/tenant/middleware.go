package tenant

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrorHandler renders tenant resolution failures.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type config struct {
	cache        Cache
	cacheTTL     time.Duration
	errorHandler ErrorHandler
	skipPrefixes []string
	logger       *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithCache sets the directory cache implementation.
func WithCache(cache Cache) Option {
	return func(c *config) { c.cache = cache }
}

// WithCacheTTL sets how long resolved tenants stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) { c.cacheTTL = ttl }
}

// WithErrorHandler sets a custom error renderer.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) { c.errorHandler = handler }
}

// WithSkipPrefixes exempts path prefixes from tenant resolution,
// e.g. "/api" for system-wide administrative routes.
func WithSkipPrefixes(prefixes ...string) Option {
	return func(c *config) { c.skipPrefixes = append(c.skipPrefixes, prefixes...) }
}

// WithLogger sets the middleware logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Middleware resolves the tenant for every request and stores it in the
// request context. Requests with an unresolvable or inactive slug are
// rejected before any downstream handler runs. The path is forwarded
// unmodified.
func Middleware(resolver Resolver, directory Directory, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		cache:        NewMemoryCache(),
		cacheTTL:     5 * time.Minute,
		errorHandler: DefaultErrorHandler,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range cfg.skipPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			slug, err := resolver.Resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if slug == "" {
				cfg.errorHandler(w, r, ErrTenantNotFound)
				return
			}

			t, ok := cfg.cache.Get(r.Context(), slug)
			if !ok {
				t, err = directory.GetBySlug(r.Context(), slug)
				if err != nil {
					if !errors.Is(err, ErrTenantNotFound) {
						cfg.logger.ErrorContext(r.Context(), "tenant directory lookup failed",
							"slug", slug, "error", err)
					}
					cfg.errorHandler(w, r, err)
					return
				}
				cfg.cache.Set(r.Context(), slug, t, cfg.cacheTTL)
			}

			// Active is re-checked on cache hits so a deactivation takes
			// effect within the cache TTL at the latest.
			if !t.Active {
				cfg.errorHandler(w, r, ErrInactiveTenant)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}

// RequireTenant rejects requests whose context has no resolved tenant.
// Guards routes that are only ever mounted behind Middleware.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultErrorHandler maps resolution failures to HTTP responses.
// Malformed, unknown, and inactive slugs all answer the same 404 so the
// response reveals nothing about which tenants exist or how slugs are
// shaped.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound),
		errors.Is(err, ErrInactiveTenant),
		errors.Is(err, ErrInvalidSlug),
		errors.Is(err, ErrNoTenantInContext):
		http.Error(w, "tenant not found", http.StatusNotFound)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
