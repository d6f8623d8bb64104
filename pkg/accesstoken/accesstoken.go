package accesstoken

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers every verification failure: malformed,
	// wrong signature, expired, wrong issuer. Callers get no detail.
	ErrInvalidToken = errors.New("accesstoken.invalid")

	// ErrMissingSecret is returned when the service is built without a
	// signing secret.
	ErrMissingSecret = errors.New("accesstoken.missing_secret")
)

const minSecretLength = 32

// Claims carries the verified identity of a request.
type Claims struct {
	TenantID uuid.UUID `json:"tid"`
	jwt.RegisteredClaims
}

// PrincipalID returns the subject as a uuid, or uuid.Nil if malformed.
func (c *Claims) PrincipalID() uuid.UUID {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Service signs and verifies access tokens.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock injects a clock for expiry checks in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a token service. The secret must be at least 32 bytes.
func New(secret []byte, issuer string, ttl time.Duration, opts ...Option) (*Service, error) {
	if len(secret) < minSecretLength {
		return nil, ErrMissingSecret
	}
	s := &Service{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured access-token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Generate signs a token for the principal within the tenant.
func (s *Service) Generate(principalID, tenantID uuid.UUID) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   principalID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a token's signature and temporal claims.
func (s *Service) Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.PrincipalID() == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type contextKey struct{}

// WithClaims stores verified claims in the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ClaimsFromContext returns the verified claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok && claims != nil
}
