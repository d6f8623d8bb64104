package session

import (
	"time"

	"github.com/google/uuid"
)

// SessionPair is one refresh grant. The refresh token itself is never
// stored; only its SHA-256 hash is.
type SessionPair struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	PrincipalID uuid.UUID
	TokenHash   string
	IssuingIP   string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	RevokedAt   *time.Time
	ReplacedBy  *uuid.UUID
}

// Active reports whether the pair can still be rotated at the given
// instant. Active is computed, never stored.
func (p *SessionPair) Active(now time.Time) bool {
	return p.RevokedAt == nil && now.Before(p.ExpiresAt)
}

// Rotated reports whether the pair was consumed by a successful refresh.
// A rotated pair has both a revocation time and a successor.
func (p *SessionPair) Rotated() bool {
	return p.RevokedAt != nil && p.ReplacedBy != nil
}
