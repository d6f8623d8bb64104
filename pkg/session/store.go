package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists session pairs.
//
// GetByTokenHash fetches by the stored hash alone; callers evaluate the
// active predicate afterwards. Rotate is the only compound operation:
// it must revoke the old pair and insert its successor atomically, and
// it must lose cleanly when a concurrent call already consumed the old
// pair.
type Store interface {
	Insert(ctx context.Context, pair *SessionPair) error
	GetByTokenHash(ctx context.Context, hash string) (*SessionPair, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SessionPair, error)

	// Rotate revokes the pair identified by oldID and inserts successor
	// in one atomic unit. It returns ErrAlreadyRotated if oldID was
	// revoked by the time the swap ran.
	Rotate(ctx context.Context, oldID uuid.UUID, revokedAt time.Time, successor *SessionPair) error

	// Revoke marks the pair revoked. Revoking an already-revoked pair
	// is a no-op, not an error.
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error

	// RevokeAllForPrincipal revokes every active pair the principal
	// holds within the tenant and returns how many were affected.
	RevokeAllForPrincipal(ctx context.Context, tenantID, principalID uuid.UUID, at time.Time) (int64, error)

	// DeleteExpired removes pairs whose expiry is before the cutoff.
	// Purely a storage reclaim; correctness never depends on it.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
