package session

import (
	"context"
	"fmt"
	"time"
)

// ActiveLister enumerates active pairs across all tenants. Implemented
// by both stores; intended for administrative reporting only.
type ActiveLister interface {
	ListActive(ctx context.Context, now time.Time) ([]*SessionPair, error)
}

func (m *MemoryStore) ListActive(_ context.Context, now time.Time) ([]*SessionPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pairs []*SessionPair
	for _, pair := range m.byID {
		if pair.Active(now) {
			pairs = append(pairs, clonePair(pair))
		}
	}
	return pairs, nil
}

func (s *PostgresStore) ListActive(ctx context.Context, now time.Time) ([]*SessionPair, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pairColumns+` FROM session_pairs
		 WHERE revoked_at IS NULL AND expires_at > $1
		 ORDER BY issued_at`, now)
	if err != nil {
		return nil, fmt.Errorf("session store: listing active pairs: %w", err)
	}
	defer rows.Close()

	var pairs []*SessionPair
	for rows.Next() {
		var pair SessionPair
		err := rows.Scan(&pair.ID, &pair.TenantID, &pair.PrincipalID, &pair.TokenHash,
			&pair.IssuingIP, &pair.IssuedAt, &pair.ExpiresAt, &pair.RevokedAt, &pair.ReplacedBy)
		if err != nil {
			return nil, fmt.Errorf("session store: scanning pair: %w", err)
		}
		pairs = append(pairs, &pair)
	}
	return pairs, rows.Err()
}

var (
	_ ActiveLister = (*MemoryStore)(nil)
	_ ActiveLister = (*PostgresStore)(nil)
)
