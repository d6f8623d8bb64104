package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and development. All
// compound operations run under a single mutex, which gives Rotate the
// same winner-takes-all behavior as the transactional Postgres store.
type MemoryStore struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*SessionPair
	byHash map[string]uuid.UUID
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[uuid.UUID]*SessionPair),
		byHash: make(map[string]uuid.UUID),
	}
}

func (m *MemoryStore) Insert(_ context.Context, pair *SessionPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := clonePair(pair)
	m.byID[p.ID] = p
	m.byHash[p.TokenHash] = p.ID
	return nil
}

func (m *MemoryStore) GetByTokenHash(_ context.Context, hash string) (*SessionPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byHash[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePair(m.byID[id]), nil
}

func (m *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*SessionPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pair, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePair(pair), nil
}

func (m *MemoryStore) Rotate(_ context.Context, oldID uuid.UUID, revokedAt time.Time, successor *SessionPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.byID[oldID]
	if !ok {
		return ErrNotFound
	}
	if old.RevokedAt != nil {
		return ErrAlreadyRotated
	}

	at := revokedAt
	old.RevokedAt = &at
	succ := clonePair(successor)
	old.ReplacedBy = &succ.ID
	m.byID[succ.ID] = succ
	m.byHash[succ.TokenHash] = succ.ID
	return nil
}

func (m *MemoryStore) Revoke(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pair, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	if pair.RevokedAt == nil {
		t := at
		pair.RevokedAt = &t
	}
	return nil
}

func (m *MemoryStore) RevokeAllForPrincipal(_ context.Context, tenantID, principalID uuid.UUID, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, pair := range m.byID {
		if pair.TenantID == tenantID && pair.PrincipalID == principalID && pair.RevokedAt == nil {
			t := at
			pair.RevokedAt = &t
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, pair := range m.byID {
		if pair.ExpiresAt.Before(cutoff) {
			delete(m.byHash, pair.TokenHash)
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

func clonePair(p *SessionPair) *SessionPair {
	c := *p
	if p.RevokedAt != nil {
		t := *p.RevokedAt
		c.RevokedAt = &t
	}
	if p.ReplacedBy != nil {
		id := *p.ReplacedBy
		c.ReplacedBy = &id
	}
	return &c
}

var _ Store = (*MemoryStore)(nil)
