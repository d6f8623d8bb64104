package tenant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryDirectory is an in-memory Directory with the mutation operations
// the admin surface needs. Suitable for tests and single-node setups.
type MemoryDirectory struct {
	mu     sync.RWMutex
	bySlug map[string]*Tenant
	byID   map[uuid.UUID]*Tenant
}

// NewMemoryDirectory returns an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		bySlug: make(map[string]*Tenant),
		byID:   make(map[uuid.UUID]*Tenant),
	}
}

// GetBySlug implements Directory.
func (d *MemoryDirectory) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.bySlug[slug]
	if !ok {
		return nil, ErrTenantNotFound
	}
	copied := *t
	return &copied, nil
}

// GetByID returns a tenant by id.
func (d *MemoryDirectory) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.byID[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	copied := *t
	return &copied, nil
}

// Create registers a new active tenant under the given slug.
func (d *MemoryDirectory) Create(ctx context.Context, slug, name string) (*Tenant, error) {
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.bySlug[slug]; exists {
		return nil, ErrSlugTaken
	}

	t := &Tenant{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      name,
		Active:    true,
		CreatedAt: time.Now(),
	}
	d.bySlug[slug] = t
	d.byID[t.ID] = t

	copied := *t
	return &copied, nil
}

// Rename changes a tenant's slug. The caller must invalidate the old slug
// in any Cache in front of this directory.
func (d *MemoryDirectory) Rename(ctx context.Context, id uuid.UUID, newSlug string) error {
	if !ValidSlug(newSlug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, newSlug)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.byID[id]
	if !ok {
		return ErrTenantNotFound
	}
	if existing, taken := d.bySlug[newSlug]; taken && existing.ID != id {
		return ErrSlugTaken
	}

	delete(d.bySlug, t.Slug)
	t.Slug = newSlug
	d.bySlug[newSlug] = t
	return nil
}

// SetActive flips the soft activation flag.
func (d *MemoryDirectory) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.byID[id]
	if !ok {
		return ErrTenantNotFound
	}
	t.Active = active
	return nil
}
