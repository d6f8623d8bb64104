package isolation

import (
	"context"

	"github.com/google/uuid"

	"github.com/perimetra/tenantcore/pkg/tenant"
)

// Scoped wraps a Store and applies tenant filtering to every operation.
// It is the only path application code uses to touch tenant-owned data.
type Scoped[T Entity] struct {
	inner Store[T]
}

// NewScoped wraps a backing store.
func NewScoped[T Entity](inner Store[T]) *Scoped[T] {
	return &Scoped[T]{inner: inner}
}

// tenantFilter resolves the predicate to append, or nil under bypass.
func tenantFilter(ctx context.Context) (*Filter, error) {
	if Bypassed(ctx) {
		return nil, nil
	}
	id, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, ErrNoTenantInContext
	}
	f := Eq(TenantField, id)
	return &f, nil
}

// Find returns rows matching the filters within the current tenant.
func (s *Scoped[T]) Find(ctx context.Context, filters ...Filter) ([]T, error) {
	tf, err := tenantFilter(ctx)
	if err != nil {
		return nil, err
	}
	if tf != nil {
		filters = append(filters, *tf)
	}
	return s.inner.Find(ctx, filters...)
}

// FindOne returns a single row matching the filters within the current
// tenant, or ErrNotFound.
func (s *Scoped[T]) FindOne(ctx context.Context, filters ...Filter) (T, error) {
	tf, err := tenantFilter(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if tf != nil {
		filters = append(filters, *tf)
	}
	return s.inner.FindOne(ctx, filters...)
}

// Insert stamps the row with the current tenant id and stores it.
// Stamping is this layer's job: a caller-supplied id matching the
// context is tolerated, any other id is rejected.
func (s *Scoped[T]) Insert(ctx context.Context, row T) error {
	if Bypassed(ctx) {
		if row.GetTenantID() == (uuid.UUID{}) {
			return ErrMissingTenantID
		}
		return s.inner.Insert(ctx, row)
	}

	id, ok := tenant.IDFromContext(ctx)
	if !ok {
		return ErrNoTenantInContext
	}
	if existing := row.GetTenantID(); existing != (uuid.UUID{}) && existing != id {
		return ErrCrossTenantWrite
	}
	row.SetTenantID(id)
	return s.inner.Insert(ctx, row)
}

// Update rewrites a row, constrained to the current tenant.
func (s *Scoped[T]) Update(ctx context.Context, row T, filters ...Filter) error {
	tf, err := tenantFilter(ctx)
	if err != nil {
		return err
	}
	if tf != nil {
		id := tf.Value.(uuid.UUID)
		if existing := row.GetTenantID(); existing != (uuid.UUID{}) && existing != id {
			return ErrCrossTenantWrite
		}
		row.SetTenantID(id)
		filters = append(filters, *tf)
	}
	return s.inner.Update(ctx, row, filters...)
}

// Delete removes rows matching the filters within the current tenant.
func (s *Scoped[T]) Delete(ctx context.Context, filters ...Filter) error {
	tf, err := tenantFilter(ctx)
	if err != nil {
		return err
	}
	if tf != nil {
		filters = append(filters, *tf)
	}
	return s.inner.Delete(ctx, filters...)
}
