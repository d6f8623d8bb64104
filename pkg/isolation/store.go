package isolation

import (
	"context"

	"github.com/google/uuid"
)

// Entity is implemented by tenant-owned rows.
type Entity interface {
	GetTenantID() uuid.UUID
	SetTenantID(id uuid.UUID)
}

// Store is the narrow predicate interface a backing store exposes over
// one entity type. Implementations translate filters to their native
// query form; they apply no tenant logic of their own.
type Store[T Entity] interface {
	Find(ctx context.Context, filters ...Filter) ([]T, error)
	FindOne(ctx context.Context, filters ...Filter) (T, error)
	Insert(ctx context.Context, row T) error
	Update(ctx context.Context, row T, filters ...Filter) error
	Delete(ctx context.Context, filters ...Filter) error
}
