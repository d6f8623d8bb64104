package isolation

import (
	"context"
	"slices"
	"sync"
)

// FieldsFunc exposes an entity's stored fields for predicate evaluation.
// Only stored fields belong here: computed values (expiry, derived
// booleans) are evaluated by callers after the fetch.
type FieldsFunc[T Entity] func(row T) map[string]any

// CloneFunc produces an independent copy of a row so callers cannot
// mutate stored state in place.
type CloneFunc[T Entity] func(row T) T

// MemoryStore is an in-memory Store implementation used by tests and
// single-node deployments.
type MemoryStore[T Entity] struct {
	mu     sync.RWMutex
	rows   []T
	fields FieldsFunc[T]
	clone  CloneFunc[T]
}

// NewMemoryStore returns an empty in-memory store for one entity type.
func NewMemoryStore[T Entity](fields FieldsFunc[T], clone CloneFunc[T]) *MemoryStore[T] {
	return &MemoryStore[T]{fields: fields, clone: clone}
}

func matches(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		if !ok {
			return false
		}
		switch f.Op {
		case OpEq:
			if v != f.Value {
				return false
			}
		case OpIn:
			vs, ok := f.Value.([]any)
			if !ok || !slices.Contains(vs, v) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (m *MemoryStore[T]) Find(ctx context.Context, filters ...Filter) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []T
	for _, row := range m.rows {
		if matches(m.fields(row), filters) {
			out = append(out, m.clone(row))
		}
	}
	return out, nil
}

func (m *MemoryStore[T]) FindOne(ctx context.Context, filters ...Filter) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, row := range m.rows {
		if matches(m.fields(row), filters) {
			return m.clone(row), nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

func (m *MemoryStore[T]) Insert(ctx context.Context, row T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, m.clone(row))
	return nil
}

func (m *MemoryStore[T]) Update(ctx context.Context, row T, filters ...Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.rows {
		if matches(m.fields(existing), filters) {
			m.rows[i] = m.clone(row)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore[T]) Delete(ctx context.Context, filters ...Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = slices.DeleteFunc(m.rows, func(row T) bool {
		return matches(m.fields(row), filters)
	})
	return nil
}
