package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perimetra/tenantcore/pkg/pg"
)

// PostgresDirectory implements Directory over a tenants table.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresDirectory returns a Postgres-backed tenant directory.
func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

// GetBySlug implements Directory.
func (d *PostgresDirectory) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT id, slug, name, active, created_at FROM tenants WHERE slug = $1`, slug)

	var t Tenant
	if err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Active, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("tenant directory: %w", err)
	}
	return &t, nil
}

// GetByID returns a tenant by id.
func (d *PostgresDirectory) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT id, slug, name, active, created_at FROM tenants WHERE id = $1`, id)

	var t Tenant
	if err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Active, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("tenant directory: %w", err)
	}
	return &t, nil
}

// Create registers a new active tenant.
func (d *PostgresDirectory) Create(ctx context.Context, slug, name string) (*Tenant, error) {
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}

	row := d.pool.QueryRow(ctx,
		`INSERT INTO tenants (id, slug, name, active)
		 VALUES ($1, $2, $3, TRUE)
		 RETURNING id, slug, name, active, created_at`,
		uuid.New(), slug, name)

	var t Tenant
	if err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Active, &t.CreatedAt); err != nil {
		if pg.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("tenant directory: %w", err)
	}
	return &t, nil
}

// Rename changes a tenant's slug. Callers invalidate the old slug in the
// cache afterwards.
func (d *PostgresDirectory) Rename(ctx context.Context, id uuid.UUID, newSlug string) error {
	if !ValidSlug(newSlug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, newSlug)
	}

	tag, err := d.pool.Exec(ctx,
		`UPDATE tenants SET slug = $2 WHERE id = $1`, id, newSlug)
	if err != nil {
		if pg.IsDuplicateKey(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("tenant directory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// SetActive flips the soft activation flag.
func (d *PostgresDirectory) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE tenants SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("tenant directory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}
