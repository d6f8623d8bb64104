package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over the roles, resource_permissions,
// and user_roles tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Postgres-backed RBAC store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateRole(ctx context.Context, role Role) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO roles (id, tenant_id, name) VALUES ($1, $2, $3)`,
		role.ID, role.TenantID, role.Name)
	if err != nil {
		return fmt.Errorf("rbac store: creating role: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRole(ctx context.Context, tenantID, roleID uuid.UUID) (*Role, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, name FROM roles WHERE id = $1 AND tenant_id = $2`,
		roleID, tenantID)

	var role Role
	if err := row.Scan(&role.ID, &role.TenantID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("rbac store: fetching role: %w", err)
	}
	return &role, nil
}

func (s *PostgresStore) RoleIDsForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role_id FROM user_roles WHERE tenant_id = $1 AND user_id = $2`,
		tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac store: listing roles: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("rbac store: scanning role id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) UpsertPermission(ctx context.Context, perm ResourcePermission) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO resource_permissions (role_id, tenant_id, resource, level)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (role_id, resource) DO UPDATE SET level = EXCLUDED.level`,
		perm.RoleID, perm.TenantID, perm.Resource, int(perm.Level))
	if err != nil {
		return fmt.Errorf("rbac store: upserting permission: %w", err)
	}
	return nil
}

func (s *PostgresStore) AssignRole(ctx context.Context, a RoleAssignment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id, tenant_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, role_id) DO NOTHING`,
		a.UserID, a.RoleID, a.TenantID)
	if err != nil {
		return fmt.Errorf("rbac store: assigning role: %w", err)
	}
	return nil
}

func (s *PostgresStore) UnassignRole(ctx context.Context, a RoleAssignment) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2 AND tenant_id = $3`,
		a.UserID, a.RoleID, a.TenantID)
	if err != nil {
		return fmt.Errorf("rbac store: unassigning role: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasGrant(ctx context.Context, tenantID uuid.UUID, roleIDs []uuid.UUID, resource string, minLevel Level) (bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM resource_permissions
			WHERE tenant_id = $1 AND role_id = ANY($2) AND resource = $3 AND level >= $4
		)`,
		tenantID, roleIDs, resource, int(minLevel))

	var granted bool
	if err := row.Scan(&granted); err != nil {
		return false, fmt.Errorf("rbac store: checking grant: %w", err)
	}
	return granted, nil
}
