package rbac

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/perimetra/tenantcore/pkg/tenant"
)

// Service is the permission engine. Checks are pure decisions over
// fetched data; the only I/O is the two store reads.
type Service struct {
	store Store
	log   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService returns a permission engine over the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasPermission reports whether the principal holds at least the required
// level on the resource within the current tenant. Every deny path —
// no tenant context, no roles, no matching grant, role held elsewhere —
// returns plain false. A non-nil error means the store failed, nothing
// about the principal.
func (s *Service) HasPermission(ctx context.Context, principalID uuid.UUID, resource string, required Level) (bool, error) {
	if !required.Valid() || strings.TrimSpace(resource) == "" {
		return false, nil
	}

	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return false, nil
	}

	roleIDs, err := s.store.RoleIDsForUser(ctx, tenantID, principalID)
	if err != nil {
		return false, fmt.Errorf("rbac: resolving roles: %w", err)
	}
	if len(roleIDs) == 0 {
		return false, nil
	}

	granted, err := s.store.HasGrant(ctx, tenantID, roleIDs, resource, required)
	if err != nil {
		return false, fmt.Errorf("rbac: checking grant: %w", err)
	}
	return granted, nil
}

// requireAdmin gates administrative mutations on the admin resource.
func (s *Service) requireAdmin(ctx context.Context, actorID uuid.UUID, level Level) error {
	ok, err := s.HasPermission(ctx, actorID, ResourceAdmin, level)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// CreateRole creates a named role in the current tenant. The actor needs
// Create on the admin resource.
func (s *Service) CreateRole(ctx context.Context, actorID uuid.UUID, name string) (*Role, error) {
	if err := s.requireAdmin(ctx, actorID, LevelCreate); err != nil {
		return nil, err
	}
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}

	role := Role{ID: uuid.New(), TenantID: tenantID, Name: name}
	if err := s.store.CreateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("rbac: creating role: %w", err)
	}
	s.log.InfoContext(ctx, "role created", "role_id", role.ID, "name", name)
	return &role, nil
}

// Grant sets the role's level on a resource, replacing any previous row
// for the pair. The actor needs Update on the admin resource.
func (s *Service) Grant(ctx context.Context, actorID, roleID uuid.UUID, resource string, level Level) error {
	if err := s.requireAdmin(ctx, actorID, LevelUpdate); err != nil {
		return err
	}
	if !level.Valid() {
		return ErrInvalidLevel
	}
	if strings.TrimSpace(resource) == "" {
		return ErrInvalidResource
	}
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return ErrForbidden
	}

	if _, err := s.store.GetRole(ctx, tenantID, roleID); err != nil {
		return err
	}

	perm := ResourcePermission{RoleID: roleID, TenantID: tenantID, Resource: resource, Level: level}
	if err := s.store.UpsertPermission(ctx, perm); err != nil {
		return fmt.Errorf("rbac: granting permission: %w", err)
	}
	s.log.InfoContext(ctx, "permission granted",
		"role_id", roleID, "resource", resource, "level", level.String())
	return nil
}

// AssignRole gives a user a role in the current tenant. Duplicate
// assignment is a silent no-op. The actor needs Update on the admin
// resource.
func (s *Service) AssignRole(ctx context.Context, actorID, userID, roleID uuid.UUID) error {
	if err := s.requireAdmin(ctx, actorID, LevelUpdate); err != nil {
		return err
	}
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return ErrForbidden
	}

	if _, err := s.store.GetRole(ctx, tenantID, roleID); err != nil {
		return err
	}

	a := RoleAssignment{UserID: userID, RoleID: roleID, TenantID: tenantID}
	if err := s.store.AssignRole(ctx, a); err != nil {
		return fmt.Errorf("rbac: assigning role: %w", err)
	}
	s.log.InfoContext(ctx, "role assigned", "user_id", userID, "role_id", roleID)
	return nil
}

// UnassignRole removes a user's role in the current tenant. The actor
// needs Update on the admin resource.
func (s *Service) UnassignRole(ctx context.Context, actorID, userID, roleID uuid.UUID) error {
	if err := s.requireAdmin(ctx, actorID, LevelUpdate); err != nil {
		return err
	}
	tenantID, ok := tenant.IDFromContext(ctx)
	if !ok {
		return ErrForbidden
	}

	a := RoleAssignment{UserID: userID, RoleID: roleID, TenantID: tenantID}
	if err := s.store.UnassignRole(ctx, a); err != nil {
		return fmt.Errorf("rbac: unassigning role: %w", err)
	}
	s.log.InfoContext(ctx, "role unassigned", "user_id", userID, "role_id", roleID)
	return nil
}

// Bootstrap creates an initial admin role with full control over the
// admin resource and assigns it to the given user, skipping the admin
// gate. Intended for tenant provisioning, where no admin exists yet.
func (s *Service) Bootstrap(ctx context.Context, tenantID, userID uuid.UUID) (*Role, error) {
	role := Role{ID: uuid.New(), TenantID: tenantID, Name: "admin"}
	if err := s.store.CreateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("rbac: bootstrapping role: %w", err)
	}
	perm := ResourcePermission{RoleID: role.ID, TenantID: tenantID, Resource: ResourceAdmin, Level: LevelDelete}
	if err := s.store.UpsertPermission(ctx, perm); err != nil {
		return nil, fmt.Errorf("rbac: bootstrapping grant: %w", err)
	}
	a := RoleAssignment{UserID: userID, RoleID: role.ID, TenantID: tenantID}
	if err := s.store.AssignRole(ctx, a); err != nil {
		return nil, fmt.Errorf("rbac: bootstrapping assignment: %w", err)
	}
	return &role, nil
}
