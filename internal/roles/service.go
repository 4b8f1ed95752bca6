package roles

import (
	"context"
	"errors"
	"strings"

	"github.com/pulse-news/pulse/internal/authz"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	CreateRole(ctx context.Context, role Role) (Role, error)
	ReplaceCapabilities(ctx context.Context, roleID int64, caps []authz.Capability) error
	EnsureRole(ctx context.Context, role Role) error
}

// Service is the role registry. Role identity is immutable once assigned
// to users; only the grant set may change.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Resolve looks a role up by identifier.
func (s *Service) Resolve(ctx context.Context, name string) (Role, error) {
	return s.repo.GetRoleByName(ctx, strings.TrimSpace(strings.ToLower(name)))
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// Create registers a custom role with an arbitrary capability subset.
func (s *Service) Create(ctx context.Context, name, displayName, description string, caps []authz.Capability) (Role, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	if displayName == "" {
		displayName = name
	}
	return s.repo.CreateRole(ctx, Role{
		Name:         name,
		DisplayName:  displayName,
		Description:  strings.TrimSpace(description),
		Capabilities: dedupe(caps),
	})
}

// SetCapabilities replaces the grant set of a role.
func (s *Service) SetCapabilities(ctx context.Context, name string, caps []authz.Capability) (Role, error) {
	role, err := s.Resolve(ctx, name)
	if err != nil {
		return Role{}, err
	}
	if err := s.repo.ReplaceCapabilities(ctx, role.ID, dedupe(caps)); err != nil {
		return Role{}, err
	}
	return s.Resolve(ctx, name)
}

// Seed installs the canonical reader/editor/admin roles with their
// documented default grants. Run once at deployment; idempotent, never
// invoked lazily from request handling.
func (s *Service) Seed(ctx context.Context) error {
	canonical := []Role{
		{Name: authz.RoleReader, DisplayName: "Reader", Description: "Can view and comment on published articles", Capabilities: authz.DefaultGrants(authz.RoleReader)},
		{Name: authz.RoleEditor, DisplayName: "Editor", Description: "Can author and manage own articles", Capabilities: authz.DefaultGrants(authz.RoleEditor)},
		{Name: authz.RoleAdmin, DisplayName: "Administrator", Description: "Full content and user management", Capabilities: authz.DefaultGrants(authz.RoleAdmin)},
	}
	for _, role := range canonical {
		if err := s.repo.EnsureRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

func dedupe(caps []authz.Capability) []authz.Capability {
	return authz.NewCapabilitySet(caps...).List()
}
