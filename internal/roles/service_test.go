package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/shared"
)

type stubRoleRepo struct {
	roles  map[string]*Role
	nextID int64
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]*Role), nextID: 1}
}

func (s *stubRoleRepo) ListRoles(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, *r)
	}
	return out, nil
}

func (s *stubRoleRepo) GetRoleByName(ctx context.Context, name string) (Role, error) {
	r, ok := s.roles[name]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return *r, nil
}

func (s *stubRoleRepo) CreateRole(ctx context.Context, role Role) (Role, error) {
	if _, ok := s.roles[role.Name]; ok {
		return Role{}, shared.ErrConflict
	}
	role.ID = s.nextID
	s.nextID++
	s.roles[role.Name] = &role
	return role, nil
}

func (s *stubRoleRepo) ReplaceCapabilities(ctx context.Context, roleID int64, caps []authz.Capability) error {
	for _, r := range s.roles {
		if r.ID == roleID {
			r.Capabilities = caps
			return nil
		}
	}
	return shared.ErrNotFound
}

func (s *stubRoleRepo) EnsureRole(ctx context.Context, role Role) error {
	if existing, ok := s.roles[role.Name]; ok {
		set := authz.NewCapabilitySet(existing.Capabilities...)
		for _, c := range role.Capabilities {
			set[c] = struct{}{}
		}
		existing.Capabilities = set.List()
		return nil
	}
	role.ID = s.nextID
	s.nextID++
	s.roles[role.Name] = &role
	return nil
}

func TestSeedInstallsCanonicalRoles(t *testing.T) {
	repo := newStubRoleRepo()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	require.NoError(t, svc.Seed(ctx), "seed must be idempotent")

	reader, err := svc.Resolve(ctx, authz.RoleReader)
	require.NoError(t, err)
	assert.True(t, reader.CapabilitySet().Has(authz.CapCommentCreate))
	assert.False(t, reader.CapabilitySet().Has(authz.CapArticleCreate))

	editor, err := svc.Resolve(ctx, authz.RoleEditor)
	require.NoError(t, err)
	assert.True(t, editor.CapabilitySet().Has(authz.CapArticleCreate))
	assert.True(t, editor.CapabilitySet().Has(authz.CapArticleUpdateOwn))

	admin, err := svc.Resolve(ctx, authz.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, admin.CapabilitySet().Has(authz.CapContentModerate))
	assert.True(t, admin.CapabilitySet().Has(authz.CapUserManage))
}

func TestResolveUnknownRole(t *testing.T) {
	svc := NewService(newStubRoleRepo())
	_, err := svc.Resolve(context.Background(), "nobody")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateCustomRole(t *testing.T) {
	svc := NewService(newStubRoleRepo())
	ctx := context.Background()

	role, err := svc.Create(ctx, " Curator ", "Curator", "picks featured articles",
		[]authz.Capability{authz.CapArticleView, authz.CapArticleView, authz.CapCommentView})
	require.NoError(t, err)
	assert.Equal(t, "curator", role.Name)
	assert.Len(t, role.Capabilities, 2, "grants are deduplicated")

	_, err = svc.Create(ctx, "curator", "", "", nil)
	assert.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.Create(ctx, "  ", "", "", nil)
	assert.Error(t, err)
}

func TestSetCapabilities(t *testing.T) {
	repo := newStubRoleRepo()
	svc := NewService(repo)
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx))

	role, err := svc.SetCapabilities(ctx, authz.RoleReader, []authz.Capability{authz.CapCommentView})
	require.NoError(t, err)
	assert.Equal(t, []authz.Capability{authz.CapCommentView}, role.Capabilities)

	_, err = svc.SetCapabilities(ctx, "ghost", nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
