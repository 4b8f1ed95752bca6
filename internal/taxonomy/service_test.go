package taxonomy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/shared"
)

type stubTaxonomyRepo struct {
	categories map[string]*Category
	tags       map[string]*Tag
	nextID     int64
}

func newStubTaxonomyRepo() *stubTaxonomyRepo {
	return &stubTaxonomyRepo{
		categories: make(map[string]*Category),
		tags:       make(map[string]*Tag),
		nextID:     1,
	}
}

func (s *stubTaxonomyRepo) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubTaxonomyRepo) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	c, ok := s.categories[slug]
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return *c, nil
}

func (s *stubTaxonomyRepo) CreateCategory(ctx context.Context, c Category) (Category, error) {
	if _, ok := s.categories[c.Slug]; ok {
		return Category{}, shared.ErrConflict
	}
	c.ID = s.nextID
	s.nextID++
	s.categories[c.Slug] = &c
	return c, nil
}

func (s *stubTaxonomyRepo) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	for slug, existing := range s.categories {
		if existing.ID == c.ID {
			delete(s.categories, slug)
			s.categories[c.Slug] = &c
			return c, nil
		}
	}
	return Category{}, shared.ErrNotFound
}

func (s *stubTaxonomyRepo) DeleteCategory(ctx context.Context, id int64) error {
	for slug, existing := range s.categories {
		if existing.ID == id {
			delete(s.categories, slug)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (s *stubTaxonomyRepo) ListTags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	for _, t := range s.tags {
		out = append(out, *t)
	}
	return out, nil
}

func (s *stubTaxonomyRepo) GetTagBySlug(ctx context.Context, slug string) (Tag, error) {
	t, ok := s.tags[slug]
	if !ok {
		return Tag{}, shared.ErrNotFound
	}
	return *t, nil
}

func (s *stubTaxonomyRepo) EnsureTags(ctx context.Context, names []string, slugs []string) ([]Tag, error) {
	out := make([]Tag, 0, len(names))
	for i, name := range names {
		if existing, ok := s.tags[slugs[i]]; ok {
			out = append(out, *existing)
			continue
		}
		t := Tag{ID: s.nextID, Name: name, Slug: slugs[i]}
		s.nextID++
		s.tags[t.Slug] = &t
		out = append(out, t)
	}
	return out, nil
}

func (s *stubTaxonomyRepo) UpdateTag(ctx context.Context, t Tag) (Tag, error) {
	for slug, existing := range s.tags {
		if existing.ID == t.ID {
			delete(s.tags, slug)
			s.tags[t.Slug] = &t
			return t, nil
		}
	}
	return Tag{}, shared.ErrNotFound
}

func (s *stubTaxonomyRepo) DeleteTag(ctx context.Context, id int64) error {
	for slug, existing := range s.tags {
		if existing.ID == id {
			delete(s.tags, slug)
			return nil
		}
	}
	return shared.ErrNotFound
}

func taxonomyAdmin() authz.Actor {
	return authz.Actor{
		ID:            1,
		Role:          authz.RoleAdmin,
		Caps:          authz.NewCapabilitySet(authz.CapTaxonomyManage),
		Authenticated: true,
	}
}

func plainReader() authz.Actor {
	return authz.Actor{
		ID:            2,
		Role:          authz.RoleReader,
		Caps:          authz.NewCapabilitySet(authz.DefaultGrants(authz.RoleReader)...),
		Authenticated: true,
	}
}

func TestCreateCategorySlugifiesName(t *testing.T) {
	svc := NewService(newStubTaxonomyRepo())

	category, err := svc.CreateCategory(context.Background(), taxonomyAdmin(), "  Tech & Science  ", "stories about both")
	require.NoError(t, err)
	assert.Equal(t, "Tech & Science", category.Name)
	assert.Equal(t, "tech-science", category.Slug)
}

func TestCreateCategoryDeniedWithoutManage(t *testing.T) {
	svc := NewService(newStubTaxonomyRepo())

	_, err := svc.CreateCategory(context.Background(), plainReader(), "Tech", "")
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestUpdateCategoryRenames(t *testing.T) {
	repo := newStubTaxonomyRepo()
	svc := NewService(repo)

	created, err := svc.CreateCategory(context.Background(), taxonomyAdmin(), "Tech", "")
	require.NoError(t, err)

	updated, err := svc.UpdateCategory(context.Background(), taxonomyAdmin(), created.Slug, "Deep Tech", "renamed")
	require.NoError(t, err)
	assert.Equal(t, "deep-tech", updated.Slug)

	_, err = svc.GetCategory(context.Background(), "tech")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteCategoryDeniedForReader(t *testing.T) {
	repo := newStubTaxonomyRepo()
	svc := NewService(repo)

	created, err := svc.CreateCategory(context.Background(), taxonomyAdmin(), "Tech", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteCategory(context.Background(), plainReader(), created.Slug), shared.ErrPermissionDenied)
	require.NoError(t, svc.DeleteCategory(context.Background(), taxonomyAdmin(), created.Slug))
}

func TestResolveTagsCreatesAndDedupes(t *testing.T) {
	repo := newStubTaxonomyRepo()
	svc := NewService(repo)

	tags, err := svc.ResolveTags(context.Background(), []string{"Go", "  ", "go", "Databases"})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Slug)
	assert.Equal(t, "databases", tags[1].Slug)

	// resolving again reuses existing records
	again, err := svc.ResolveTags(context.Background(), []string{"GO"})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, tags[0].ID, again[0].ID)
}

func TestTagMutationRequiresManage(t *testing.T) {
	repo := newStubTaxonomyRepo()
	svc := NewService(repo)

	tags, err := svc.ResolveTags(context.Background(), []string{"Go"})
	require.NoError(t, err)

	_, err = svc.UpdateTag(context.Background(), plainReader(), tags[0].Slug, "Golang")
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	renamed, err := svc.UpdateTag(context.Background(), taxonomyAdmin(), tags[0].Slug, "Golang")
	require.NoError(t, err)
	assert.Equal(t, "golang", renamed.Slug)

	assert.ErrorIs(t, svc.DeleteTag(context.Background(), plainReader(), renamed.Slug), shared.ErrPermissionDenied)
	require.NoError(t, svc.DeleteTag(context.Background(), taxonomyAdmin(), renamed.Slug))
}
