package taxonomy

import (
	"context"
	"strings"

	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/shared"
)

// RepositoryPort defines data access methods for taxonomy records.
type RepositoryPort interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (Category, error)
	CreateCategory(ctx context.Context, c Category) (Category, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (Tag, error)
	EnsureTags(ctx context.Context, names []string, slugs []string) ([]Tag, error)
	UpdateTag(ctx context.Context, t Tag) (Tag, error)
	DeleteTag(ctx context.Context, id int64) error
}

// Service handles category and tag business logic. Reads are public;
// every mutation goes through the evaluator.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// GetCategory returns one category by slug.
func (s *Service) GetCategory(ctx context.Context, slug string) (Category, error) {
	return s.repo.GetCategoryBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
}

// CreateCategory adds a category.
func (s *Service) CreateCategory(ctx context.Context, actor authz.Actor, name, description string) (Category, error) {
	if d := authz.Can(actor, authz.ActionCreate, authz.CategoryResource(0)); !d.Allowed {
		return Category{}, shared.ErrPermissionDenied
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, shared.ErrInvalidState
	}
	return s.repo.CreateCategory(ctx, Category{
		Name:        name,
		Slug:        shared.Slugify(name),
		Description: strings.TrimSpace(description),
	})
}

// UpdateCategory renames a category or changes its description.
func (s *Service) UpdateCategory(ctx context.Context, actor authz.Actor, slug, name, description string) (Category, error) {
	existing, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return Category{}, err
	}
	if d := authz.Can(actor, authz.ActionUpdate, authz.CategoryResource(existing.ID)); !d.Allowed {
		return Category{}, shared.ErrPermissionDenied
	}
	if name = strings.TrimSpace(name); name != "" {
		existing.Name = name
		existing.Slug = shared.Slugify(name)
	}
	existing.Description = strings.TrimSpace(description)
	return s.repo.UpdateCategory(ctx, existing)
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, actor authz.Actor, slug string) error {
	existing, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if d := authz.Can(actor, authz.ActionDelete, authz.CategoryResource(existing.ID)); !d.Allowed {
		return shared.ErrPermissionDenied
	}
	return s.repo.DeleteCategory(ctx, existing.ID)
}

// ListTags returns all tags.
func (s *Service) ListTags(ctx context.Context) ([]Tag, error) {
	return s.repo.ListTags(ctx)
}

// GetTag returns one tag by slug.
func (s *Service) GetTag(ctx context.Context, slug string) (Tag, error) {
	return s.repo.GetTagBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
}

// ResolveTags maps free-form tag names to records, creating new ones as
// needed. Blank and duplicate names are dropped.
func (s *Service) ResolveTags(ctx context.Context, names []string) ([]Tag, error) {
	var cleaned, slugs []string
	seen := make(map[string]struct{})
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		slug := shared.Slugify(name)
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		cleaned = append(cleaned, name)
		slugs = append(slugs, slug)
	}
	if len(cleaned) == 0 {
		return nil, nil
	}
	return s.repo.EnsureTags(ctx, cleaned, slugs)
}

// UpdateTag renames a tag.
func (s *Service) UpdateTag(ctx context.Context, actor authz.Actor, slug, name string) (Tag, error) {
	existing, err := s.repo.GetTagBySlug(ctx, slug)
	if err != nil {
		return Tag{}, err
	}
	if d := authz.Can(actor, authz.ActionUpdate, authz.TagResource(existing.ID)); !d.Allowed {
		return Tag{}, shared.ErrPermissionDenied
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, shared.ErrInvalidState
	}
	existing.Name = name
	existing.Slug = shared.Slugify(name)
	return s.repo.UpdateTag(ctx, existing)
}

// DeleteTag removes a tag.
func (s *Service) DeleteTag(ctx context.Context, actor authz.Actor, slug string) error {
	existing, err := s.repo.GetTagBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if d := authz.Can(actor, authz.ActionDelete, authz.TagResource(existing.ID)); !d.Allowed {
		return shared.ErrPermissionDenied
	}
	return s.repo.DeleteTag(ctx, existing.ID)
}
