package bookmarks

import (
	"context"
	"errors"

	"github.com/pulse-news/pulse/internal/articles"
	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/shared"
)

// RepositoryPort defines data access methods for bookmarks.
type RepositoryPort interface {
	Insert(ctx context.Context, articleID, userID int64) (Bookmark, error)
	Delete(ctx context.Context, articleID, userID int64) error
	Exists(ctx context.Context, articleID, userID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Bookmark, int, error)
}

// ArticleResolver locates articles with the caller's visibility applied.
type ArticleResolver interface {
	Resolve(ctx context.Context, actor authz.Actor, slug string) (articles.Ref, error)
}

// ListResult bundles a page of bookmarks with pagination metadata.
type ListResult struct {
	Bookmarks  []Bookmark        `json:"bookmarks"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service handles bookmark business logic. All operations act on the
// requesting actor's own bookmarks only; staff and superusers get no
// wider view here.
type Service struct {
	repo     RepositoryPort
	articles ArticleResolver
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, resolver ArticleResolver) *Service {
	return &Service{repo: repo, articles: resolver}
}

// Toggle bookmarks the article, or removes the bookmark when it already
// exists. Returns whether the article ends up bookmarked.
func (s *Service) Toggle(ctx context.Context, actor authz.Actor, articleSlug string) (bool, error) {
	scope := authz.ScopeOwned(actor)
	if !scope.Valid {
		return false, shared.ErrPermissionDenied
	}
	ref, err := s.articles.Resolve(ctx, actor, articleSlug)
	if err != nil {
		return false, err
	}
	_, err = s.repo.Insert(ctx, ref.ID, scope.OwnerID)
	if errors.Is(err, shared.ErrConflict) {
		// already bookmarked; the toggle removes it
		if err := s.repo.Delete(ctx, ref.ID, scope.OwnerID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return false, err
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Check reports whether the actor bookmarked the article.
func (s *Service) Check(ctx context.Context, actor authz.Actor, articleSlug string) (bool, error) {
	scope := authz.ScopeOwned(actor)
	if !scope.Valid {
		return false, shared.ErrPermissionDenied
	}
	ref, err := s.articles.Resolve(ctx, actor, articleSlug)
	if err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, ref.ID, scope.OwnerID)
}

// List returns the actor's bookmarks, newest first.
func (s *Service) List(ctx context.Context, actor authz.Actor, page, perPage int) (ListResult, error) {
	scope := authz.ScopeOwned(actor)
	if !scope.Valid {
		return ListResult{}, shared.ErrPermissionDenied
	}
	pagination := shared.NewPagination(page, perPage, 0)
	list, total, err := s.repo.ListByUser(ctx, scope.OwnerID, pagination.PerPage, pagination.Offset())
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Bookmarks: list, Pagination: shared.NewPagination(page, perPage, total)}, nil
}
