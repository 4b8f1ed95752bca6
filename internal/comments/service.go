package comments

import (
	"context"
	"strings"

	"github.com/pulse-news/pulse/internal/activity"
	"github.com/pulse-news/pulse/internal/articles"
	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/shared"
)

// RepositoryPort defines data access methods for comments.
type RepositoryPort interface {
	ListByArticle(ctx context.Context, articleID int64, includeInactive bool) ([]Comment, error)
	GetByID(ctx context.Context, id int64) (Comment, error)
	Create(ctx context.Context, c Comment) (Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) (Comment, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// ArticleResolver locates articles with the caller's visibility applied.
type ArticleResolver interface {
	Resolve(ctx context.Context, actor authz.Actor, slug string) (articles.Ref, error)
}

// ActivityRecorder appends entries to the activity log.
type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action string, details map[string]any)
}

// Service handles comment business logic. A comment is only reachable
// through an article the actor can see.
type Service struct {
	repo     RepositoryPort
	articles ArticleResolver
	recorder ActivityRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, resolver ArticleResolver, recorder ActivityRecorder) *Service {
	return &Service{repo: repo, articles: resolver, recorder: recorder}
}

// ListForArticle returns the threaded comments of an article. Moderators
// also see soft-deleted entries.
func (s *Service) ListForArticle(ctx context.Context, actor authz.Actor, articleSlug string) ([]*Comment, error) {
	ref, err := s.articles.Resolve(ctx, actor, articleSlug)
	if err != nil {
		return nil, err
	}
	scope := authz.ScopeComments(actor)
	flat, err := s.repo.ListByArticle(ctx, ref.ID, scope.IncludeInactive)
	if err != nil {
		return nil, err
	}
	return Thread(flat), nil
}

// Create posts a comment, optionally as a reply.
func (s *Service) Create(ctx context.Context, actor authz.Actor, articleSlug string, parentID *int64, content string) (Comment, error) {
	ref, err := s.articles.Resolve(ctx, actor, articleSlug)
	if err != nil {
		return Comment{}, err
	}
	if d := authz.Can(actor, authz.ActionCreate, authz.CommentResource(0, nil, true)); !d.Allowed {
		return Comment{}, shared.ErrPermissionDenied
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, shared.ErrInvalidState
	}
	if parentID != nil {
		parent, err := s.repo.GetByID(ctx, *parentID)
		if err != nil {
			return Comment{}, err
		}
		if parent.ArticleID != ref.ID || !parent.Active {
			return Comment{}, shared.ErrInvalidState
		}
	}
	authorID := actor.ID
	created, err := s.repo.Create(ctx, Comment{
		ArticleID:  ref.ID,
		AuthorID:   &authorID,
		AuthorName: actor.Username,
		ParentID:   parentID,
		Content:    content,
	})
	if err != nil {
		return Comment{}, err
	}
	s.recorder.Record(ctx, actor.ID, activity.ActionCommentCreate, map[string]any{"article_id": ref.ID, "comment_id": created.ID})
	return created, nil
}

// Update rewrites a comment's body. Authors edit their own; comment
// managers and moderators edit anyone's.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id int64, content string) (Comment, error) {
	existing, err := s.visible(ctx, actor, id)
	if err != nil {
		return Comment{}, err
	}
	if d := authz.Can(actor, authz.ActionUpdate, existing.Resource()); !d.Allowed {
		return Comment{}, shared.ErrPermissionDenied
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, shared.ErrInvalidState
	}
	return s.repo.UpdateContent(ctx, id, content)
}

// Delete soft-deletes a comment, keeping replies attached.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	existing, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if d := authz.Can(actor, authz.ActionDelete, existing.Resource()); !d.Allowed {
		return shared.ErrPermissionDenied
	}
	if !existing.Active {
		return nil
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.recorder.Record(ctx, actor.ID, activity.ActionCommentDelete, map[string]any{"comment_id": id})
	return nil
}

// Restore reactivates a soft-deleted comment. Moderators only.
func (s *Service) Restore(ctx context.Context, actor authz.Actor, id int64) (Comment, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Comment{}, err
	}
	if d := authz.Can(actor, authz.ActionModerate, existing.Resource()); !d.Allowed {
		return Comment{}, shared.ErrPermissionDenied
	}
	if !existing.Active {
		if err := s.repo.SetActive(ctx, id, true); err != nil {
			return Comment{}, err
		}
		existing.Active = true
	}
	return existing, nil
}

// visible fetches a comment and hides soft-deleted ones from actors
// outside the moderation scope.
func (s *Service) visible(ctx context.Context, actor authz.Actor, id int64) (Comment, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Comment{}, err
	}
	if !authz.ScopeComments(actor).Allows(existing.Active) {
		return Comment{}, shared.ErrNotFound
	}
	return existing, nil
}
