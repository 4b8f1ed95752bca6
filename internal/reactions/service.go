package reactions

import (
	"context"
	"errors"

	"github.com/pulse-news/pulse/internal/articles"
	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/shared"
)

// RepositoryPort defines data access methods for reactions.
type RepositoryPort interface {
	Get(ctx context.Context, articleID, userID int64) (Reaction, error)
	Insert(ctx context.Context, re Reaction) (Reaction, error)
	UpdateValue(ctx context.Context, id int64, value string) error
	Delete(ctx context.Context, articleID, userID int64) error
	Counts(ctx context.Context, articleID int64) (likes, dislikes int, err error)
	ListByUser(ctx context.Context, userID int64) ([]Reaction, error)
}

// ArticleResolver locates articles with the caller's visibility applied.
type ArticleResolver interface {
	Resolve(ctx context.Context, actor authz.Actor, slug string) (articles.Ref, error)
}

// Service handles reaction business logic.
type Service struct {
	repo     RepositoryPort
	articles ArticleResolver
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, resolver ArticleResolver) *Service {
	return &Service{repo: repo, articles: resolver}
}

// Toggle records the actor's reaction. Reacting with the held value
// removes it; reacting with the other value switches. The returned
// summary reflects the final state.
func (s *Service) Toggle(ctx context.Context, actor authz.Actor, articleSlug, value string) (Summary, error) {
	if !ValidValue(value) {
		return Summary{}, shared.ErrInvalidState
	}
	ref, err := s.articles.Resolve(ctx, actor, articleSlug)
	if err != nil {
		return Summary{}, err
	}
	if d := authz.Can(actor, authz.ActionRate, authz.ArticleResource(ref.ID, ref.AuthorID, ref.State)); !d.Allowed {
		return Summary{}, shared.ErrPermissionDenied
	}
	if err := s.apply(ctx, ref.ID, actor.ID, value); err != nil {
		return Summary{}, err
	}
	return s.summary(ctx, ref.ID, actor)
}

// apply runs the toggle state machine once, recovering from the insert
// race where two requests for the same pair arrive together.
func (s *Service) apply(ctx context.Context, articleID, userID int64, value string) error {
	existing, err := s.repo.Get(ctx, articleID, userID)
	if errors.Is(err, shared.ErrNotFound) {
		_, err := s.repo.Insert(ctx, Reaction{ArticleID: articleID, UserID: userID, Value: value})
		if errors.Is(err, shared.ErrConflict) {
			// lost the race; the other request created the row
			existing, err = s.repo.Get(ctx, articleID, userID)
			if err != nil {
				return err
			}
			return s.settle(ctx, existing, articleID, userID, value)
		}
		return err
	}
	if err != nil {
		return err
	}
	return s.settle(ctx, existing, articleID, userID, value)
}

func (s *Service) settle(ctx context.Context, existing Reaction, articleID, userID int64, value string) error {
	if existing.Value == value {
		err := s.repo.Delete(ctx, articleID, userID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.repo.UpdateValue(ctx, existing.ID, value)
}

// Remove clears the actor's reaction regardless of value.
func (s *Service) Remove(ctx context.Context, actor authz.Actor, articleSlug string) (Summary, error) {
	ref, err := s.articles.Resolve(ctx, actor, articleSlug)
	if err != nil {
		return Summary{}, err
	}
	if d := authz.Can(actor, authz.ActionRate, authz.ArticleResource(ref.ID, ref.AuthorID, ref.State)); !d.Allowed {
		return Summary{}, shared.ErrPermissionDenied
	}
	if err := s.repo.Delete(ctx, ref.ID, actor.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return Summary{}, err
	}
	return s.summary(ctx, ref.ID, actor)
}

// SummaryFor returns the aggregate reactions of an article.
func (s *Service) SummaryFor(ctx context.Context, actor authz.Actor, articleSlug string) (Summary, error) {
	ref, err := s.articles.Resolve(ctx, actor, articleSlug)
	if err != nil {
		return Summary{}, err
	}
	return s.summary(ctx, ref.ID, actor)
}

// ListMine returns the actor's own reactions. There is no variant for
// inspecting another user's reactions.
func (s *Service) ListMine(ctx context.Context, actor authz.Actor) ([]Reaction, error) {
	scope := authz.ScopeOwned(actor)
	if !scope.Valid {
		return nil, shared.ErrPermissionDenied
	}
	return s.repo.ListByUser(ctx, scope.OwnerID)
}

func (s *Service) summary(ctx context.Context, articleID int64, actor authz.Actor) (Summary, error) {
	likes, dislikes, err := s.repo.Counts(ctx, articleID)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{Likes: likes, Dislikes: dislikes}
	if actor.Authenticated {
		mine, err := s.repo.Get(ctx, articleID, actor.ID)
		switch {
		case err == nil:
			out.Mine = mine.Value
		case !errors.Is(err, shared.ErrNotFound):
			return Summary{}, err
		}
	}
	return out, nil
}
