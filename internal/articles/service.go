package articles

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulse-news/pulse/internal/activity"
	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/shared"
	"github.com/pulse-news/pulse/internal/taxonomy"
	"github.com/pulse-news/pulse/jobs"
)

// RepositoryPort defines data access methods for articles.
type RepositoryPort interface {
	Create(ctx context.Context, a Article, tagIDs []int64) (Article, error)
	GetBySlug(ctx context.Context, slug string) (Article, error)
	List(ctx context.Context, q ListQuery) ([]Article, int, error)
	Update(ctx context.Context, a Article, tagIDs []int64, replaceTags bool) (Article, error)
	SetState(ctx context.Context, id int64, state authz.ArticleState) (*time.Time, error)
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
}

// TagResolver turns free-form tag names into records.
type TagResolver interface {
	ResolveTags(ctx context.Context, names []string) ([]taxonomy.Tag, error)
}

// ActivityRecorder appends entries to the activity log.
type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action string, details map[string]any)
}

// ViewEnqueuer submits view-count increments to the background queue.
type ViewEnqueuer interface {
	EnqueueArticleView(ctx context.Context, payload jobs.ArticleViewPayload) error
}

// ListResult bundles a page of articles with pagination metadata.
type ListResult struct {
	Articles   []Article         `json:"articles"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service handles article business logic.
type Service struct {
	repo     RepositoryPort
	tags     TagResolver
	recorder ActivityRecorder
	queue    ViewEnqueuer
	logger   *slog.Logger
}

// NewService builds a Service instance. The queue may be nil; view
// counts are then bumped synchronously.
func NewService(repo RepositoryPort, tags TagResolver, recorder ActivityRecorder, queue ViewEnqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tags: tags, recorder: recorder, queue: queue, logger: logger}
}

// List returns the articles visible to the actor, newest first.
func (s *Service) List(ctx context.Context, actor authz.Actor, filters ListFilters) (ListResult, error) {
	pagination := shared.NewPagination(filters.Page, filters.PerPage, 0)
	q := ListQuery{
		Filters: filters,
		Scope:   authz.ScopeArticles(actor),
		Limit:   pagination.PerPage,
		Offset:  pagination.Offset(),
	}
	list, total, err := s.repo.List(ctx, q)
	if err != nil {
		return ListResult{}, err
	}
	list = authz.DedupeByID(list, func(a Article) int64 { return a.ID })
	return ListResult{Articles: list, Pagination: shared.NewPagination(filters.Page, filters.PerPage, total)}, nil
}

// Get returns one article by slug. Articles outside the actor's
// visibility scope read as missing, not forbidden.
func (s *Service) Get(ctx context.Context, actor authz.Actor, slug string) (Article, error) {
	a, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return Article{}, err
	}
	if !authz.ScopeArticles(actor).Allows(a.State, a.AuthorID) {
		return Article{}, shared.ErrNotFound
	}
	return a, nil
}

// Create drafts a new article owned by the actor.
func (s *Service) Create(ctx context.Context, actor authz.Actor, input CreateInput) (Article, error) {
	if d := authz.Can(actor, authz.ActionCreate, authz.ArticleResource(0, nil, authz.StateDraft)); !d.Allowed {
		return Article{}, shared.ErrPermissionDenied
	}
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Content) == "" {
		return Article{}, shared.ErrInvalidState
	}
	tags, err := s.tags.ResolveTags(ctx, input.Tags)
	if err != nil {
		return Article{}, err
	}
	authorID := actor.ID
	a := Article{
		Title:         title,
		Slug:          shared.Slugify(title),
		Summary:       strings.TrimSpace(input.Summary),
		Content:       input.Content,
		FeaturedImage: strings.TrimSpace(input.FeaturedImage),
		AuthorID:      &authorID,
		CategoryID:    input.CategoryID,
		State:         authz.StateDraft,
	}
	created, err := s.repo.Create(ctx, a, tagIDs(tags))
	if errors.Is(err, shared.ErrConflict) {
		// slug collision with an existing title; retry once with a suffix
		a.Slug = a.Slug + "-" + uuid.NewString()[:8]
		created, err = s.repo.Create(ctx, a, tagIDs(tags))
	}
	if err != nil {
		return Article{}, err
	}
	created.Tags = tags
	if created.Tags == nil {
		created.Tags = []taxonomy.Tag{}
	}
	s.recorder.Record(ctx, actor.ID, activity.ActionArticleCreate, map[string]any{"article_id": created.ID, "slug": created.Slug})
	return created, nil
}

// Update applies a partial edit. The slug never changes after creation
// so published links stay stable.
func (s *Service) Update(ctx context.Context, actor authz.Actor, slug string, input UpdateInput) (Article, error) {
	existing, err := s.Get(ctx, actor, slug)
	if err != nil {
		return Article{}, err
	}
	if d := authz.Can(actor, authz.ActionUpdate, existing.Resource()); !d.Allowed {
		return Article{}, shared.ErrPermissionDenied
	}
	if input.Title != nil {
		if t := strings.TrimSpace(*input.Title); t != "" {
			existing.Title = t
		}
	}
	if input.Summary != nil {
		existing.Summary = strings.TrimSpace(*input.Summary)
	}
	if input.Content != nil && strings.TrimSpace(*input.Content) != "" {
		existing.Content = *input.Content
	}
	if input.FeaturedImage != nil {
		existing.FeaturedImage = strings.TrimSpace(*input.FeaturedImage)
	}
	if input.ClearCategory {
		existing.CategoryID = nil
	} else if input.CategoryID != nil {
		existing.CategoryID = input.CategoryID
	}

	var ids []int64
	replaceTags := false
	newTags := existing.Tags
	if input.Tags != nil {
		resolved, err := s.tags.ResolveTags(ctx, *input.Tags)
		if err != nil {
			return Article{}, err
		}
		ids = tagIDs(resolved)
		replaceTags = true
		newTags = resolved
	}
	updated, err := s.repo.Update(ctx, existing, ids, replaceTags)
	if err != nil {
		return Article{}, err
	}
	updated.Tags = newTags
	if updated.Tags == nil {
		updated.Tags = []taxonomy.Tag{}
	}
	s.recorder.Record(ctx, actor.ID, activity.ActionArticleUpdate, map[string]any{"article_id": updated.ID, "slug": updated.Slug})
	return updated, nil
}

// Publish makes the article publicly visible. The first publish stamps
// published_at; republishing keeps the original timestamp.
func (s *Service) Publish(ctx context.Context, actor authz.Actor, slug string) (Article, error) {
	return s.transition(ctx, actor, slug, authz.StatePublished)
}

// Unpublish returns the article to draft.
func (s *Service) Unpublish(ctx context.Context, actor authz.Actor, slug string) (Article, error) {
	return s.transition(ctx, actor, slug, authz.StateDraft)
}

// Archive retires the article from public listings without deleting it.
func (s *Service) Archive(ctx context.Context, actor authz.Actor, slug string) (Article, error) {
	return s.transition(ctx, actor, slug, authz.StateArchived)
}

func (s *Service) transition(ctx context.Context, actor authz.Actor, slug string, state authz.ArticleState) (Article, error) {
	existing, err := s.Get(ctx, actor, slug)
	if err != nil {
		return Article{}, err
	}
	if d := authz.Can(actor, authz.ActionPublish, existing.Resource()); !d.Allowed {
		return Article{}, shared.ErrPermissionDenied
	}
	if existing.State == state {
		return existing, nil
	}
	publishedAt, err := s.repo.SetState(ctx, existing.ID, state)
	if err != nil {
		return Article{}, err
	}
	existing.State = state
	existing.PublishedAt = publishedAt
	s.recorder.Record(ctx, actor.ID, activity.ActionArticleUpdate, map[string]any{
		"article_id": existing.ID,
		"slug":       existing.Slug,
		"state":      string(state),
	})
	return existing, nil
}

// Delete removes an article permanently.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, slug string) error {
	existing, err := s.Get(ctx, actor, slug)
	if err != nil {
		return err
	}
	if d := authz.Can(actor, authz.ActionDelete, existing.Resource()); !d.Allowed {
		return shared.ErrPermissionDenied
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return err
	}
	s.recorder.Record(ctx, actor.ID, activity.ActionArticleDelete, map[string]any{"article_id": existing.ID, "slug": existing.Slug})
	return nil
}

// RecordView counts one read of a visible article. Counting is best
// effort and never fails the request.
func (s *Service) RecordView(ctx context.Context, actor authz.Actor, slug string) error {
	existing, err := s.Get(ctx, actor, slug)
	if err != nil {
		return err
	}
	if s.queue != nil {
		if err := s.queue.EnqueueArticleView(ctx, jobs.ArticleViewPayload{ArticleID: existing.ID}); err == nil {
			return nil
		}
	}
	if err := s.repo.IncrementViews(ctx, existing.ID); err != nil {
		s.logger.Warn("view count dropped", "article_id", existing.ID, "error", err)
	}
	return nil
}

// Resolve exposes the minimal article reference for modules nesting
// under an article, with visibility already applied.
func (s *Service) Resolve(ctx context.Context, actor authz.Actor, slug string) (Ref, error) {
	existing, err := s.Get(ctx, actor, slug)
	if err != nil {
		return Ref{}, err
	}
	return Ref{ID: existing.ID, Slug: existing.Slug, AuthorID: existing.AuthorID, State: existing.State}, nil
}

func tagIDs(tags []taxonomy.Tag) []int64 {
	ids := make([]int64, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}
