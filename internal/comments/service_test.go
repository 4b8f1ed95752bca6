package comments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse-news/pulse/internal/articles"
	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/shared"
)

type stubCommentRepo struct {
	comments map[int64]*Comment
	nextID   int64
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[int64]*Comment), nextID: 1}
}

func (s *stubCommentRepo) ListByArticle(ctx context.Context, articleID int64, includeInactive bool) ([]Comment, error) {
	var out []Comment
	for id := int64(1); id < s.nextID; id++ {
		c, ok := s.comments[id]
		if !ok || c.ArticleID != articleID {
			continue
		}
		if !c.Active && !includeInactive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCommentRepo) GetByID(ctx context.Context, id int64) (Comment, error) {
	c, ok := s.comments[id]
	if !ok {
		return Comment{}, shared.ErrNotFound
	}
	return *c, nil
}

func (s *stubCommentRepo) Create(ctx context.Context, c Comment) (Comment, error) {
	c.ID = s.nextID
	s.nextID++
	c.Active = true
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.comments[c.ID] = &c
	return c, nil
}

func (s *stubCommentRepo) UpdateContent(ctx context.Context, id int64, content string) (Comment, error) {
	c, ok := s.comments[id]
	if !ok {
		return Comment{}, shared.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = time.Now()
	return *c, nil
}

func (s *stubCommentRepo) SetActive(ctx context.Context, id int64, active bool) error {
	c, ok := s.comments[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.Active = active
	return nil
}

type stubArticleResolver struct {
	refs map[string]articles.Ref
}

func (s *stubArticleResolver) Resolve(ctx context.Context, actor authz.Actor, slug string) (articles.Ref, error) {
	ref, ok := s.refs[slug]
	if !ok {
		return articles.Ref{}, shared.ErrNotFound
	}
	if !authz.ScopeArticles(actor).Allows(ref.State, ref.AuthorID) {
		return articles.Ref{}, shared.ErrNotFound
	}
	return ref, nil
}

type stubRecorder struct {
	actions []string
}

func (s *stubRecorder) Record(ctx context.Context, userID int64, action string, details map[string]any) {
	s.actions = append(s.actions, action)
}

func reader(id int64) authz.Actor {
	return authz.Actor{
		ID:            id,
		Role:          authz.RoleReader,
		Caps:          authz.NewCapabilitySet(authz.DefaultGrants(authz.RoleReader)...),
		Authenticated: true,
	}
}

func moderator(id int64) authz.Actor {
	actor := reader(id)
	actor.Caps[authz.CapContentModerate] = struct{}{}
	return actor
}

func newTestService() (*Service, *stubCommentRepo, *stubRecorder) {
	author := int64(99)
	resolver := &stubArticleResolver{refs: map[string]articles.Ref{
		"published-story": {ID: 1, Slug: "published-story", AuthorID: &author, State: authz.StatePublished},
		"draft-story":     {ID: 2, Slug: "draft-story", AuthorID: &author, State: authz.StateDraft},
	}}
	repo := newStubCommentRepo()
	recorder := &stubRecorder{}
	return NewService(repo, resolver, recorder), repo, recorder
}

func TestCreateCommentRequiresAuth(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), authz.Anonymous(), "published-story", nil, "hi")
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestCreateCommentOnHiddenArticle(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), reader(1), "draft-story", nil, "hi")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateReplyValidatesParent(t *testing.T) {
	svc, repo, recorder := newTestService()

	parent, err := svc.Create(context.Background(), reader(1), "published-story", nil, "first")
	require.NoError(t, err)
	assert.Contains(t, recorder.actions, "comment_create")

	reply, err := svc.Create(context.Background(), reader(2), "published-story", &parent.ID, "reply")
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)

	// deleted parents reject new replies
	require.NoError(t, repo.SetActive(context.Background(), parent.ID, false))
	_, err = svc.Create(context.Background(), reader(2), "published-story", &parent.ID, "late reply")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	missing := int64(999)
	_, err = svc.Create(context.Background(), reader(2), "published-story", &missing, "orphan")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateOwnCommentOnly(t *testing.T) {
	svc, _, _ := newTestService()

	comment, err := svc.Create(context.Background(), reader(1), "published-story", nil, "original")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), reader(2), comment.ID, "hijacked")
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	updated, err := svc.Update(context.Background(), reader(1), comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	updated, err = svc.Update(context.Background(), moderator(3), comment.ID, "moderated")
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Content)
}

func TestDeleteSoftDeletes(t *testing.T) {
	svc, repo, recorder := newTestService()

	comment, err := svc.Create(context.Background(), reader(1), "published-story", nil, "bye")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), reader(1), comment.ID))
	stored, err := repo.GetByID(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Contains(t, recorder.actions, "comment_delete")

	// gone for regular viewers, still listed for moderators
	visible, err := svc.ListForArticle(context.Background(), reader(2), "published-story")
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := svc.ListForArticle(context.Background(), moderator(3), "published-story")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRestoreModeratorsOnly(t *testing.T) {
	svc, _, _ := newTestService()

	comment, err := svc.Create(context.Background(), reader(1), "published-story", nil, "bye")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), reader(1), comment.ID))

	_, err = svc.Restore(context.Background(), reader(1), comment.ID)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	restored, err := svc.Restore(context.Background(), moderator(3), comment.ID)
	require.NoError(t, err)
	assert.True(t, restored.Active)
}

func TestThreadAssembly(t *testing.T) {
	one := int64(1)
	missing := int64(50)
	flat := []Comment{
		{ID: 1, Content: "root"},
		{ID: 2, ParentID: &one, Content: "reply"},
		{ID: 3, Content: "another root"},
		{ID: 4, ParentID: &missing, Content: "orphan"},
	}
	roots := Thread(flat)
	require.Len(t, roots, 3)
	assert.Equal(t, int64(1), roots[0].ID)
	require.Len(t, roots[0].Replies, 1)
	assert.Equal(t, int64(2), roots[0].Replies[0].ID)
	assert.Equal(t, int64(4), roots[2].ID)
}
