package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actorWithRole(id int64, role string) Actor {
	return Actor{
		ID:            id,
		Role:          role,
		Caps:          NewCapabilitySet(DefaultGrants(role)...),
		Authenticated: true,
	}
}

func int64ptr(v int64) *int64 { return &v }

func TestSuperuserAllowsEverything(t *testing.T) {
	super := Actor{ID: 1, Superuser: true, Authenticated: true}
	staff := Actor{ID: 2, Staff: true, Authenticated: true}

	resources := []Resource{
		ArticleResource(7, int64ptr(99), StateDraft),
		CommentResource(3, int64ptr(99), false),
		ReactionResource(4, 99),
		BookmarkResource(5, 99),
		CategoryResource(6),
		TagResource(8),
	}
	actions := []Action{ActionView, ActionList, ActionCreate, ActionUpdate, ActionDelete, ActionPublish, ActionRate}

	for _, res := range resources {
		for _, action := range actions {
			d := Can(super, action, res)
			assert.True(t, d.Allowed, "superuser %s on %s", action, res.Kind)
			assert.Equal(t, ReasonSuperuserOverride, d.Reason)
			assert.True(t, Allowed(staff, action, res), "staff %s on %s", action, res.Kind)
		}
	}
}

func TestAnonymousWritesDenied(t *testing.T) {
	anon := Anonymous()
	writes := []struct {
		action Action
		res    Resource
	}{
		{ActionCreate, ArticleResource(0, nil, StateDraft)},
		{ActionUpdate, ArticleResource(1, int64ptr(2), StatePublished)},
		{ActionDelete, CommentResource(1, int64ptr(2), true)},
		{ActionRate, ArticleResource(1, int64ptr(2), StatePublished)},
		{ActionCreate, BookmarkResource(0, 2)},
		{ActionCreate, CategoryResource(0)},
	}
	for _, tc := range writes {
		d := Can(anon, tc.action, tc.res)
		require.False(t, d.Allowed, "%s on %s", tc.action, tc.res.Kind)
		assert.Equal(t, ReasonAnonymousWrite, d.Reason)
	}
}

func TestAnonymousReads(t *testing.T) {
	anon := Anonymous()

	d := Can(anon, ActionView, ArticleResource(1, int64ptr(2), StatePublished))
	assert.True(t, d.Allowed)
	assert.Equal(t, ReasonPublicRead, d.Reason)

	d = Can(anon, ActionView, ArticleResource(1, int64ptr(2), StateDraft))
	assert.False(t, d.Allowed)

	assert.True(t, Allowed(anon, ActionList, CategoryResource(1)))
	assert.True(t, Allowed(anon, ActionView, CommentResource(1, int64ptr(2), true)))
	assert.False(t, Allowed(anon, ActionView, CommentResource(1, int64ptr(2), false)))
}

func TestReaderCannotCreateArticles(t *testing.T) {
	reader := actorWithRole(10, RoleReader)
	d := Can(reader, ActionCreate, ArticleResource(0, nil, StateDraft))
	require.False(t, d.Allowed)
	assert.Equal(t, ReasonMissingCapability, d.Reason)
}

func TestEditorOwnershipChecks(t *testing.T) {
	editor := actorWithRole(10, RoleEditor)
	own := ArticleResource(5, int64ptr(10), StateDraft)
	other := ArticleResource(6, int64ptr(11), StatePublished)

	assert.True(t, Allowed(editor, ActionCreate, ArticleResource(0, nil, StateDraft)))

	d := Can(editor, ActionUpdate, own)
	assert.True(t, d.Allowed)
	assert.Equal(t, ReasonOwner, d.Reason)

	d = Can(editor, ActionUpdate, other)
	require.False(t, d.Allowed)
	assert.Equal(t, ReasonNotOwner, d.Reason)

	assert.True(t, Allowed(editor, ActionDelete, own))
	assert.False(t, Allowed(editor, ActionDelete, other))
	assert.True(t, Allowed(editor, ActionPublish, own))
	assert.False(t, Allowed(editor, ActionPublish, other))
}

func TestModerationOverridesOwnership(t *testing.T) {
	moderator := actorWithRole(20, RoleEditor)
	moderator.Caps[CapContentModerate] = struct{}{}

	otherArticle := ArticleResource(6, int64ptr(11), StateDraft)
	otherComment := CommentResource(7, int64ptr(11), true)

	d := Can(moderator, ActionUpdate, otherArticle)
	assert.True(t, d.Allowed)
	assert.Equal(t, ReasonModeratorOverride, d.Reason)

	assert.True(t, Allowed(moderator, ActionDelete, otherComment))

	staffModerator := Actor{ID: 21, Staff: true, Authenticated: true}
	assert.True(t, Allowed(staffModerator, ActionDelete, otherComment))
}

func TestClearedOwnerDeniesOwnVariant(t *testing.T) {
	editor := actorWithRole(10, RoleEditor)
	orphan := ArticleResource(5, nil, StateDraft)

	d := Can(editor, ActionUpdate, orphan)
	require.False(t, d.Allowed)
	assert.Equal(t, ReasonNotOwner, d.Reason)
}

func TestRatingRequiresOnlyAuthentication(t *testing.T) {
	reader := actorWithRole(10, RoleReader)
	noRole := Actor{ID: 11, Authenticated: true}

	article := ArticleResource(1, int64ptr(2), StatePublished)
	assert.True(t, Allowed(reader, ActionRate, article))
	assert.True(t, Allowed(noRole, ActionRate, article))
	assert.True(t, Allowed(noRole, ActionCreate, CommentResource(0, nil, true)))
}

func TestCommentOwnershipAndModeration(t *testing.T) {
	reader := actorWithRole(10, RoleReader)
	own := CommentResource(1, int64ptr(10), true)
	other := CommentResource(2, int64ptr(11), true)

	assert.True(t, Allowed(reader, ActionUpdate, own))
	assert.True(t, Allowed(reader, ActionDelete, own))
	assert.False(t, Allowed(reader, ActionDelete, other))

	admin := actorWithRole(30, RoleAdmin)
	assert.True(t, Allowed(admin, ActionDelete, other))
	assert.True(t, Allowed(admin, ActionModerate, other))
	assert.False(t, Allowed(reader, ActionModerate, other))
}

func TestTaxonomyMutationIsAdminOnly(t *testing.T) {
	editor := actorWithRole(10, RoleEditor)
	admin := actorWithRole(30, RoleAdmin)

	for _, res := range []Resource{CategoryResource(1), TagResource(1)} {
		for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
			assert.False(t, Allowed(editor, action, res), "editor %s on %s", action, res.Kind)
			assert.True(t, Allowed(admin, action, res), "admin %s on %s", action, res.Kind)
		}
	}
}

func TestOwnerScopedKindsGuardMutation(t *testing.T) {
	actor := Actor{ID: 10, Authenticated: true}

	assert.True(t, Allowed(actor, ActionDelete, BookmarkResource(1, 10)))
	assert.False(t, Allowed(actor, ActionDelete, BookmarkResource(2, 11)))
	assert.True(t, Allowed(actor, ActionUpdate, ReactionResource(1, 10)))
	assert.False(t, Allowed(actor, ActionUpdate, ReactionResource(2, 11)))
}

func TestUnsupportedActionDenied(t *testing.T) {
	actor := actorWithRole(10, RoleAdmin)
	actor.Staff = false
	actor.Superuser = false

	d := Can(actor, ActionModerate, BookmarkResource(1, 10))
	require.False(t, d.Allowed)
	assert.Equal(t, ReasonUnsupportedAction, d.Reason)
}

func TestDefaultGrants(t *testing.T) {
	reader := NewCapabilitySet(DefaultGrants(RoleReader)...)
	assert.True(t, reader.Has(CapCommentCreate))
	assert.False(t, reader.Has(CapArticleCreate))

	editor := NewCapabilitySet(DefaultGrants(RoleEditor)...)
	assert.True(t, editor.Has(CapCommentCreate))
	assert.True(t, editor.Has(CapArticleCreate))
	assert.True(t, editor.Has(CapArticleUpdateOwn))
	assert.False(t, editor.Has(CapArticleUpdate))
	assert.False(t, editor.Has(CapContentModerate))

	admin := NewCapabilitySet(DefaultGrants(RoleAdmin)...)
	for _, c := range AllCapabilities() {
		assert.True(t, admin.Has(c), "admin missing %s", c)
	}

	assert.Empty(t, DefaultGrants("unknown"))
}
