package authz

// Kind tags the resource kinds the evaluator knows about.
type Kind string

const (
	KindArticle  Kind = "article"
	KindComment  Kind = "comment"
	KindReaction Kind = "reaction"
	KindBookmark Kind = "bookmark"
	KindCategory Kind = "category"
	KindTag      Kind = "tag"
)

// ArticleState governs article visibility.
type ArticleState string

const (
	StateDraft     ArticleState = "draft"
	StatePublished ArticleState = "published"
	StateArchived  ArticleState = "archived"
)

// Resource is the evaluator's view of a target object. Owner is nil for
// ownerless kinds (category, tag) and for resources whose author account
// was deleted; "own" checks deny in that case rather than fail.
type Resource struct {
	Kind   Kind
	ID     int64
	owner  *int64
	public bool
}

// ArticleResource describes an article for evaluation.
func ArticleResource(id int64, author *int64, state ArticleState) Resource {
	return Resource{Kind: KindArticle, ID: id, owner: author, public: state == StatePublished}
}

// CommentResource describes a comment for evaluation.
func CommentResource(id int64, author *int64, active bool) Resource {
	return Resource{Kind: KindComment, ID: id, owner: author, public: active}
}

// ReactionResource describes a reaction for evaluation. Reactions are
// never publicly visible.
func ReactionResource(id, userID int64) Resource {
	uid := userID
	return Resource{Kind: KindReaction, ID: id, owner: &uid}
}

// BookmarkResource describes a bookmark for evaluation.
func BookmarkResource(id, userID int64) Resource {
	uid := userID
	return Resource{Kind: KindBookmark, ID: id, owner: &uid}
}

// CategoryResource describes a category. Categories are ownerless and
// publicly readable.
func CategoryResource(id int64) Resource {
	return Resource{Kind: KindCategory, ID: id, public: true}
}

// TagResource describes a tag. Tags are ownerless and publicly readable.
func TagResource(id int64) Resource {
	return Resource{Kind: KindTag, ID: id, public: true}
}

// Owner resolves the owning actor ID. ok is false for ownerless kinds
// and cleared author references.
func (r Resource) Owner() (int64, bool) {
	if r.owner == nil {
		return 0, false
	}
	return *r.owner, true
}

// Public reports whether the resource is in a publicly visible state.
func (r Resource) Public() bool {
	return r.public
}

// OwnedBy reports whether the resource owner resolves to the given actor.
func (r Resource) OwnedBy(actor Actor) bool {
	owner, ok := r.Owner()
	return ok && actor.Authenticated && owner == actor.ID
}
