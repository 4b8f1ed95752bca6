package authz

// Visibility scopes narrow collections before they reach the caller.
// Each scope doubles as a repository filter input and an in-memory
// predicate so services can re-check single resources fetched by ID.

// ArticleScope describes which article states an actor may see.
type ArticleScope struct {
	// All grants visibility into every state (staff, superuser, moderator).
	All bool
	// ViewerID, when set, additionally exposes that user's own articles
	// regardless of state.
	ViewerID *int64
}

// ScopeArticles computes the article visibility scope for an actor.
func ScopeArticles(actor Actor) ArticleScope {
	if actor.Moderator() {
		return ArticleScope{All: true}
	}
	if actor.Authenticated {
		id := actor.ID
		return ArticleScope{ViewerID: &id}
	}
	return ArticleScope{}
}

// Allows reports whether an article with the given state and author is
// visible under the scope.
func (s ArticleScope) Allows(state ArticleState, author *int64) bool {
	if s.All {
		return true
	}
	if state == StatePublished {
		return true
	}
	return s.ViewerID != nil && author != nil && *author == *s.ViewerID
}

// CommentScope describes which comments an actor may see.
type CommentScope struct {
	// IncludeInactive exposes soft-deleted comments (moderators only).
	IncludeInactive bool
}

// ScopeComments computes the comment visibility scope for an actor.
func ScopeComments(actor Actor) CommentScope {
	return CommentScope{IncludeInactive: actor.Moderator()}
}

// Allows reports whether a comment with the given active flag is visible.
func (s CommentScope) Allows(active bool) bool {
	return active || s.IncludeInactive
}

// OwnerScope restricts a collection to records owned by a single actor.
// Used for reactions and bookmarks; bookmarks deliberately have no admin
// override, so no privileged variant exists.
type OwnerScope struct {
	OwnerID int64
	Valid   bool
}

// ScopeOwned computes an ownership-only scope for an actor. Anonymous
// actors get an invalid scope that matches nothing.
func ScopeOwned(actor Actor) OwnerScope {
	if !actor.Authenticated {
		return OwnerScope{}
	}
	return OwnerScope{OwnerID: actor.ID, Valid: true}
}

// Allows reports whether a record owned by the given user is visible.
func (s OwnerScope) Allows(owner int64) bool {
	return s.Valid && owner == s.OwnerID
}

// DedupeByID removes duplicate entries produced by multi-valued joins,
// keyed by resource identity rather than serialized representation.
// Order of first occurrence is preserved.
func DedupeByID[T any](items []T, id func(T) int64) []T {
	if len(items) < 2 {
		return items
	}
	seen := make(map[int64]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		key := id(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
