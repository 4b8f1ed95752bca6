package articles

import (
	"time"

	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/taxonomy"
)

// Article is the core content record. AuthorID is nil once the author's
// account has been deleted; such articles stay readable but can no
// longer pass ownership checks.
type Article struct {
	ID            int64              `json:"id"`
	Title         string             `json:"title"`
	Slug          string             `json:"slug"`
	Summary       string             `json:"summary,omitempty"`
	Content       string             `json:"content"`
	FeaturedImage string             `json:"featured_image,omitempty"`
	AuthorID      *int64             `json:"author_id"`
	AuthorName    string             `json:"author_name,omitempty"`
	CategoryID    *int64             `json:"category_id,omitempty"`
	CategorySlug  string             `json:"category_slug,omitempty"`
	Tags          []taxonomy.Tag     `json:"tags"`
	State         authz.ArticleState `json:"state"`
	ViewCount     int64              `json:"view_count"`
	PublishedAt   *time.Time         `json:"published_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Resource converts the article into its evaluator representation.
func (a Article) Resource() authz.Resource {
	return authz.ArticleResource(a.ID, a.AuthorID, a.State)
}

// Ref is the minimal article view other modules need to authorize
// operations nested under an article.
type Ref struct {
	ID       int64
	Slug     string
	AuthorID *int64
	State    authz.ArticleState
}

// ListFilters narrows article listings. The visibility scope is applied
// on top of these, never instead of them.
type ListFilters struct {
	Search       string
	CategorySlug string
	TagSlugs     []string
	AuthorID     int64
	State        string
	Page         int
	PerPage      int
}

// CreateInput carries the fields accepted when drafting an article.
type CreateInput struct {
	Title         string
	Summary       string
	Content       string
	FeaturedImage string
	CategoryID    *int64
	Tags          []string
}

// UpdateInput carries optional article updates. Nil fields are left
// unchanged; Tags, when present, replaces the full tag set.
type UpdateInput struct {
	Title         *string
	Summary       *string
	Content       *string
	FeaturedImage *string
	CategoryID    *int64
	ClearCategory bool
	Tags          *[]string
}
