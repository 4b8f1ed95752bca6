package bookmarks

import "time"

// Bookmark marks an article for later reading. Bookmarks are private:
// every query is bound to the owning user, with no administrative
// override.
type Bookmark struct {
	ID           int64     `json:"id"`
	ArticleID    int64     `json:"article_id"`
	ArticleSlug  string    `json:"article_slug,omitempty"`
	ArticleTitle string    `json:"article_title,omitempty"`
	UserID       int64     `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}
