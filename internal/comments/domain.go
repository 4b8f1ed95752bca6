package comments

import (
	"time"

	"github.com/pulse-news/pulse/internal/authz"
)

// Comment is one discussion entry under an article. Deleting a comment
// flips Active off instead of removing the row, so threads keep their
// shape.
type Comment struct {
	ID         int64      `json:"id"`
	ArticleID  int64      `json:"article_id"`
	AuthorID   *int64     `json:"author_id"`
	AuthorName string     `json:"author_name,omitempty"`
	ParentID   *int64     `json:"parent_id,omitempty"`
	Content    string     `json:"content"`
	Active     bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Replies    []*Comment `json:"replies,omitempty"`
}

// Resource converts the comment into its evaluator representation.
func (c Comment) Resource() authz.Resource {
	return authz.CommentResource(c.ID, c.AuthorID, c.Active)
}

// Thread assembles a flat, chronologically ordered comment list into
// top-level comments with nested replies. Replies whose parent is not
// in the list surface at the top level rather than disappear.
func Thread(flat []Comment) []*Comment {
	byID := make(map[int64]*Comment, len(flat))
	nodes := make([]*Comment, len(flat))
	for i := range flat {
		node := flat[i]
		nodes[i] = &node
		byID[node.ID] = nodes[i]
	}
	var roots []*Comment
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := byID[*node.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
