package reactions

import "time"

// Reaction values.
const (
	ValueLike    = "like"
	ValueDislike = "dislike"
)

// ValidValue reports whether the value is a known reaction kind.
func ValidValue(v string) bool {
	return v == ValueLike || v == ValueDislike
}

// Reaction is one user's verdict on an article. A user holds at most
// one reaction per article.
type Reaction struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	UserID    int64     `json:"user_id"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is the aggregate view returned with an article's reactions.
// Mine is empty for anonymous callers and users who have not reacted.
type Summary struct {
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
	Mine     string `json:"mine,omitempty"`
}
