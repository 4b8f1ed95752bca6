package activity

import "time"

// Action kinds recorded in the activity log.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionRegister       = "register"
	ActionPasswordChange = "password_change"
	ActionProfileUpdate  = "profile_update"
	ActionAccountDelete  = "account_delete"
	ActionArticleCreate  = "article_create"
	ActionArticleUpdate  = "article_update"
	ActionArticleDelete  = "article_delete"
	ActionCommentCreate  = "comment_create"
	ActionCommentDelete  = "comment_delete"
)

// Record is one immutable activity log entry. Records are created only,
// never mutated or deleted through the API.
type Record struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Action    string         `json:"action"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListFilters narrows the admin activity listing.
type ListFilters struct {
	UserID  int64
	Action  string
	Page    int
	PerPage int
}
