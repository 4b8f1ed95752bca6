package users

import "time"

// User represents a platform account. PasswordHash never leaves the
// service layer.
type User struct {
	ID                 int64      `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	FirstName          string     `json:"first_name,omitempty"`
	LastName           string     `json:"last_name,omitempty"`
	Bio                string     `json:"bio,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Role               *string    `json:"role"`
	Staff              bool       `json:"is_staff"`
	Superuser          bool       `json:"is_superuser"`
	Active             bool       `json:"is_active"`
	Verified           bool       `json:"is_verified"`
	EmailNotifications bool       `json:"email_notifications"`
	LastLoginIP        string     `json:"-"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ProfilePatch carries optional profile updates. Nil fields are left
// unchanged.
type ProfilePatch struct {
	FirstName          *string
	LastName           *string
	Bio                *string
	Phone              *string
	EmailNotifications *bool
}
