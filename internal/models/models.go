package models

import "time"

// User is a platform account. Exactly one of PasswordHash or DeviceID is
// set: credentialed users log in with a password, anonymous users are keyed
// by a device marker. Usernames are unique among credentialed users only.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Avatar       string    `json:"avatar,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	PasswordHash string    `json:"-"`
	DeviceID     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Anonymous reports whether the user registered through the anonymous
// device flow rather than with credentials.
func (u *User) Anonymous() bool {
	return u.DeviceID != ""
}

// Post is a published article. Images holds ordered "/static/..." references
// to uploaded files; it is stored as a JSON array in the posts table.
type Post struct {
	ID        int       `json:"id"`
	AuthorID  int       `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Author is the display subset of a user embedded in read models.
type Author struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// PostView is the aggregated read model for a post: static fields plus live
// reaction and comment counters, and the viewing user's own reaction flags.
// UserLiked/UserDisliked are both false when there is no viewer or the
// viewer has not reacted.
type PostView struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Images       []string  `json:"images"`
	Author       Author    `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Likes        int       `json:"likes"`
	Dislikes     int       `json:"dislikes"`
	CommentCount int       `json:"comment_count"`
	UserLiked    bool      `json:"user_liked"`
	UserDisliked bool      `json:"user_disliked"`
}

// Comment is append-only; it is never mutated after creation.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	UserID    int       `json:"user_id"`
	User      Author    `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an opaque bearer token bound to a user. Sessions are never
// revoked explicitly; they only expire by timestamp comparison.
type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
