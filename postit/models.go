// Package postit defines the Post It domain model: users, their roles and
// restrictions, and the posts they submit for moderation.
package postit

import "time"

// Role defines a user's access level.
type Role string

const (
	RoleUser  Role = "user"
	RoleMod   Role = "mod"
	RoleAdmin Role = "admin"
)

// CanModerate reports whether the role may act on other users' posts.
func (r Role) CanModerate() bool {
	return r == RoleMod || r == RoleAdmin
}

// Promoted returns the next role up, or "" when there is no promotion from
// the current role. Admins are created out of band, never by promotion.
func (r Role) Promoted() Role {
	if r == RoleUser {
		return RoleMod
	}
	return ""
}

// Demoted returns the next role down, or "" when there is no demotion.
func (r Role) Demoted() Role {
	if r == RoleMod {
		return RoleUser
	}
	return ""
}

// PostStatus tracks a post through moderation.
type PostStatus string

const (
	StatusPending  PostStatus = "pending"
	StatusApproved PostStatus = "approved"
	StatusRejected PostStatus = "rejected"
)

// ValidStatus reports whether s is a known post status.
func ValidStatus(s PostStatus) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// User is an account. Password holds the bcrypt hash, never the plaintext;
// handlers blank it before a user ever crosses the API boundary.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Password     string    `json:"password,omitempty"`
	IsFirstTime  bool      `json:"isFirstTime"`
	Role         Role      `json:"role"`
	IsRestricted bool      `json:"isRestricted"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Attachment is an image or text file attached to a post. Upload and
// storage of the binary itself is handled by an external service; posts
// only carry the reference.
type Attachment struct {
	Type string `json:"type"`
	URL  string `json:"url"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LinkMetadata is the preview extracted for a link embedded in a post.
type LinkMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url"`
	IsVisible   bool   `json:"isVisible"`
}

// Post is a submitted micro-post. New posts start in the status the
// profanity screen assigns; moderators move them to approved or rejected.
type Post struct {
	ID          string        `json:"id"`
	Content     string        `json:"content"`
	Metadata    *LinkMetadata `json:"metadata"`
	Attachments []Attachment  `json:"attachments"`
	Status      PostStatus    `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	AuthorID    string        `json:"authorId"`
}
