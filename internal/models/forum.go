package models

import "time"

// Visibility controls which account roles may read and post in a forum section
type Visibility string

const (
	VisibilityGuardiansOnly Visibility = "guardians_only"
	VisibilityMinorsOnly    Visibility = "minors_only"
	VisibilityBoth          Visibility = "both"
)

// Allows reports whether an account with the given role may access a section
// with this visibility.
func (v Visibility) Allows(role Role) bool {
	switch v {
	case VisibilityGuardiansOnly:
		return role == RoleGuardian
	case VisibilityMinorsOnly:
		return role.IsMinor()
	case VisibilityBoth:
		return role == RoleGuardian || role.IsMinor()
	default:
		return false
	}
}

// ForumSection is a top-level discussion area
type ForumSection struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ForumPost is a thread inside a section
type ForumPost struct {
	ID         int64     `json:"id"`
	SectionID  int64     `json:"sectionId"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ForumReply is a reply inside a post
type ForumReply struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"postId"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}
