package domain

import "time"

// Comment is the cascade target for moderation deletes. Replies reference a
// parent comment and are exactly one level deep: a reply never has replies.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	ParentID  string // empty for top-level comments
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsReply reports whether the comment is a reply to another comment.
func (c Comment) IsReply() bool { return c.ParentID != "" }
