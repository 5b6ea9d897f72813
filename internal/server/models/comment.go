package models

import "time"

// Comment is an append-only reply to a post. There is no edit or delete
// operation for comments.
type Comment struct {
	ID         int64
	PostID     int64
	Body       string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
}
