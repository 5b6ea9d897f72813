package models

import "time"

// Post is a blog entry. ID is a sequential integer handed out by the
// counter and never reused. AuthorName is a denormalized copy of the
// author's display name taken at creation time; it is not updated if the
// display name later changes.
type Post struct {
	ID         int64
	Title      string
	Body       string
	AuthorID   string
	AuthorName string
	PostDate   string
	ImagePath  string
	TotalLikes int64
	CreatedAt  time.Time
}
