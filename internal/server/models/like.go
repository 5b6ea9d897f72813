package models

// LikeRecord tracks engagement for a single post. TotalLikes always equals
// len(Members); a user appears in Members at most once.
type LikeRecord struct {
	PostID     int64
	TotalLikes int64
	Members    []string
}

// Liked reports whether userID is in the member set.
func (l *LikeRecord) Liked(userID string) bool {
	for _, m := range l.Members {
		if m == userID {
			return true
		}
	}
	return false
}
