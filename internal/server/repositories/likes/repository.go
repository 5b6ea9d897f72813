package likes

import (
	"context"

	"github.com/s2yeji/practice-blog/internal/server/models"
)

type Repository interface {
	Init(ctx context.Context, postID int64) error
	Get(ctx context.Context, postID int64) (*models.LikeRecord, error)
	LockTotal(ctx context.Context, postID int64) (int64, error)
	AddMember(ctx context.Context, postID int64, userID string) error
	RemoveMember(ctx context.Context, postID int64, userID string) (bool, error)
	IncrementTotal(ctx context.Context, postID int64, delta int64) (int64, error)
}
