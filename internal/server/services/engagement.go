package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/s2yeji/practice-blog/internal/dbx"
	"github.com/s2yeji/practice-blog/internal/server/models"
	"github.com/s2yeji/practice-blog/internal/server/repositories/repomanager"
)

// EngagementService implements likes and comments against posts.
//
// ToggleLike is the interesting part: a like is a toggle keyed on
// membership, and the whole decision runs under a row lock so two
// concurrent toggles by the same user cannot both count.
type EngagementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewEngagementService constructs an EngagementService using repositories.
func NewEngagementService(db *sql.DB, m repomanager.RepositoryManager) *EngagementService {
	return &EngagementService{db: db, repomanager: m}
}

// ToggleLike flips userID's like on a post and returns the resulting record.
// Already a member: remove and decrement. Not a member: add and increment.
// Lock, membership change, and counter adjustment share one transaction, so
// total_likes always equals the member count.
func (s *EngagementService) ToggleLike(ctx context.Context, postID int64, userID string) (*models.LikeRecord, error) {
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Likes(tx)

		if _, err := repo.LockTotal(ctx, postID); err != nil {
			return err
		}

		removed, err := repo.RemoveMember(ctx, postID, userID)
		if err != nil {
			return fmt.Errorf("error removing like member: %v", err)
		}

		delta := int64(1)
		if removed {
			delta = -1
		} else {
			if err := repo.AddMember(ctx, postID, userID); err != nil {
				return fmt.Errorf("error adding like member: %v", err)
			}
		}

		if _, err := repo.IncrementTotal(ctx, postID, delta); err != nil {
			return fmt.Errorf("error adjusting like total: %v", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.repomanager.Likes(s.db).Get(ctx, postID)
}

// GetLikes returns the like record for a post, or common.ErrorNotFound.
func (s *EngagementService) GetLikes(ctx context.Context, postID int64) (*models.LikeRecord, error) {
	return s.repomanager.Likes(s.db).Get(ctx, postID)
}

// AddComment stores a comment against a post.
func (s *EngagementService) AddComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	c, err := s.repomanager.Comments(s.db).Create(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("error creating comment: %v", err)
	}
	return c, nil
}

// ListComments returns all comments for a post, newest first.
func (s *EngagementService) ListComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	return s.repomanager.Comments(s.db).ListByPost(ctx, postID)
}
