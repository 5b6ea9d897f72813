package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/s2yeji/practice-blog/internal/common"
	"github.com/s2yeji/practice-blog/internal/dbx"
	"github.com/s2yeji/practice-blog/internal/server/models"
	"github.com/s2yeji/practice-blog/internal/server/repositories/repomanager"
)

// PostService implements post lifecycle operations. Creation allocates the
// post id from the shared counter and initializes the like record, all in
// one transaction, so a crash never leaves an id consumed without its post
// or a post without its like record.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewPostService constructs a PostService using repositories.
func NewPostService(db *sql.DB, m repomanager.RepositoryManager) *PostService {
	return &PostService{db: db, repomanager: m}
}

// Create allocates the next post id, inserts the post under it, and seeds
// the empty like record. All three steps share one transaction.
func (s *PostService) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	var created *models.Post
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.repomanager.Counters(tx).Next(ctx)
		if err != nil {
			return fmt.Errorf("error allocating post id: %v", err)
		}
		post.ID = id

		created, err = s.repomanager.Posts(tx).Create(ctx, post)
		if err != nil {
			return fmt.Errorf("error creating post: %v", err)
		}

		if err := s.repomanager.Likes(tx).Init(ctx, id); err != nil {
			return fmt.Errorf("error initializing likes: %v", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a post by id, or common.ErrorNotFound.
func (s *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	return s.repomanager.Posts(s.db).Get(ctx, id)
}

// List returns a page of posts, newest first.
func (s *PostService) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.repomanager.Posts(s.db).List(ctx, limit, offset)
}

// ListByAuthor returns all posts by one author, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return s.repomanager.Posts(s.db).ListByAuthor(ctx, authorID)
}

// Count returns the total number of posts ever created. The figure drives
// pagination and never decreases, even after deletions.
func (s *PostService) Count(ctx context.Context) (int64, error) {
	return s.repomanager.Counters(s.db).Current(ctx)
}

// Update replaces the editable fields of a post owned by editorID. A post
// owned by someone else yields common.ErrorForbidden; an unknown id yields
// common.ErrorNotFound. An empty imagePath keeps the stored image.
func (s *PostService) Update(ctx context.Context, editorID string, post *models.Post) error {
	repo := s.repomanager.Posts(s.db)

	stored, err := repo.Get(ctx, post.ID)
	if err != nil {
		return err
	}
	if stored.AuthorID != editorID {
		return common.ErrorForbidden
	}

	if post.ImagePath == "" {
		post.ImagePath = stored.ImagePath
	}
	return repo.Update(ctx, post)
}

// Delete removes a post owned by requesterID. Ownership rules match Update.
// The like record and comments cascade away with the post.
func (s *PostService) Delete(ctx context.Context, requesterID string, id int64) error {
	repo := s.repomanager.Posts(s.db)

	stored, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if stored.AuthorID != requesterID {
		return common.ErrorForbidden
	}

	err = repo.Delete(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		// lost a race with another delete; the post is gone either way
		return nil
	}
	return err
}
