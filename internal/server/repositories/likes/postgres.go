// Package likes provides a PostgreSQL-backed repository for per-post like
// records: a total counter plus the set of users who liked the post.
//
// The toggle flow locks the counter row first (LockTotal), so concurrent
// toggles against the same post serialize instead of losing updates. All
// mutation methods are meant to run on a transaction handle.
package likes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/s2yeji/practice-blog/internal/common"
	"github.com/s2yeji/practice-blog/internal/dbx"
	"github.com/s2yeji/practice-blog/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Init creates the like record for a freshly created post: zero total,
// empty member set. Called inside the post-creation transaction.
func (r *PostgresRepository) Init(ctx context.Context, postID int64) error {
	query :=
		`INSERT INTO post_likes (post_id, total_likes)
		 VALUES ($1, 0)
		 `

	if _, err := r.db.ExecContext(ctx, query, postID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the like record with its member set, ordered by when each
// user liked the post. common.ErrorNotFound if no record exists.
func (r *PostgresRepository) Get(ctx context.Context, postID int64) (*models.LikeRecord, error) {
	query :=
		`SELECT total_likes FROM post_likes
		 WHERE post_id = $1
		 `

	rec := &models.LikeRecord{PostID: postID}
	err := r.db.QueryRowContext(ctx, query, postID).Scan(&rec.TotalLikes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	membersQuery :=
		`SELECT user_id FROM post_like_members
		 WHERE post_id = $1
		 ORDER BY liked_at
		 `

	rows, err := r.db.QueryContext(ctx, membersQuery, postID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rec.Members = append(rec.Members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

// LockTotal takes a row lock on the like record and returns the current
// total. common.ErrorNotFound if no record exists for postID.
func (r *PostgresRepository) LockTotal(ctx context.Context, postID int64) (int64, error) {
	query :=
		`SELECT total_likes FROM post_likes
		 WHERE post_id = $1
		 FOR UPDATE
		 `

	var total int64
	err := r.db.QueryRowContext(ctx, query, postID).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

// AddMember records that userID liked the post.
func (r *PostgresRepository) AddMember(ctx context.Context, postID int64, userID string) error {
	query :=
		`INSERT INTO post_like_members (post_id, user_id)
		 VALUES ($1, $2)
		 `

	if _, err := r.db.ExecContext(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RemoveMember removes userID from the member set and reports whether a
// membership row was actually deleted.
func (r *PostgresRepository) RemoveMember(ctx context.Context, postID int64, userID string) (bool, error) {
	query :=
		`DELETE FROM post_like_members
		 WHERE post_id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}

// IncrementTotal adjusts the like counter by delta and returns the new
// total.
func (r *PostgresRepository) IncrementTotal(ctx context.Context, postID int64, delta int64) (int64, error) {
	query :=
		`UPDATE post_likes SET total_likes = total_likes + $2
		 WHERE post_id = $1
		 RETURNING total_likes
		 `

	var total int64
	err := r.db.QueryRowContext(ctx, query, postID, delta).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}
