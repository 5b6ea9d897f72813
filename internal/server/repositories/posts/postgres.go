// Package posts provides a PostgreSQL-backed repository for blog posts.
// Post ids come from the counter repository; they are inserted explicitly
// and never reused.
package posts

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

// Create inserts a post under its pre-assigned id. Run on a transaction
// handle together with the counter increment and the like-record init.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (id, title, body, author_id, author_name, post_date, image_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.Title, post.Body, post.AuthorID, post.AuthorName,
		post.PostDate, nullable(post.ImagePath)).Scan(&post.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

// Get returns a post by id with its like total joined in, or
// common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Post, error) {
	query :=
		`SELECT p.id, p.title, p.body, p.author_id, p.author_name, p.post_date,
		        COALESCE(p.image_path, ''), COALESCE(l.total_likes, 0), p.created_at
		 FROM posts p
		 LEFT JOIN post_likes l ON l.post_id = p.id
		 WHERE p.id = $1
		 `

	post := &models.Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Body, &post.AuthorID, &post.AuthorName,
		&post.PostDate, &post.ImagePath, &post.TotalLikes, &post.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

// List returns a page of posts, newest first, with like totals.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	query :=
		`SELECT p.id, p.title, p.body, p.author_id, p.author_name, p.post_date,
		        COALESCE(p.image_path, ''), COALESCE(l.total_likes, 0), p.created_at
		 FROM posts p
		 LEFT JOIN post_likes l ON l.post_id = p.id
		 ORDER BY p.id DESC
		 LIMIT $1 OFFSET $2
		 `

	return r.scanPosts(r.db.QueryContext(ctx, query, limit, offset))
}

// ListByAuthor returns all posts by one author, newest first.
func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	query :=
		`SELECT p.id, p.title, p.body, p.author_id, p.author_name, p.post_date,
		        COALESCE(p.image_path, ''), COALESCE(l.total_likes, 0), p.created_at
		 FROM posts p
		 LEFT JOIN post_likes l ON l.post_id = p.id
		 WHERE p.author_id = $1
		 ORDER BY p.id DESC
		 `

	return r.scanPosts(r.db.QueryContext(ctx, query, authorID))
}

// Update replaces title, body, date and image reference of a post.
// common.ErrorNotFound if the id does not resolve.
func (r *PostgresRepository) Update(ctx context.Context, post *models.Post) error {
	query :=
		`UPDATE posts SET title = $2, body = $3, post_date = $4, image_path = $5
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Body, post.PostDate, nullable(post.ImagePath))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Delete removes a post by id. The like record and its members go with it
// via ON DELETE CASCADE. common.ErrorNotFound if the id does not resolve.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM posts
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanPosts(rows *sql.Rows, err error) ([]*models.Post, error) {
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		p := &models.Post{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.AuthorID, &p.AuthorName,
			&p.PostDate, &p.ImagePath, &p.TotalLikes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// nullable maps an empty reference string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
