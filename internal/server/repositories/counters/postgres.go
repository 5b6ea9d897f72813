// Package counters manages the singleton post counter. Post ids are handed
// out from here and never reused, even after a post is deleted.
package counters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/s2yeji/practice-blog/internal/common"
	"github.com/s2yeji/practice-blog/internal/dbx"
)

// counterName identifies the singleton row seeded by the init migration.
const counterName = "counter"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Next increments the stored counter and returns the new value as the id
// for the post being created. The increment is a single UPDATE ...
// RETURNING statement, so concurrent callers never observe the same id.
// Run it on a transaction handle to make the handout atomic with the post
// insert. Returns common.ErrCounterUninitialized if the row was never
// seeded.
func (r *PostgresRepository) Next(ctx context.Context) (int64, error) {
	query :=
		`UPDATE counter SET total_posts = total_posts + 1
		 WHERE name = $1
		 RETURNING total_posts
		 `

	var next int64
	err := r.db.QueryRowContext(ctx, query, counterName).Scan(&next)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrCounterUninitialized
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return next, nil
}

// Current returns the last-assigned post id without consuming one.
func (r *PostgresRepository) Current(ctx context.Context) (int64, error) {
	query :=
		`SELECT total_posts FROM counter
		 WHERE name = $1
		 `

	var current int64
	err := r.db.QueryRowContext(ctx, query, counterName).Scan(&current)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrCounterUninitialized
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return current, nil
}
