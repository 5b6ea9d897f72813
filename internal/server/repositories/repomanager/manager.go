package repomanager

import (
	"context"
	"database/sql"

	"github.com/s2yeji/practice-blog/internal/dbx"
	"github.com/s2yeji/practice-blog/internal/server/repositories/comments"
	"github.com/s2yeji/practice-blog/internal/server/repositories/counters"
	"github.com/s2yeji/practice-blog/internal/server/repositories/likes"
	"github.com/s2yeji/practice-blog/internal/server/repositories/posts"
	"github.com/s2yeji/practice-blog/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Counters(db dbx.DBTX) counters.Repository
	Likes(db dbx.DBTX) likes.Repository
	Comments(db dbx.DBTX) comments.Repository
}
