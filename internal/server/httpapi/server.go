// Package httpapi exposes the blog over HTTP: public pages, authenticated
// mutations, and the JSON post feed. Authentication rides on the `token`
// cookie; every route passes through the auth gate middleware.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/s2yeji/practice-blog/internal/logging"
	"github.com/s2yeji/practice-blog/internal/server/blob"
	"github.com/s2yeji/practice-blog/internal/server/config"
	"github.com/s2yeji/practice-blog/internal/server/models"
)

// postsPerPage is the page size of the home feed and the JSON post feed.
const postsPerPage = 6

// UserProvider is the slice of UserService the route surface needs.
type UserProvider interface {
	Register(ctx context.Context, login, userName, password string) (*models.User, error)
	Login(ctx context.Context, login, password string) (string, *models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
}

// PostProvider is the slice of PostService the route surface needs.
type PostProvider interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, editorID string, post *models.Post) error
	Delete(ctx context.Context, requesterID string, id int64) error
}

// EngagementProvider is the slice of EngagementService the route surface
// needs.
type EngagementProvider interface {
	ToggleLike(ctx context.Context, postID int64, userID string) (*models.LikeRecord, error)
	GetLikes(ctx context.Context, postID int64) (*models.LikeRecord, error)
	AddComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]*models.Comment, error)
}

// Server wires the route surface to its collaborators.
type Server struct {
	config     *config.Config
	logger     logging.Logger
	renderer   Renderer
	users      UserProvider
	posts      PostProvider
	engagement EngagementProvider
	blobs      blob.Store
}

// NewServer constructs a Server. The renderer is a collaborator on purpose:
// the handlers decide view name and data bag, nothing else.
func NewServer(cfg *config.Config, logger logging.Logger, renderer Renderer,
	users UserProvider, posts PostProvider, engagement EngagementProvider, blobs blob.Store) *Server {
	return &Server{
		config:     cfg,
		logger:     logger,
		renderer:   renderer,
		users:      users,
		posts:      posts,
		engagement: engagement,
		blobs:      blobs,
	}
}

// Router builds the gorilla/mux router with the auth gate applied to every
// route.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.authGate)

	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/getPosts", s.handleGetPosts).Methods(http.MethodGet)
	r.HandleFunc("/detail/{id}", s.handleDetail).Methods(http.MethodGet)

	r.HandleFunc("/signup", s.handleSignupForm).Methods(http.MethodGet)
	r.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)

	r.HandleFunc("/write", s.handleWriteForm).Methods(http.MethodGet)
	r.HandleFunc("/write", s.handleWrite).Methods(http.MethodPost)
	r.HandleFunc("/edit/{id}", s.handleEditForm).Methods(http.MethodGet)
	r.HandleFunc("/edit", s.handleEdit).Methods(http.MethodPost)
	r.HandleFunc("/delete/{id}", s.handleDelete).Methods(http.MethodPost)

	r.HandleFunc("/personal/{userId}", s.handlePersonal).Methods(http.MethodGet)
	r.HandleFunc("/mypage", s.handleMyPage).Methods(http.MethodGet)

	r.HandleFunc("/like/{id}", s.handleLike).Methods(http.MethodPost)
	r.HandleFunc("/comment/{id}", s.handleComment).Methods(http.MethodPost)

	return r
}
