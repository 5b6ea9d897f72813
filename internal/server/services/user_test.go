package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/s2yeji/practice-blog/internal/common"
	"github.com/s2yeji/practice-blog/internal/dbx"
	"github.com/s2yeji/practice-blog/internal/server/auth"
	"github.com/s2yeji/practice-blog/internal/server/config"
	"github.com/s2yeji/practice-blog/internal/server/models"
	commentsrepo "github.com/s2yeji/practice-blog/internal/server/repositories/comments"
	countersrepo "github.com/s2yeji/practice-blog/internal/server/repositories/counters"
	likesrepo "github.com/s2yeji/practice-blog/internal/server/repositories/likes"
	postsrepo "github.com/s2yeji/practice-blog/internal/server/repositories/posts"
	"github.com/s2yeji/practice-blog/internal/server/repositories/repomanager"
	usersrepo "github.com/s2yeji/practice-blog/internal/server/repositories/users"
)

// --- helpers shared by the service tests ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeCountersRepo struct {
	next    int64
	nextErr error

	current    int64
	currentErr error
}

func (f *fakeCountersRepo) Next(ctx context.Context) (int64, error) {
	if f.nextErr != nil {
		return 0, f.nextErr
	}
	f.next++
	return f.next, nil
}

func (f *fakeCountersRepo) Current(ctx context.Context) (int64, error) {
	return f.current, f.currentErr
}

type fakePostsRepo struct {
	createErr error
	created   *models.Post

	getOut *models.Post
	getErr error

	listOut []*models.Post
	listErr error

	updateErr error
	updated   *models.Post

	deleteErr error
	deletedID int64
}

func (f *fakePostsRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = p
	return p, nil
}

func (f *fakePostsRepo) Get(ctx context.Context, id int64) (*models.Post, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakePostsRepo) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return f.listOut, f.listErr
}

func (f *fakePostsRepo) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return f.listOut, f.listErr
}

func (f *fakePostsRepo) Update(ctx context.Context, p *models.Post) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = p
	return nil
}

func (f *fakePostsRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = id
	return nil
}

type fakeLikesRepo struct {
	initErr error
	inited  []int64

	getOut *models.LikeRecord
	getErr error

	lockErr error

	member    bool
	removeErr error
	addErr    error

	delta  int64
	incErr error
}

func (f *fakeLikesRepo) Init(ctx context.Context, postID int64) error {
	if f.initErr != nil {
		return f.initErr
	}
	f.inited = append(f.inited, postID)
	return nil
}

func (f *fakeLikesRepo) Get(ctx context.Context, postID int64) (*models.LikeRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeLikesRepo) LockTotal(ctx context.Context, postID int64) (int64, error) {
	if f.lockErr != nil {
		return 0, f.lockErr
	}
	return 0, nil
}

func (f *fakeLikesRepo) AddMember(ctx context.Context, postID int64, userID string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.member = true
	return nil
}

func (f *fakeLikesRepo) RemoveMember(ctx context.Context, postID int64, userID string) (bool, error) {
	if f.removeErr != nil {
		return false, f.removeErr
	}
	was := f.member
	f.member = false
	return was, nil
}

func (f *fakeLikesRepo) IncrementTotal(ctx context.Context, postID int64, delta int64) (int64, error) {
	if f.incErr != nil {
		return 0, f.incErr
	}
	f.delta = delta
	return delta, nil
}

type fakeCommentsRepo struct {
	createErr error

	listOut []*models.Comment
	listErr error
}

func (f *fakeCommentsRepo) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return c, nil
}

func (f *fakeCommentsRepo) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	return f.listOut, f.listErr
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	p  *fakePostsRepo
	cn *fakeCountersRepo
	l  *fakeLikesRepo
	cm *fakeCommentsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository         { return m.u }
func (m *fakeRepoManager) Posts(db dbx.DBTX) postsrepo.Repository         { return m.p }
func (m *fakeRepoManager) Counters(db dbx.DBTX) countersrepo.Repository   { return m.cn }
func (m *fakeRepoManager) Likes(db dbx.DBTX) likesrepo.Repository         { return m.l }
func (m *fakeRepoManager) Comments(db dbx.DBTX) commentsrepo.Repository   { return m.cm }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
	}
	return NewUserService(db, rm, cfg)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	return string(h)
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}}
	s := newUserService(t, db, rm)

	u, err := s.Register(context.Background(), "alice", "Alice", "pw123")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.Login != "alice" || u.UserName != "Alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw123")) != nil {
		t.Fatalf("stored hash does not verify")
	}
}

func TestRegister_DuplicateAndError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rmDup := &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrorAlreadyExists}}
	sDup := newUserService(t, db, rmDup)
	if _, err := sDup.Register(context.Background(), "alice", "Alice", "pw"); !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}

	rmErr := &fakeRepoManager{u: &fakeUsersRepo{createErr: errBoom{}}}
	sErr := newUserService(t, db, rmErr)
	_, err := sErr.Register(context.Background(), "bob", "Bob", "pw")
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRegister_HashError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	orig := bcryptGenerate
	bcryptGenerate = func(password []byte, cost int) ([]byte, error) {
		return nil, errBoom{}
	}
	defer func() { bcryptGenerate = orig }()

	s := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{}})
	if _, err := s.Register(context.Background(), "a", "A", "pw"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

func TestLogin_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	// unknown login stays a not-found, distinct from a bad password
	rmNF := &fakeRepoManager{u: &fakeUsersRepo{getErr: common.ErrorNotFound}}
	if _, _, err := newUserService(t, db, rmNF).Login(context.Background(), "ghost", "x"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("unknown login: want ErrorNotFound, got %v", err)
	}

	rmIE := &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom{}}}
	if _, _, err := newUserService(t, db, rmIE).Login(context.Background(), "u", "x"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("db error: want ErrorInternal, got %v", err)
	}

	hash := mustHash(t, "right")
	rmWP := &fakeRepoManager{u: &fakeUsersRepo{getOut: &models.User{Login: "alice", PasswordHash: hash}}}
	if _, _, err := newUserService(t, db, rmWP).Login(context.Background(), "alice", "wrong"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("wrong password: want ErrorUnauthorized, got %v", err)
	}

	rmOK := &fakeRepoManager{u: &fakeUsersRepo{getOut: &models.User{ID: "u1", Login: "alice", PasswordHash: hash}}}
	token, user, err := newUserService(t, db, rmOK).Login(context.Background(), "alice", "right")
	if err != nil || token == "" || user.ID != "u1" {
		t.Fatalf("Login success: token=%q user=%+v err=%v", token, user, err)
	}

	// the token subject round-trips to the login
	subject, err := auth.GetUserIDFromToken(token, []byte("k"))
	if err != nil || subject != "alice" {
		t.Fatalf("token subject: got (%q, %v)", subject, err)
	}
}

func TestFindByLogin(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{getOut: &models.User{Login: "alice"}}}
	s := newUserService(t, db, rm)
	u, err := s.FindByLogin(context.Background(), "alice")
	if err != nil || u.Login != "alice" {
		t.Fatalf("FindByLogin: got (%+v, %v)", u, err)
	}

	rmNF := &fakeRepoManager{u: &fakeUsersRepo{getErr: common.ErrorNotFound}}
	if _, err := newUserService(t, db, rmNF).FindByLogin(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}

	rmIE := &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom{}}}
	if _, err := newUserService(t, db, rmIE).FindByLogin(context.Background(), "u"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}
