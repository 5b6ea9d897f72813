// Package services contains server-side business logic. This file implements
// UserService: registration, credential verification, and session token
// issuance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/s2yeji/practice-blog/internal/common"
	"github.com/s2yeji/practice-blog/internal/server/auth"
	"github.com/s2yeji/practice-blog/internal/server/config"
	"github.com/s2yeji/practice-blog/internal/server/models"
	"github.com/s2yeji/practice-blog/internal/server/repositories/repomanager"
)

// UserService provides authentication-related operations:
// - Register: create users with hashed passwords
// - Login: verify credentials and mint a session token
// - FindByID / FindByLogin: resolve stored users for the auth gate
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// bcryptGenerate is a seam for testing hash failures.
var bcryptGenerate = bcrypt.GenerateFromPassword

// Register creates a new user with the given login, display name, and
// password. The password is stored only as a bcrypt hash. A login that is
// already taken yields common.ErrorAlreadyExists from the repository.
func (s *UserService) Register(ctx context.Context, login, userName, password string) (*models.User, error) {
	hash, err := bcryptGenerate([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{Login: login, UserName: userName, PasswordHash: string(hash)}
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}
	return u, nil
}

// Login verifies the password against the stored hash and, on success,
// returns a signed session token together with the stored user. An unknown
// login yields common.ErrorNotFound; a wrong password yields
// common.ErrorUnauthorized. The two are distinct on purpose so the route
// surface can answer 404 and 401 respectively.
func (s *UserService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorNotFound
		}
		return "", nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.Login, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrorInternal
	}
	return token, user, nil
}

// FindByLogin resolves a stored user by login. The auth gate uses it to turn
// a verified token subject back into a user record.
func (s *UserService) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}
