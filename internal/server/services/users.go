// Package services contains server-side business logic. This file implements
// UserService, which checks storefront credentials and issues access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/repomanager"
)

// UserService provides authentication-related operations:
// - Login: verify credentials and mint an access token
// - EnsureUser: create a user unless one with the same email exists
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenTTL,
	}
}

// Login verifies email and password within companyID and returns a signed
// access token. Unknown users and wrong passwords both yield
// common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, companyID int64, email string, password []byte) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, companyID, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// compare anyway so a missing user costs as much as a wrong password
			_, _ = auth.CheckPassword(s.getDummyHash(), password)
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return "", common.ErrorInternal
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.CompanyID, user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// EnsureUser returns the user with email in companyID, creating it with
// password when absent. An existing user's password is left untouched.
func (s *UserService) EnsureUser(ctx context.Context, companyID int64, email string, password []byte) (*models.User, bool, error) {
	email = strings.TrimSpace(email)
	if companyID == 0 || email == "" || len(password) == 0 {
		return nil, false, fmt.Errorf("%w: company, email and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, companyID, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("error hashing password: %w", err)
	}
	user, err = repo.Create(ctx, &models.User{CompanyID: companyID, Email: email, PasswordHash: hash})
	if err != nil {
		return nil, false, fmt.Errorf("error creating user: %w", err)
	}
	return user, true, nil
}

func (s *UserService) getDummyHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword([]byte("gophstore-dummy-password"))
	})
	return s.dummyHash
}
