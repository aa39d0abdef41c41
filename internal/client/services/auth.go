// Package services contains the application services of the GophStore client.
// This file defines the authentication service: login against the backend,
// logout, and the optional remember-me identity.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/session"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
)

var ErrMissingCredentials = errors.New("company, email and password are required")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and keep the token in memory;
//     with remember set, persist the company id and email for next time.
//   - Logout: drop the token; with forget set, also drop the remembered identity.
//   - Remembered: the identity saved by a previous remember-me login.
type AuthService interface {
	Login(ctx context.Context, companyID, email string, password []byte, remember bool) error
	Logout(ctx context.Context, forget bool) error
	Remembered(ctx context.Context) (companyID, email string, ok bool, err error)
}

type authService struct {
	client  client.Client
	session *session.Session
	logger  logging.Logger
}

func NewAuthService(c client.Client, s *session.Session, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &authService{client: c, session: s, logger: logger}
}

// Login wipes password once the request has been built.
func (a *authService) Login(ctx context.Context, companyID, email string, password []byte, remember bool) error {
	defer common.WipeByteArray(password)

	companyID, email = strings.TrimSpace(companyID), strings.TrimSpace(email)
	if companyID == "" || email == "" || len(password) == 0 {
		return ErrMissingCredentials
	}

	token, err := a.client.Login(ctx, client.LoginRequest{
		IDEmpresa: companyID,
		Email:     email,
		Password:  string(password),
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	a.session.SetAccessToken(token)
	a.logger.Info(ctx, "logged in", "company", companyID, "email", email)

	if remember {
		if err := a.session.Remember(ctx, companyID, email); err != nil {
			a.logger.Warn(ctx, "could not remember login", "error", err)
		}
		return nil
	}
	if err := a.session.Forget(ctx); err != nil {
		a.logger.Warn(ctx, "could not forget login", "error", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context, forget bool) error {
	a.session.ClearAccessToken()
	if forget {
		return a.session.Forget(ctx)
	}
	return nil
}

func (a *authService) Remembered(ctx context.Context) (string, string, bool, error) {
	return a.session.Remembered(ctx)
}
