// Package session holds the signed-in state and user preferences of the
// client. The access token lives in memory only; preferences and the
// remember-me fields are persisted through the metadata repository.
package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultLanguage = "es"

	rememberCompanyKey = "remember.company"
	rememberEmailKey   = "remember.email"
)

var ErrInvalidLanguage = errors.New("language must look like \"es\" or \"en-us\"")

var languagePattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)

// Config is the persisted preference set.
type Config struct {
	DarkMode bool   `json:"darkMode"`
	Language string `json:"language"`
}

// DefaultConfig is used until something was persisted.
func DefaultConfig() Config {
	return Config{Language: DefaultLanguage}
}

type stored struct {
	Config Config `json:"config"`
}

// Session is safe for concurrent use.
type Session struct {
	repo   metadata.Repository
	logger logging.Logger
	now    func() time.Time

	mu     sync.RWMutex
	token  string
	config Config
}

func New(repo metadata.Repository, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{repo: repo, logger: logger, now: time.Now, config: DefaultConfig()}
}

// Load restores persisted preferences. A missing or unreadable blob leaves
// the defaults in place; only repository failures are returned.
func (s *Session) Load(ctx context.Context) error {
	var st stored
	err := metadata.GetJSON(ctx, s.repo, common.PreferenceStorageKey, &st)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return nil
	case errors.Is(err, metadata.ErrCorruptValue):
		s.logger.Warn(ctx, "ignoring unreadable preferences", "error", err)
		return nil
	case err != nil:
		return err
	}
	if st.Config.Language == "" {
		st.Config.Language = DefaultLanguage
	}
	s.mu.Lock()
	s.config = st.Config
	s.mu.Unlock()
	return nil
}

// AccessToken implements client.TokenSource.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetAccessToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) ClearAccessToken() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Authenticated reports whether a token is held and, when it carries an exp
// claim, has not expired. Opaque tokens count as valid.
func (s *Session) Authenticated() bool {
	tok := s.AccessToken()
	if tok == "" {
		return false
	}
	exp, ok := TokenExpiry(tok)
	return !ok || s.now().Before(exp)
}

// TokenExpiry reads the exp claim without verifying the signature; the
// backend remains the authority on validity.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// ToggleDarkMode flips and persists the dark-mode preference.
func (s *Session) ToggleDarkMode(ctx context.Context) (bool, error) {
	cfg := s.Config()
	cfg.DarkMode = !cfg.DarkMode
	if err := s.UpdateConfig(ctx, cfg); err != nil {
		return !cfg.DarkMode, err
	}
	return cfg.DarkMode, nil
}

// UpdateConfig validates, applies and persists cfg. In-memory state is only
// changed once the write succeeded.
func (s *Session) UpdateConfig(ctx context.Context, cfg Config) error {
	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	if !languagePattern.MatchString(cfg.Language) {
		return ErrInvalidLanguage
	}
	if err := metadata.SetJSON(ctx, s.repo, common.PreferenceStorageKey, stored{Config: cfg}); err != nil {
		return fmt.Errorf("persist preferences: %w", err)
	}
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	return nil
}

// Remember stores the login identity (never the password or token).
func (s *Session) Remember(ctx context.Context, companyID, email string) error {
	if err := s.repo.Set(ctx, rememberCompanyKey, []byte(companyID)); err != nil {
		return err
	}
	return s.repo.Set(ctx, rememberEmailKey, []byte(email))
}

// Remembered returns the stored login identity, if any.
func (s *Session) Remembered(ctx context.Context) (companyID, email string, ok bool, err error) {
	c, err := s.repo.Get(ctx, rememberCompanyKey)
	if errors.Is(err, common.ErrorNotFound) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	e, err := s.repo.Get(ctx, rememberEmailKey)
	if errors.Is(err, common.ErrorNotFound) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	return string(c), string(e), true, nil
}

// Forget drops the stored login identity.
func (s *Session) Forget(ctx context.Context) error {
	return s.repo.Delete(ctx, rememberCompanyKey, rememberEmailKey)
}
