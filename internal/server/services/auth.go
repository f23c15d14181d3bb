// Package services contains server-side business logic. This file implements
// AuthService: registration, login, issuing token pairs, single-use refresh
// token rotation, and logout.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/primesecret/authgate/internal/common"
	"github.com/primesecret/authgate/internal/server/auth"
	"github.com/primesecret/authgate/internal/server/config"
	"github.com/primesecret/authgate/internal/server/models"
	"github.com/primesecret/authgate/internal/server/repositories/refreshtokens"
	"github.com/primesecret/authgate/internal/server/repositories/repomanager"
)

// TokenPair is the result of issuing or rotating tokens. ExpiresIn and
// RefreshExpiresIn are reported in milliseconds; clients compute absolute
// expiry against their own clock.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	ExpiresIn        int64
	RefreshExpiresIn int64
}

// AuthService provides the token lifecycle operations:
//   - Register / Login: authenticate and mint a token pair
//   - Refresh: consume a refresh token (single-use) and mint a new pair
//   - Logout: revoke a refresh token, best-effort
type AuthService struct {
	repos           repomanager.Manager
	secretKey       []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
	now             func() time.Time
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(m repomanager.Manager, cfg *config.Config) *AuthService {
	return &AuthService{
		repos:           m,
		secretKey:       []byte(cfg.SecretKey),
		accessValidity:  cfg.AccessTokenValidity,
		refreshValidity: cfg.RefreshTokenValidity,
		now:             time.Now,
	}
}

// WithNow overrides the service clock; tests use it to simulate expiry.
func (s *AuthService) WithNow(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates a new user and mints its first token pair. The display
// name defaults to the local part of the email when omitted.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*TokenPair, error) {
	if email == "" || password == "" {
		return nil, common.ErrValidation
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repos.Users().Create(ctx, &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	})
	if err != nil {
		return nil, err
	}

	return s.issuePair(ctx, s.repos.RefreshTokens(), user.ID, user.Email)
}

// Login verifies credentials and mints a token pair. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if email == "" || password == "" {
		return nil, common.ErrValidation
	}

	user, err := s.repos.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	return s.issuePair(ctx, s.repos.RefreshTokens(), user.ID, user.Email)
}

// Refresh consumes presentedToken and mints a fresh pair for its owner.
//
// The presented record is deleted before the new pair is created: rotation is
// irreversible, and a second call with the same token fails with
// ErrInvalidToken even inside the original validity window. An expired record
// is deleted on detection so the store does not accumulate dead rows.
func (s *AuthService) Refresh(ctx context.Context, presentedToken string) (*TokenPair, error) {
	rec, err := s.repos.RefreshTokens().Find(ctx, presentedToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrInternal
	}

	if s.now().After(rec.ExpiresAt) {
		if _, err := s.repos.RefreshTokens().Delete(ctx, presentedToken); err != nil {
			return nil, common.ErrInternal
		}
		return nil, common.ErrTokenExpired
	}

	// The rotated access token carries the owner's email when the user row
	// still exists; a vanished row is not an error here.
	email := ""
	if user, err := s.repos.Users().GetByID(ctx, rec.UserID); err == nil {
		email = user.Email
	}

	var pair *TokenPair
	err = s.repos.WithinTx(ctx, func(ctx context.Context, tokens refreshtokens.Repository) error {
		deleted, err := tokens.Delete(ctx, presentedToken)
		if err != nil {
			return err
		}
		if !deleted {
			// Another renewal consumed the record between Find and here.
			return common.ErrInvalidToken
		}
		pair, err = s.issuePair(ctx, tokens, rec.UserID, email)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrInternal
	}
	return pair, nil
}

// Logout revokes the given refresh token. Missing or unknown tokens are a
// no-op; logout is idempotent and never fails from the caller's perspective.
// The returned error is informational only (callers log it, nothing more).
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	_, err := s.repos.RefreshTokens().Delete(ctx, refreshToken)
	return err
}

// EnsureUser creates a user when absent; used to seed development accounts.
// No token pair is issued.
func (s *AuthService) EnsureUser(ctx context.Context, email, password, name string) error {
	if _, err := s.repos.Users().GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.repos.Users().Create(ctx, &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	})
	return err
}

// issuePair mints a new access token and refresh token for the owner,
// persists the refresh record, and reports both lifetimes in milliseconds.
func (s *AuthService) issuePair(ctx context.Context, tokens refreshtokens.Repository, userID int64, email string) (*TokenPair, error) {
	issuedAt := s.now()

	access, err := auth.GenerateToken(userID, email, s.secretKey, issuedAt.Add(s.accessValidity))
	if err != nil {
		return nil, common.ErrInternal
	}

	refresh := uuid.NewString()
	if err := tokens.Create(ctx, userID, refresh, issuedAt.Add(s.refreshValidity)); err != nil {
		return nil, common.ErrInternal
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        common.TokenTypeBearer,
		ExpiresIn:        s.accessValidity.Milliseconds(),
		RefreshExpiresIn: s.refreshValidity.Milliseconds(),
	}, nil
}
