// Package session holds the client's authentication state: the current token
// pair, its absolute expiry times, and the owner's email. State transitions
// are atomic, and concurrent renewals collapse into a single server call.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/primesecret/authgate/internal/client/api"
	"github.com/primesecret/authgate/internal/client/repositories/state"
	"github.com/primesecret/authgate/internal/common"
)

// stateKey is the slot in the state repository holding the serialized session.
const stateKey = "session"

// refreshFallback is assumed when the server omits refreshExpiresIn.
const refreshFallback = 7 * 24 * time.Hour

// API is the part of the wire client the session needs.
type API interface {
	Register(ctx context.Context, email, password, name string) (*api.TokenPair, error)
	Login(ctx context.Context, email, password string) (*api.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// data is the persisted shape of the session. All five fields are written and
// cleared together; a partially populated session never exists.
type data struct {
	Email            string    `json:"email"`
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

type Session struct {
	api   API
	store state.Repository
	now   func() time.Time

	mu sync.Mutex
	st data

	renew singleflight.Group
}

func NewSession(a API, store state.Repository) *Session {
	return &Session{api: a, store: store, now: time.Now}
}

// WithNow overrides the session clock; tests use it to simulate expiry.
func (s *Session) WithNow(now func() time.Time) *Session {
	s.now = now
	return s
}

// Restore loads a previously persisted session from the state store. A
// missing or unreadable slot leaves the session unauthenticated.
func (s *Session) Restore(ctx context.Context) error {
	raw, err := s.store.Get(ctx, stateKey)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	var st data
	if err := json.Unmarshal(raw, &st); err != nil {
		// A corrupt slot is dropped, not kept half-parsed.
		return s.store.Delete(ctx, stateKey)
	}

	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
	return nil
}

// Login authenticates with credentials and installs the resulting pair.
func (s *Session) Login(ctx context.Context, email, password string) error {
	pair, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.apply(ctx, email, pair)
}

// Register creates an account and installs the resulting pair.
func (s *Session) Register(ctx context.Context, email, password, name string) error {
	pair, err := s.api.Register(ctx, email, password, name)
	if err != nil {
		return err
	}
	return s.apply(ctx, email, pair)
}

// Renew exchanges the stored refresh token for a fresh pair. Concurrent
// callers share one in-flight renewal: the server sees a single request and
// every caller observes its outcome. A failed renewal, for any reason,
// clears the session wholesale before the error is returned.
func (s *Session) Renew(ctx context.Context) error {
	_, err, _ := s.renew.Do("renew", func() (any, error) {
		s.mu.Lock()
		token := s.st.RefreshToken
		email := s.st.Email
		s.mu.Unlock()

		if token == "" {
			return nil, common.ErrNoRefreshToken
		}

		pair, err := s.api.Refresh(ctx, token)
		if err != nil {
			// Any failure tears the whole session down; a half-dead session
			// must never linger, whatever the cause.
			_ = s.clear(ctx)
			return nil, err
		}

		return nil, s.apply(ctx, email, pair)
	})
	return err
}

// Logout revokes the refresh token server-side (best effort) and always
// clears the local session. It never fails because of the server.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.st.RefreshToken
	s.mu.Unlock()

	if token != "" {
		_ = s.api.Logout(ctx, token)
	}
	return s.clear(ctx)
}

// IsAuthenticated reports whether a session is installed at all, derived
// from the access token being held. It does not check expiry; use
// AccessValid and RefreshValid for that.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.AccessToken != ""
}

// AccessValid reports whether the stored access token is still inside its
// validity window by the session clock.
func (s *Session) AccessValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.AccessToken != "" && s.now().Before(s.st.AccessExpiresAt)
}

// RefreshValid reports whether the stored refresh token is still inside its
// validity window by the session clock.
func (s *Session) RefreshValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.RefreshToken != "" && s.now().Before(s.st.RefreshExpiresAt)
}

func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Email
}

func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.AccessToken
}

// AccessExpiresAt returns the absolute expiry of the current access token.
func (s *Session) AccessExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.AccessExpiresAt
}

// apply installs a token pair, converting relative millisecond lifetimes into
// absolute expiry times on the local clock, and persists the whole slot.
func (s *Session) apply(ctx context.Context, email string, pair *api.TokenPair) error {
	now := s.now()

	refreshIn := time.Duration(pair.RefreshExpiresIn) * time.Millisecond
	if refreshIn == 0 {
		refreshIn = refreshFallback
	}

	st := data{
		Email:            email,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  now.Add(time.Duration(pair.ExpiresIn) * time.Millisecond),
		RefreshExpiresAt: now.Add(refreshIn),
	}

	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.st = st
	s.mu.Unlock()

	return s.store.Set(ctx, stateKey, raw)
}

// clear wipes every session field together and removes the persisted slot.
func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	s.st = data{}
	s.mu.Unlock()

	return s.store.Delete(ctx, stateKey)
}
