package guard

import (
	"context"

	"github.com/primesecret/authgate/internal/client/session"
)

// Outcome is the route guard's decision for a protected screen.
type Outcome int

const (
	// Proceed lets the navigation continue.
	Proceed Outcome = iota

	// RedirectLanding sends the visitor to the landing screen; the attempted
	// destination stays in history.
	RedirectLanding

	// RedirectLandingReplace sends the visitor to the landing screen and
	// replaces the current history entry, so going back cannot re-enter the
	// dead session.
	RedirectLandingReplace
)

// Route decides whether a protected destination may open.
//
// An unauthenticated visitor is redirected outright. A session whose refresh
// token has lapsed is torn down first, then redirected with history
// replacement. A stale access token with a live refresh token is renewed
// inline, sharing the in-flight renewal with any concurrent request guard
// retry, and navigation continues only if that renewal succeeds.
func Route(ctx context.Context, s *session.Session) Outcome {
	if !s.IsAuthenticated() {
		return RedirectLanding
	}

	if !s.RefreshValid() {
		_ = s.Logout(ctx)
		return RedirectLandingReplace
	}

	if s.AccessValid() {
		return Proceed
	}

	if err := s.Renew(ctx); err != nil {
		_ = s.Logout(ctx)
		return RedirectLandingReplace
	}
	return Proceed
}
