// Package repomanager wires the user and refresh token repositories to a
// backing engine. The auth service only sees this interface, so the storage
// engine stays an external collaborator: in-memory for development and
// tests, PostgreSQL for durable deployments.
package repomanager

import (
	"context"

	"github.com/primesecret/authgate/internal/server/repositories/refreshtokens"
	"github.com/primesecret/authgate/internal/server/repositories/users"
)

// Manager exposes the repositories plus an atomic execution scope for
// refresh token rotation (delete-then-create must not partially apply).
type Manager interface {
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository

	// WithinTx runs fn against a refresh token repository bound to a single
	// transaction where the engine supports one. Implementations without
	// transactions run fn against the plain repository; their individual
	// operations are already atomic.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tokens refreshtokens.Repository) error) error

	Close() error
}
