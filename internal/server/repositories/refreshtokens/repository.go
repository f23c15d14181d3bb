// Package refreshtokens declares the server-side repository contract for
// refresh tokens (the Token Store).
package refreshtokens

import (
	"context"
	"time"

	"github.com/primesecret/authgate/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and consuming
// refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID expiring at expiresAt.
	// Token values are unique with overwhelming probability; Create never
	// overwrites an existing record.
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// Find looks up a refresh token by its opaque value and returns its
	// metadata, or common.ErrNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its value. It reports whether a
	// record was actually removed, which is what makes rotation single-use:
	// exactly one caller observes deleted=true for a given token value.
	Delete(ctx context.Context, token string) (bool, error)
}
