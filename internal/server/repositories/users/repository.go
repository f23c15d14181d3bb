// Package users declares the server-side repository contract for user
// records (the Credential Store).
package users

import (
	"context"

	"github.com/primesecret/authgate/internal/server/models"
)

// Repository defines lookup and insert operations for user records.
type Repository interface {
	// Create stores a new user and assigns its id. A duplicate email yields
	// common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with the given email, or common.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
