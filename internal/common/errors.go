// Package common defines shared constants and sentinel errors used across
// the client and server layers of Authgate. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Registration / login errors.
	ErrValidation         = errors.New("email and password are required")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Refresh token lifecycle errors.
	ErrInvalidToken   = errors.New("invalid refresh token")
	ErrTokenExpired   = errors.New("refresh token expired")
	ErrNoRefreshToken = errors.New("no refresh token")
)
