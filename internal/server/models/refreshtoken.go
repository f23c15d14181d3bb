package models

import "time"

// RefreshToken is a stored refresh token record. The token string itself is
// the key; at most one live record exists per token value. A record is
// removed on logout, on expiry detection, and on rotation.
type RefreshToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}
