// Package models contains server-side domain entities.
package models

// User is an account record. IDs are assigned monotonically by the store;
// records are immutable after registration.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
}
