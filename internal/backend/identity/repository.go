// Package identity implements the backend identity capability: registration,
// credential checks, session tokens, and the auth-state event stream.
package identity

import (
	"context"
	"time"
)

// User is one stored account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository is the persistence surface for accounts.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
