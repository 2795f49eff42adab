package users

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts the user and fills in ID and CreatedAt. A duplicate
	// email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByEmail looks a user up by lowercase email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID looks a user up by identifier.
	GetByID(ctx context.Context, id string) (*User, error)

	// UpdateLastLogin stamps the last successful authentication time.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// SetResetToken stores the hashed reset token and its expiry.
	SetResetToken(ctx context.Context, id string, tokenHash string, expires time.Time) error

	// ClearResetToken removes any pending reset token.
	ClearResetToken(ctx context.Context, id string) error

	// GetByResetTokenHash finds the user holding the given hashed token
	// whose expiry is still after now. Expired or unknown tokens yield
	// common.ErrorNotFound.
	GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*User, error)

	// ResetPassword replaces the password hash and clears both reset
	// fields in a single statement.
	ResetPassword(ctx context.Context, id string, passwordHash []byte) error
}
