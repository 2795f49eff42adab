package users

import "time"

// User is the credential-store record. PasswordHash is the only
// representation of the password at rest. ResetTokenHash and
// ResetTokenExpires are either both set or both nil.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      []byte
	ResetTokenHash    *string
	ResetTokenExpires *time.Time
	CreatedAt         time.Time
	LastLogin         *time.Time
}
