package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an application account.
// Username and email are globally unique. An inactive user must fail
// authentication.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	DepartmentID *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the trusted caller triple resolved from a verified token.
// Every downstream operation receives one; nothing below the transport
// layer touches raw credentials.
type Identity struct {
	UserID       uuid.UUID
	Username     string
	Role         Role
	DepartmentID *string
}

// SameDepartment reports whether the identity and the given department
// belong to the same non-empty department.
func (i Identity) SameDepartment(departmentID *string) bool {
	if i.DepartmentID == nil || departmentID == nil {
		return false
	}
	return *i.DepartmentID == *departmentID
}

// PasswordResetToken is a durable, time-boxed credential for the
// password-reset flow. Expiry is checked on read; the token is removed
// on successful use.
type PasswordResetToken struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the token has expired relative to now.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
