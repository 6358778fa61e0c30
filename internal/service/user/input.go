package user

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
)

const minPasswordLength = 8

// CreateUserInput holds the parameters for creating an account.
// An empty Role defaults to USER.
type CreateUserInput struct {
	Username     string
	Email        string
	Password     string
	Role         domain.Role
	DepartmentID *string
}

// Validate checks all fields and collects all errors.
func (i CreateUserInput) Validate() error {
	var errs []domain.FieldError

	username := strings.TrimSpace(i.Username)
	if username == "" {
		errs = append(errs, domain.FieldError{Field: "username", Message: "required"})
	}
	if len(username) > 50 {
		errs = append(errs, domain.FieldError{Field: "username", Message: "max 50 characters"})
	}

	if _, err := mail.ParseAddress(strings.TrimSpace(i.Email)); err != nil {
		errs = append(errs, domain.FieldError{Field: "email", Message: "must be a valid email address"})
	}

	if len(i.Password) < minPasswordLength {
		errs = append(errs, domain.FieldError{Field: "password", Message: "min 8 characters"})
	}

	if i.Role != "" && !i.Role.IsValid() {
		errs = append(errs, domain.FieldError{Field: "role", Message: "unknown role"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateUserInput holds the parameters for updating an account. Nil
// fields keep their current value.
type UpdateUserInput struct {
	UserID       uuid.UUID
	Email        *string
	Password     *string
	Role         *domain.Role
	DepartmentID *string
}

// Validate checks all fields and collects all errors.
func (i UpdateUserInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.Email != nil {
		if _, err := mail.ParseAddress(strings.TrimSpace(*i.Email)); err != nil {
			errs = append(errs, domain.FieldError{Field: "email", Message: "must be a valid email address"})
		}
	}
	if i.Password != nil && len(*i.Password) < minPasswordLength {
		errs = append(errs, domain.FieldError{Field: "password", Message: "min 8 characters"})
	}
	if i.Role != nil && !i.Role.IsValid() {
		errs = append(errs, domain.FieldError{Field: "role", Message: "unknown role"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
