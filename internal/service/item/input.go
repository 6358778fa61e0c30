package item

import (
	"strings"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
)

// CreateItemInput holds the parameters for creating an item.
// DepartmentID is honored for SUPER_ADMIN callers only; everyone else
// creates into their own department.
type CreateItemInput struct {
	Name         string
	Type         string
	Description  *string
	DepartmentID *string
}

// Validate checks all fields and collects all errors.
func (i CreateItemInput) Validate() error {
	var errs []domain.FieldError

	name := strings.TrimSpace(i.Name)
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(name) > 200 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "max 200 characters"})
	}
	if strings.TrimSpace(i.Type) == "" {
		errs = append(errs, domain.FieldError{Field: "type", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateItemInput holds the parameters for updating an item. Nil fields
// keep their current value.
type UpdateItemInput struct {
	ItemID      uuid.UUID
	Name        *string
	Type        *string
	Description *string
}

// Validate checks all fields and collects all errors.
func (i UpdateItemInput) Validate() error {
	var errs []domain.FieldError

	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if i.Name != nil && strings.TrimSpace(*i.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "must not be blank"})
	}
	if i.Name != nil && len(strings.TrimSpace(*i.Name)) > 200 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "max 200 characters"})
	}
	if i.Type != nil && strings.TrimSpace(*i.Type) == "" {
		errs = append(errs, domain.FieldError{Field: "type", Message: "must not be blank"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
