package history

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
)

// AppendInput holds the parameters for a manual audit entry.
type AppendInput struct {
	ItemID    uuid.UUID
	Step      domain.Step
	FieldName string
	Action    domain.ActionType
	Payload   json.RawMessage
}

// Validate checks all fields and collects all errors.
func (i AppendInput) Validate() error {
	var errs []domain.FieldError

	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if !i.Step.IsValid() {
		errs = append(errs, domain.FieldError{Field: "step", Message: "unknown step name"})
	}
	if i.Action == "" {
		errs = append(errs, domain.FieldError{Field: "action", Message: "required"})
	}
	if i.Payload != nil && !json.Valid(i.Payload) {
		errs = append(errs, domain.FieldError{Field: "payload", Message: "must be valid json"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
