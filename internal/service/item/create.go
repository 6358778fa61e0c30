package item

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

// Create creates a new item. ADMIN and USER callers always create into
// their own department, whatever the input says; only SUPER_ADMIN may
// place an item elsewhere. An ITEM/CREATE history entry records the
// creation.
func (s *Service) Create(ctx context.Context, input CreateItemInput) (*domain.Item, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	departmentID := trimOrNil(input.DepartmentID)
	if caller.Role != domain.RoleSuperAdmin {
		departmentID = caller.DepartmentID
	}

	now := time.Now().UTC()
	item, err := s.items.Create(ctx, &domain.Item{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Type:         strings.TrimSpace(input.Type),
		DepartmentID: departmentID,
		Version:      domain.DefaultItemVersion,
		Description:  trimOrNil(input.Description),
		CreatedBy:    caller.UserID,
		UpdatedBy:    caller.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	payload, _ := json.Marshal(map[string]string{"name": item.Name, "type": item.Type})
	if _, err := s.history.Append(ctx, &domain.History{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Step:      domain.StepItem,
		FieldName: "item",
		Action:    domain.ActionCreate,
		Payload:   payload,
		ChangedBy: caller.UserID,
	}); err != nil {
		return nil, fmt.Errorf("record item creation: %w", err)
	}

	s.log.InfoContext(ctx, "item created",
		slog.String("item_id", item.ID.String()),
		slog.String("name", item.Name),
		slog.String("created_by", caller.UserID.String()),
	)
	return item, nil
}
