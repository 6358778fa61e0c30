package item

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

// Update modifies an item's metadata. Nil input fields keep the current
// value. Every successful update bumps the patch version and appends an
// ITEM/UPDATE history entry.
func (s *Service) Update(ctx context.Context, input UpdateItemInput) (*domain.Item, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if !s.perm.CanEditItem(caller, item) {
		return nil, domain.ErrForbidden
	}

	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		item.Type = strings.TrimSpace(*input.Type)
	}
	if input.Description != nil {
		item.Description = trimOrNil(input.Description)
	}
	item.Version = domain.BumpPatchVersion(item.Version)
	item.UpdatedBy = caller.UserID

	updated, err := s.items.Update(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	payload, _ := json.Marshal(map[string]string{"name": updated.Name, "version": updated.Version})
	if _, err := s.history.Append(ctx, &domain.History{
		ID:        uuid.New(),
		ItemID:    updated.ID,
		Step:      domain.StepItem,
		FieldName: "item",
		Action:    domain.ActionUpdate,
		Payload:   payload,
		ChangedBy: caller.UserID,
	}); err != nil {
		return nil, fmt.Errorf("record item update: %w", err)
	}

	s.log.InfoContext(ctx, "item updated",
		slog.String("item_id", updated.ID.String()),
		slog.String("version", updated.Version),
		slog.String("updated_by", caller.UserID.String()),
	)
	return updated, nil
}
