package item

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

// Delete removes an item and its stage snapshots. The deletion is
// recorded first, so the ITEM/DELETE entry remains the terminal record
// of the item's audit trail.
func (s *Service) Delete(ctx context.Context, itemID uuid.UUID) error {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if !s.perm.CanDeleteItem(caller, item) {
		return domain.ErrForbidden
	}

	if _, err := s.history.Append(ctx, &domain.History{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Step:      domain.StepItem,
		FieldName: "item",
		Action:    domain.ActionDelete,
		ChangedBy: caller.UserID,
	}); err != nil {
		return fmt.Errorf("record item deletion: %w", err)
	}

	if err := s.snapshots.DeleteByItem(ctx, itemID); err != nil {
		return fmt.Errorf("delete item snapshots: %w", err)
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.log.InfoContext(ctx, "item deleted",
		slog.String("item_id", itemID.String()),
		slog.String("deleted_by", caller.UserID.String()),
	)
	return nil
}
