package item

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

// Get returns a single item if the caller may view it.
func (s *Service) Get(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if !s.perm.CanViewItem(caller, item) {
		return nil, domain.ErrForbidden
	}
	return item, nil
}

// GetDetail returns an item with its current stage snapshots, one per
// completed stage.
func (s *Service) GetDetail(ctx context.Context, itemID uuid.UUID) (*ItemDetail, error) {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.snapshots.ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return &ItemDetail{Item: item, Snapshots: snapshots}, nil
}
