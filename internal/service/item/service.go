// Package item implements label item management: listing and search
// scoped to the caller's tier, creation with forced department
// ownership, updates with version bumps, and deletion.
package item

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/internal/permission"
)

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	Search(ctx context.Context, keyword string, filter domain.ItemFilter) ([]domain.Item, error)
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type snapshotRepo interface {
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.Snapshot, error)
	DeleteByItem(ctx context.Context, itemID uuid.UUID) error
}

type historyRepo interface {
	Append(ctx context.Context, rec *domain.History) (*domain.History, error)
}

// Service provides item management operations. Every operation loads
// the target fresh and runs the permission check before any side
// effect.
type Service struct {
	items     itemRepo
	snapshots snapshotRepo
	history   historyRepo
	perm      *permission.Engine
	log       *slog.Logger
}

// NewService creates a new item service.
func NewService(
	log *slog.Logger,
	items itemRepo,
	snapshots snapshotRepo,
	history historyRepo,
	perm *permission.Engine,
) *Service {
	return &Service{
		items:     items,
		snapshots: snapshots,
		history:   history,
		perm:      perm,
		log:       log.With("service", "item"),
	}
}

// ItemDetail is an item together with its current stage snapshots.
type ItemDetail struct {
	Item      *domain.Item
	Snapshots []domain.Snapshot
}

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
