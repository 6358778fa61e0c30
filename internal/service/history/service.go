// Package history exposes the append-only audit trail: who changed
// which field of which item, when, with what payload. Records are never
// updated or deleted; reads are scoped by the caller's tier.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/internal/permission"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

type historyRepo interface {
	Append(ctx context.Context, rec *domain.History) (*domain.History, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.History, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.History, error)
	ListByItemAndStep(ctx context.Context, itemID uuid.UUID, step domain.Step) ([]domain.History, error)
	List(ctx context.Context, filter domain.HistoryFilter) ([]domain.History, error)
}

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
}

// Service provides read access to the audit trail and manual record
// creation for corrections (e.g. rollback markers).
type Service struct {
	history historyRepo
	items   itemRepo
	perm    *permission.Engine
	log     *slog.Logger
}

// NewService creates a new history service.
func NewService(log *slog.Logger, history historyRepo, items itemRepo, perm *permission.Engine) *Service {
	return &Service{
		history: history,
		items:   items,
		perm:    perm,
		log:     log.With("service", "history"),
	}
}

// ListAll returns the audit records visible to the caller across all
// items, scoped the same way item listing is.
func (s *Service) ListAll(ctx context.Context) ([]domain.History, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	records, err := s.history.List(ctx, s.perm.HistoryFilter(caller))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

// ListForItem returns the full audit trail of one item.
func (s *Service) ListForItem(ctx context.Context, itemID uuid.UUID) ([]domain.History, error) {
	if err := s.checkViewable(ctx, itemID); err != nil {
		return nil, err
	}

	records, err := s.history.ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("list item history: %w", err)
	}
	return records, nil
}

// ListForItemAndStep returns one item's audit trail narrowed to a
// single pipeline step.
func (s *Service) ListForItemAndStep(ctx context.Context, itemID uuid.UUID, step domain.Step) ([]domain.History, error) {
	if !step.IsValid() {
		return nil, domain.NewValidationError("step", "unknown step name")
	}
	if err := s.checkViewable(ctx, itemID); err != nil {
		return nil, err
	}

	records, err := s.history.ListByItemAndStep(ctx, itemID, step)
	if err != nil {
		return nil, fmt.Errorf("list item step history: %w", err)
	}
	return records, nil
}

// Get returns one audit record, gated by view access to its item.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.History, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	rec, err := s.history.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get history record: %w", err)
	}

	item, err := s.items.GetByID(ctx, rec.ItemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if !s.perm.CanViewHistory(caller, item) {
		return nil, domain.ErrForbidden
	}
	return rec, nil
}

// Append records a manual audit entry for an item, for correction
// markers outside the normal pipeline flow.
func (s *Service) Append(ctx context.Context, input AppendInput) (*domain.History, error) {
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
	if !s.perm.CanAppendHistory(caller, item) {
		return nil, domain.ErrForbidden
	}

	rec, err := s.history.Append(ctx, &domain.History{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Step:      input.Step,
		FieldName: input.FieldName,
		Action:    input.Action,
		Payload:   input.Payload,
		ChangedBy: caller.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	s.log.InfoContext(ctx, "history record appended",
		slog.String("item_id", item.ID.String()),
		slog.String("step", rec.Step.String()),
		slog.String("action", string(rec.Action)),
	)
	return rec, nil
}

func (s *Service) checkViewable(ctx context.Context, itemID uuid.UUID) error {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if !s.perm.CanViewHistory(caller, item) {
		return domain.ErrForbidden
	}
	return nil
}
