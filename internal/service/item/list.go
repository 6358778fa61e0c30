package item

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

// List returns the items visible to the caller: everything for
// SUPER_ADMIN, the caller's department for ADMIN, the caller's own
// items for USER.
func (s *Service) List(ctx context.Context) ([]domain.Item, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	items, err := s.items.List(ctx, s.perm.ItemsFilter(caller))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	s.log.InfoContext(ctx, "items listed",
		slog.String("user_id", caller.UserID.String()),
		slog.String("role", caller.Role.String()),
		slog.Int("count", len(items)),
	)
	return items, nil
}

// Search returns visible items whose name or description matches the
// keyword. The permission scope applies the same way as in List.
func (s *Service) Search(ctx context.Context, keyword string) ([]domain.Item, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.List(ctx)
	}

	items, err := s.items.Search(ctx, keyword, s.perm.ItemsFilter(caller))
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}

	s.log.InfoContext(ctx, "items searched",
		slog.String("user_id", caller.UserID.String()),
		slog.String("keyword", keyword),
		slog.Int("count", len(items)),
	)
	return items, nil
}
