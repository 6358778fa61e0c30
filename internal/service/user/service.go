// Package user implements account management. Deleting an account
// deactivates it; rows are never removed, so audit references stay
// resolvable.
package user

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/internal/permission"
)

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// Service provides account management operations.
type Service struct {
	users  userRepo
	hasher passwordHasher
	perm   *permission.Engine
	log    *slog.Logger
}

// NewService creates a new user service.
func NewService(log *slog.Logger, users userRepo, hasher passwordHasher, perm *permission.Engine) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		perm:   perm,
		log:    log.With("service", "user"),
	}
}
