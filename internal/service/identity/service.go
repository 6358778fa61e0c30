// Package identity implements authentication: login, token resolution
// to a trusted caller identity, and the account-recovery flows.
package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
)

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type tokenRepo interface {
	Create(ctx context.Context, tok *domain.PasswordResetToken) error
	Get(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	Consume(ctx context.Context, token string) error
}

type jwtManager interface {
	GenerateAccessToken(user *domain.User) (string, error)
	ValidateAccessToken(token string) (domain.Identity, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// Service provides authentication operations.
type Service struct {
	users    userRepo
	tokens   tokenRepo
	jwt      jwtManager
	hasher   passwordHasher
	resetTTL time.Duration
	log      *slog.Logger
}

// NewService creates a new identity service. resetTTL bounds the
// lifetime of password-reset tokens.
func NewService(
	log *slog.Logger,
	users userRepo,
	tokens tokenRepo,
	jwt jwtManager,
	hasher passwordHasher,
	resetTTL time.Duration,
) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		jwt:      jwt,
		hasher:   hasher,
		resetTTL: resetTTL,
		log:      log.With("service", "identity"),
	}
}

// LoginResult is a successful login: the signed access token and the
// authenticated account.
type LoginResult struct {
	Token string
	User  *domain.User
}
