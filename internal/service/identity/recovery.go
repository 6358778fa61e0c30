package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
)

const minPasswordLength = 8

// ForgotUsername returns the username registered for the email, for
// delivery by the notification channel the surrounding layer provides.
func (s *Service) ForgotUsername(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("get user by email: %w", err)
	}

	s.log.InfoContext(ctx, "username recovery requested", slog.String("email", email))
	return user.Username, nil
}

// RequestPasswordReset creates a durable, time-boxed reset token for
// the account registered under the email. The token survives restarts
// and expires after the configured TTL.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	now := time.Now().UTC()
	tok := &domain.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return nil, fmt.Errorf("create reset token: %w", err)
	}

	s.log.InfoContext(ctx, "password reset requested",
		slog.String("username", user.Username),
		slog.Time("expires_at", tok.ExpiresAt),
	)
	return tok, nil
}

// ResetPassword sets a new password for the account the token belongs
// to and invalidates the token. Expired or unknown tokens are rejected
// without revealing which.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.NewValidationError("password", fmt.Sprintf("min %d characters", minPasswordLength))
	}

	tok, err := s.tokens.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("token", "invalid or expired")
		}
		return fmt.Errorf("get reset token: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, tok.UserID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.tokens.Consume(ctx, token); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	s.log.InfoContext(ctx, "password reset completed", slog.String("user_id", tok.UserID.String()))
	return nil
}
