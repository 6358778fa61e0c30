package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/laveleven/labelai-backend/internal/domain"
)

// Login verifies the credentials and issues an access token. An unknown
// username and a wrong password fail identically; a deactivated account
// is reported as such only after the account is found.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		s.log.WarnContext(ctx, "login rejected", slog.String("username", username))
		return nil, domain.ErrUnauthorized
	}

	token, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.log.InfoContext(ctx, "login succeeded",
		slog.String("username", user.Username),
		slog.String("role", user.Role.String()),
	)
	return &LoginResult{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to a trusted identity. The
// account is re-loaded so a deactivation or role change since the token
// was issued takes effect immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	claimed, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return domain.Identity{}, err
	}

	user, err := s.users.GetByID(ctx, claimed.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Identity{}, domain.ErrUnauthorized
		}
		return domain.Identity{}, fmt.Errorf("load account: %w", err)
	}

	if !user.IsActive {
		return domain.Identity{}, domain.ErrAccountInactive
	}

	return domain.Identity{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
	}, nil
}
