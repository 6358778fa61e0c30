package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

// List returns the accounts visible to the caller: everyone for
// SUPER_ADMIN, the caller's department for ADMIN, only itself for USER.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	users, err := s.users.List(ctx, s.perm.UsersFilter(caller))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns a single account if the caller may view it.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !s.perm.CanViewUser(caller, target) {
		return nil, domain.ErrForbidden
	}
	return target, nil
}

// Create registers a new account. USER callers may not create
// accounts; ADMIN callers may only create USER-role accounts inside
// their own department.
func (s *Service) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if caller.Role == domain.RoleUser {
		return nil, domain.ErrForbidden
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	departmentID := input.DepartmentID
	if caller.Role == domain.RoleAdmin {
		if role != domain.RoleUser {
			return nil, domain.ErrForbidden
		}
		if !caller.SameDepartment(departmentID) {
			return nil, domain.ErrForbidden
		}
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if taken {
		return nil, fmt.Errorf("username %q: %w", username, domain.ErrAlreadyExists)
	}
	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if taken {
		return nil, fmt.Errorf("email %q: %w", email, domain.ErrAlreadyExists)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		DepartmentID: departmentID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user created",
		slog.String("user_id", created.ID.String()),
		slog.String("username", created.Username),
		slog.String("role", created.Role.String()),
		slog.String("created_by", caller.UserID.String()),
	)
	return created, nil
}

// Update modifies an account. Changing the role or moving the account
// between departments is reserved to SUPER_ADMIN; a changed email must
// stay unique.
func (s *Service) Update(ctx context.Context, input UpdateUserInput) (*domain.User, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	target, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !s.perm.CanEditUser(caller, target) {
		return nil, domain.ErrForbidden
	}

	if (input.Role != nil || input.DepartmentID != nil) && caller.Role != domain.RoleSuperAdmin {
		return nil, domain.ErrForbidden
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email != target.Email {
			if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			} else if taken {
				return nil, fmt.Errorf("email %q: %w", email, domain.ErrAlreadyExists)
			}
			target.Email = email
		}
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		target.PasswordHash = hash
	}
	if input.Role != nil {
		target.Role = *input.Role
	}
	if input.DepartmentID != nil {
		target.DepartmentID = input.DepartmentID
	}

	updated, err := s.users.Update(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.InfoContext(ctx, "user updated",
		slog.String("user_id", updated.ID.String()),
		slog.String("updated_by", caller.UserID.String()),
	)
	return updated, nil
}

// Delete deactivates an account. The caller may never deactivate its
// own account, whatever its role.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if !s.perm.CanDeleteUser(caller, target) {
		return domain.ErrForbidden
	}

	if err := s.users.SetActive(ctx, userID, false); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	s.log.InfoContext(ctx, "user deactivated",
		slog.String("user_id", userID.String()),
		slog.String("deactivated_by", caller.UserID.String()),
	)
	return nil
}

// UsernameExists reports whether the username is already taken, for
// registration forms.
func (s *Service) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.users.ExistsByUsername(ctx, strings.TrimSpace(username))
}
