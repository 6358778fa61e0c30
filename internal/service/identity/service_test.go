package identity

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
)

type userRepoMock struct {
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsernameFunc  func(ctx context.Context, username string) (*domain.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*domain.User, error)
	UpdatePasswordFunc func(ctx context.Context, id uuid.UUID, passwordHash string) error
}

func (m *userRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *userRepoMock) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.GetByUsernameFunc(ctx, username)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *userRepoMock) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.UpdatePasswordFunc(ctx, id, passwordHash)
}

type tokenRepoMock struct {
	CreateFunc  func(ctx context.Context, tok *domain.PasswordResetToken) error
	GetFunc     func(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	ConsumeFunc func(ctx context.Context, token string) error

	consumed []string
}

func (m *tokenRepoMock) Create(ctx context.Context, tok *domain.PasswordResetToken) error {
	return m.CreateFunc(ctx, tok)
}

func (m *tokenRepoMock) Get(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	return m.GetFunc(ctx, token)
}

func (m *tokenRepoMock) Consume(ctx context.Context, token string) error {
	m.consumed = append(m.consumed, token)
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, token)
	}
	return nil
}

type jwtManagerMock struct {
	GenerateAccessTokenFunc func(user *domain.User) (string, error)
	ValidateAccessTokenFunc func(token string) (domain.Identity, error)
}

func (m *jwtManagerMock) GenerateAccessToken(user *domain.User) (string, error) {
	return m.GenerateAccessTokenFunc(user)
}

func (m *jwtManagerMock) ValidateAccessToken(token string) (domain.Identity, error) {
	return m.ValidateAccessTokenFunc(token)
}

type passwordHasherMock struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hash, password string) error
}

func (m *passwordHasherMock) Hash(password string) (string, error) {
	return m.HashFunc(password)
}

func (m *passwordHasherMock) Verify(hash, password string) error {
	return m.VerifyFunc(hash, password)
}

func newTestService(users *userRepoMock, tokens *tokenRepoMock, jwt *jwtManagerMock, hasher *passwordHasherMock) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		jwt:      jwt,
		hasher:   hasher,
		resetTTL: time.Hour,
		log:      slog.Default(),
	}
}

func activeUser() *domain.User {
	return &domain.User{
		ID:           uuid.New(),
		Username:     "hong",
		Email:        "hong@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         domain.RoleUser,
		IsActive:     true,
	}
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	user := activeUser()
	users := &userRepoMock{
		GetByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}
	jwt := &jwtManagerMock{
		GenerateAccessTokenFunc: func(u *domain.User) (string, error) { return "signed-token", nil },
	}
	hasher := &passwordHasherMock{
		VerifyFunc: func(hash, password string) error { return nil },
	}
	svc := newTestService(users, &tokenRepoMock{}, jwt, hasher)

	result, err := svc.Login(context.Background(), "hong", "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token != "signed-token" {
		t.Errorf("Token = %q", result.Token)
	}
	if result.User.Username != "hong" {
		t.Errorf("Username = %q", result.User.Username)
	}
}

func TestLogin_UnknownUserAndWrongPasswordFailAlike(t *testing.T) {
	t.Parallel()

	user := activeUser()
	unknownUsers := &userRepoMock{
		GetByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, domain.ErrNotFound
		},
	}
	knownUsers := &userRepoMock{
		GetByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}
	hasher := &passwordHasherMock{
		VerifyFunc: func(hash, password string) error { return domain.ErrUnauthorized },
	}

	svcUnknown := newTestService(unknownUsers, &tokenRepoMock{}, &jwtManagerMock{}, hasher)
	svcKnown := newTestService(knownUsers, &tokenRepoMock{}, &jwtManagerMock{}, hasher)

	_, errUnknown := svcUnknown.Login(context.Background(), "ghost", "pw")
	_, errKnown := svcKnown.Login(context.Background(), "hong", "wrong")

	if !errors.Is(errUnknown, domain.ErrUnauthorized) {
		t.Errorf("unknown user error = %v, want ErrUnauthorized", errUnknown)
	}
	if !errors.Is(errKnown, domain.ErrUnauthorized) {
		t.Errorf("wrong password error = %v, want ErrUnauthorized", errKnown)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	t.Parallel()

	user := activeUser()
	user.IsActive = false
	users := &userRepoMock{
		GetByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}
	svc := newTestService(users, &tokenRepoMock{}, &jwtManagerMock{}, &passwordHasherMock{})

	_, err := svc.Login(context.Background(), "hong", "password123")
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("error = %v, want ErrAccountInactive", err)
	}
}

func TestAuthenticate_ReloadsAccountState(t *testing.T) {
	t.Parallel()

	user := activeUser()
	jwt := &jwtManagerMock{
		ValidateAccessTokenFunc: func(token string) (domain.Identity, error) {
			// Token was issued when the account was ADMIN.
			return domain.Identity{UserID: user.ID, Username: user.Username, Role: domain.RoleAdmin}, nil
		},
	}
	users := &userRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return user, nil // current role is USER
		},
	}
	svc := newTestService(users, &tokenRepoMock{}, jwt, &passwordHasherMock{})

	identity, err := svc.Authenticate(context.Background(), "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Role != domain.RoleUser {
		t.Errorf("Role = %s, want the current USER role, not the token's", identity.Role)
	}
}

func TestAuthenticate_DeactivatedSinceIssue(t *testing.T) {
	t.Parallel()

	user := activeUser()
	user.IsActive = false
	jwt := &jwtManagerMock{
		ValidateAccessTokenFunc: func(token string) (domain.Identity, error) {
			return domain.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
		},
	}
	users := &userRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return user, nil
		},
	}
	svc := newTestService(users, &tokenRepoMock{}, jwt, &passwordHasherMock{})

	_, err := svc.Authenticate(context.Background(), "token")
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("error = %v, want ErrAccountInactive", err)
	}
}

func TestRequestPasswordReset_CreatesDurableToken(t *testing.T) {
	t.Parallel()

	user := activeUser()
	users := &userRepoMock{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return user, nil
		},
	}
	var created *domain.PasswordResetToken
	tokens := &tokenRepoMock{
		CreateFunc: func(ctx context.Context, tok *domain.PasswordResetToken) error {
			created = tok
			return nil
		},
	}
	svc := newTestService(users, tokens, &jwtManagerMock{}, &passwordHasherMock{})

	tok, err := svc.RequestPasswordReset(context.Background(), "hong@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil || created.Token != tok.Token {
		t.Fatal("token was not persisted")
	}
	if created.UserID != user.ID {
		t.Errorf("UserID = %v, want %v", created.UserID, user.ID)
	}
	ttl := time.Until(created.ExpiresAt)
	if ttl < 55*time.Minute || ttl > 65*time.Minute {
		t.Errorf("token TTL = %v, want about 1h", ttl)
	}
}

func TestResetPassword_ConsumesToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var updatedHash string
	users := &userRepoMock{
		UpdatePasswordFunc: func(ctx context.Context, id uuid.UUID, passwordHash string) error {
			updatedHash = passwordHash
			return nil
		},
	}
	tokens := &tokenRepoMock{
		GetFunc: func(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
			return &domain.PasswordResetToken{Token: token, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	hasher := &passwordHasherMock{
		HashFunc: func(password string) (string, error) { return "new-hash", nil },
	}
	svc := newTestService(users, tokens, &jwtManagerMock{}, hasher)

	if err := svc.ResetPassword(context.Background(), "tok-1", "newpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updatedHash != "new-hash" {
		t.Errorf("updated hash = %q", updatedHash)
	}
	if len(tokens.consumed) != 1 || tokens.consumed[0] != "tok-1" {
		t.Errorf("consumed = %v, want [tok-1]", tokens.consumed)
	}
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	t.Parallel()

	tokens := &tokenRepoMock{
		GetFunc: func(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc := newTestService(&userRepoMock{}, tokens, &jwtManagerMock{}, &passwordHasherMock{})

	err := svc.ResetPassword(context.Background(), "stale", "newpassword")

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestResetPassword_TooShort(t *testing.T) {
	t.Parallel()

	svc := newTestService(&userRepoMock{}, &tokenRepoMock{}, &jwtManagerMock{}, &passwordHasherMock{})

	err := svc.ResetPassword(context.Background(), "tok", "short")

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}
