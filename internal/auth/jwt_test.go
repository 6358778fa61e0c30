package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
)

const testSecret = "test-secret-that-is-long-enough-32b"

func testUser() *domain.User {
	dept := "A"
	return &domain.User{
		ID:           uuid.New(),
		Username:     "alice",
		Role:         domain.RoleAdmin,
		DepartmentID: &dept,
	}
}

func TestJWTRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "labelai", time.Hour)
	user := testUser()

	token, err := m.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	id, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if id.UserID != user.ID {
		t.Errorf("user ID: got %v, want %v", id.UserID, user.ID)
	}
	if id.Username != "alice" {
		t.Errorf("username: got %q", id.Username)
	}
	if id.Role != domain.RoleAdmin {
		t.Errorf("role: got %v", id.Role)
	}
	if id.DepartmentID == nil || *id.DepartmentID != "A" {
		t.Errorf("department: got %v", id.DepartmentID)
	}
}

func TestJWTRejectsWrongKey(t *testing.T) {
	t.Parallel()

	m1 := NewJWTManager(testSecret, "labelai", time.Hour)
	m2 := NewJWTManager(strings.Repeat("x", 32), "labelai", time.Hour)

	token, err := m1.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m2.ValidateAccessToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "labelai", -time.Minute)

	token, err := m.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.ValidateAccessToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestJWTRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	m1 := NewJWTManager(testSecret, "someone-else", time.Hour)
	m2 := NewJWTManager(testSecret, "labelai", time.Hour)

	token, err := m1.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m2.ValidateAccessToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestJWTRejectsEmptyAndGarbage(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "labelai", time.Hour)

	for _, token := range []string{"", "not.a.jwt"} {
		if _, err := m.ValidateAccessToken(token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(4) // minimal cost keeps the test fast

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if err := h.Verify(hash, "s3cret"); err != nil {
		t.Errorf("verify correct password: %v", err)
	}
	if err := h.Verify(hash, "wrong"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("verify wrong password: expected ErrUnauthorized, got %v", err)
	}
}
