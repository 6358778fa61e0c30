package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

type identityResolverMock struct {
	AuthenticateFunc func(ctx context.Context, token string) (domain.Identity, error)

	mu    sync.Mutex
	calls []string
}

func (m *identityResolverMock) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	m.mu.Lock()
	m.calls = append(m.calls, token)
	m.mu.Unlock()
	return m.AuthenticateFunc(ctx, token)
}

func (m *identityResolverMock) AuthenticateCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestAuth_ValidToken(t *testing.T) {
	identity := domain.Identity{UserID: uuid.New(), Role: domain.RoleAdmin}
	resolver := &identityResolverMock{
		AuthenticateFunc: func(ctx context.Context, token string) (domain.Identity, error) {
			if token == "valid-token" {
				return identity, nil
			}
			return domain.Identity{}, errors.New("invalid token")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := ctxutil.IdentityFromCtx(r.Context())
		if !ok {
			t.Error("expected identity in context")
			return
		}
		if got.UserID != identity.UserID || got.Role != identity.Role {
			t.Errorf("expected identity %+v, got %+v", identity, got)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	Auth(resolver)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	resolver := &identityResolverMock{
		AuthenticateFunc: func(ctx context.Context, token string) (domain.Identity, error) {
			return domain.Identity{}, errors.New("invalid token")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for invalid token")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rec := httptest.NewRecorder()

	Auth(resolver)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "UNAUTHENTICATED" {
		t.Errorf("expected error code UNAUTHENTICATED, got %q", code)
	}
}

func TestAuth_InactiveAccount(t *testing.T) {
	resolver := &identityResolverMock{
		AuthenticateFunc: func(ctx context.Context, token string) (domain.Identity, error) {
			return domain.Identity{}, domain.ErrAccountInactive
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for a deactivated account")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	rec := httptest.NewRecorder()

	Auth(resolver)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "ACCOUNT_INACTIVE" {
		t.Errorf("expected error code ACCOUNT_INACTIVE, got %q", code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}

// decodeErrorCode extracts error.code from the response envelope.
func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return body.Error.Code
}

func TestAuth_NoAuthHeader(t *testing.T) {
	resolver := &identityResolverMock{
		AuthenticateFunc: func(ctx context.Context, token string) (domain.Identity, error) {
			t.Error("Authenticate should not be called when no header present")
			return domain.Identity{}, errors.New("should not be called")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.IdentityFromCtx(r.Context()); ok {
			t.Error("expected no identity in context for anonymous request")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	Auth(resolver)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if len(resolver.AuthenticateCalls()) > 0 {
		t.Error("Authenticate should not be called for anonymous request")
	}
}

func TestAuth_NonBearerToken(t *testing.T) {
	resolver := &identityResolverMock{
		AuthenticateFunc: func(ctx context.Context, token string) (domain.Identity, error) {
			t.Error("Authenticate should not be called for non-Bearer token")
			return domain.Identity{}, errors.New("should not be called")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.IdentityFromCtx(r.Context()); ok {
			t.Error("expected no identity in context for non-Bearer auth")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	Auth(resolver)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if len(resolver.AuthenticateCalls()) > 0 {
		t.Error("Authenticate should not be called for non-Bearer token")
	}
}

func TestExtractBearerToken_Cases(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"empty header", "", ""},
		{"bearer with token", "Bearer valid-token", "valid-token"},
		{"bearer lowercase", "bearer valid-token", "valid-token"},
		{"bearer mixed case", "BEARER valid-token", "valid-token"},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
		{"bearer no space", "Bearertoken", ""},
		{"bearer empty token", "Bearer ", ""},
		{"just bearer", "Bearer", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			got := extractBearerToken(req)
			if got != tc.want {
				t.Errorf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}
