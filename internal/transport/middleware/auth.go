package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

type identityResolver interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

// Auth resolves the Bearer token into a caller identity and stores it
// in the request context. Requests without a token pass through
// anonymously; services decide what anonymous callers may do.
func Auth(resolver identityResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			identity, err := resolver.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrAccountInactive) {
					writeAuthError(w, http.StatusForbidden, "ACCOUNT_INACTIVE", "account is deactivated")
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid or expired token")
				return
			}
			ctx := ctxutil.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError emits the same error envelope the REST handlers use,
// so clients see one error shape regardless of which layer rejected
// the request.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"error": map[string]string{"code": code, "message": message},
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return auth[len(prefix):]
}
