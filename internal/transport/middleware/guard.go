package middleware

import (
	"net/http"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

// RequireAuth rejects anonymous requests with 401 before they reach
// the handler. Role checks stay in the services; this only guarantees
// an identity is present.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.IdentityFromCtx(r.Context()); !ok {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects callers below the given role with 403. Intended
// for route groups that are exclusively administrative, such as stats.
func RequireRole(role domain.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := ctxutil.IdentityFromCtx(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
				return
			}
			if identity.Role != role {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
