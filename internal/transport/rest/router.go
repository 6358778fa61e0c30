package rest

import (
	"net/http"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/internal/transport/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Items    *ItemsHandler
	Users    *UsersHandler
	Pipeline *PipelineHandler
	History  *HistoryHandler
	Stats    *StatsHandler
}

// NewRouter builds the full route table. Authentication middleware is
// expected to run outside the router; the guards here only enforce
// that an identity is present (or the SUPER_ADMIN role for stats).
func NewRouter(h Handlers, loginLimiter *middleware.RateLimiter) http.Handler {
	mux := http.NewServeMux()

	// Probes, unauthenticated.
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	// Credential endpoints, rate limited per IP.
	limited := loginLimiter.Limit(10)
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(h.Auth.Login)))
	mux.Handle("POST /api/auth/forgot-username", limited(http.HandlerFunc(h.Auth.ForgotUsername)))
	mux.Handle("POST /api/auth/forgot-password-request", limited(http.HandlerFunc(h.Auth.ForgotPassword)))
	mux.Handle("POST /api/auth/reset-password", limited(http.HandlerFunc(h.Auth.ResetPassword)))

	authed := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(fn)
	}

	// Items.
	mux.Handle("GET /api/items", authed(h.Items.List))
	mux.Handle("GET /api/items/search", authed(h.Items.Search))
	mux.Handle("GET /api/items/{id}", authed(h.Items.Get))
	mux.Handle("POST /api/items", authed(h.Items.Create))
	mux.Handle("PUT /api/items/{id}", authed(h.Items.Update))
	mux.Handle("DELETE /api/items/{id}", authed(h.Items.Delete))

	// Users.
	mux.Handle("GET /api/users", authed(h.Users.List))
	mux.Handle("GET /api/users/check-duplicate", authed(h.Users.CheckDuplicate))
	mux.Handle("GET /api/users/{id}", authed(h.Users.Get))
	mux.Handle("POST /api/users", authed(h.Users.Create))
	mux.Handle("PUT /api/users/{id}", authed(h.Users.Update))
	mux.Handle("DELETE /api/users/{id}", authed(h.Users.Delete))

	// Pipeline.
	mux.Handle("POST /api/pipeline/start", authed(h.Pipeline.Start))
	mux.Handle("POST /api/pipeline/full", authed(h.Pipeline.ProcessFull))
	mux.Handle("POST /api/pipeline/batch", authed(h.Pipeline.ProcessBatch))
	mux.Handle("POST /api/pipeline/transient/generate-html", authed(h.Pipeline.GenerateHTML))
	mux.Handle("POST /api/pipeline/{itemId}/ocr", authed(h.Pipeline.RunOCR))
	mux.Handle("POST /api/pipeline/{itemId}/structure", authed(h.Pipeline.RunStructure))
	mux.Handle("POST /api/pipeline/{itemId}/translate", authed(h.Pipeline.RunTranslate))
	mux.Handle("POST /api/pipeline/{itemId}/save", authed(h.Pipeline.Save))

	// History.
	mux.Handle("GET /api/histories", authed(h.History.ListAll))
	mux.Handle("GET /api/histories/item/{itemId}", authed(h.History.ListForItem))
	mux.Handle("GET /api/histories/item/{itemId}/step/{step}", authed(h.History.ListForItemAndStep))
	mux.Handle("POST /api/histories/item/{itemId}", authed(h.History.Append))
	mux.Handle("GET /api/histories/{id}", authed(h.History.Get))

	// Stats, SUPER_ADMIN only.
	superAdmin := middleware.RequireRole(domain.RoleSuperAdmin)
	mux.Handle("GET /api/stats/teams", superAdmin(http.HandlerFunc(h.Stats.Teams)))
	mux.Handle("GET /api/stats/total", superAdmin(http.HandlerFunc(h.Stats.Total)))

	return mux
}
