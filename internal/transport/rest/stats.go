package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/laveleven/labelai-backend/internal/service/stats"
)

// statsService defines the minimal interface needed by StatsHandler.
type statsService interface {
	TeamStats(ctx context.Context) ([]stats.TeamStats, error)
	Overview(ctx context.Context) (stats.Overview, error)
}

// StatsHandler serves the admin dashboard figures.
type StatsHandler struct {
	svc statsService
	log *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(svc statsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, log: logger.With("handler", "stats")}
}

// Teams handles GET /api/stats/teams.
func (h *StatsHandler) Teams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.svc.TeamStats(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// Total handles GET /api/stats/total.
func (h *StatsHandler) Total(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Overview(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
