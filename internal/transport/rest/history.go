package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/internal/service/history"
)

// historyService defines the minimal interface needed by HistoryHandler.
type historyService interface {
	ListAll(ctx context.Context) ([]domain.History, error)
	ListForItem(ctx context.Context, itemID uuid.UUID) ([]domain.History, error)
	ListForItemAndStep(ctx context.Context, itemID uuid.UUID, step domain.Step) ([]domain.History, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.History, error)
	Append(ctx context.Context, input history.AppendInput) (*domain.History, error)
}

// HistoryHandler serves the audit trail endpoints.
type HistoryHandler struct {
	svc historyService
	log *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(svc historyService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{svc: svc, log: logger.With("handler", "history")}
}

type historyResponse struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"itemId"`
	Step      string          `json:"step"`
	FieldName string          `json:"fieldName"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	ChangedBy string          `json:"changedBy"`
	ChangedAt string          `json:"changedAt"`
}

func toHistoryResponse(h *domain.History) historyResponse {
	return historyResponse{
		ID:        h.ID.String(),
		ItemID:    h.ItemID.String(),
		Step:      h.Step.String(),
		FieldName: h.FieldName,
		Action:    h.Action.String(),
		Payload:   h.Payload,
		ChangedBy: h.ChangedBy.String(),
		ChangedAt: h.ChangedAt.Format(timeFormat),
	}
}

func toHistoryResponses(records []domain.History) []historyResponse {
	out := make([]historyResponse, 0, len(records))
	for i := range records {
		out = append(out, toHistoryResponse(&records[i]))
	}
	return out
}

// ListAll handles GET /api/histories, scoped by the caller's role.
func (h *HistoryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListAll(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponses(records))
}

// ListForItem handles GET /api/histories/item/{itemId}.
func (h *HistoryHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}

	records, err := h.svc.ListForItem(r.Context(), itemID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponses(records))
}

// ListForItemAndStep handles GET /api/histories/item/{itemId}/step/{step}.
func (h *HistoryHandler) ListForItemAndStep(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}
	step := domain.Step(r.PathValue("step"))

	records, err := h.svc.ListForItemAndStep(r.Context(), itemID, step)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponses(records))
}

// Get handles GET /api/histories/{id}.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	record, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(record))
}

type appendHistoryRequest struct {
	Step      string          `json:"step"`
	FieldName string          `json:"fieldName"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload"`
}

// Append handles POST /api/histories/item/{itemId}: a manual audit
// entry, e.g. recording a rollback.
func (h *HistoryHandler) Append(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}

	var req appendHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	record, err := h.svc.Append(r.Context(), history.AppendInput{
		ItemID:    itemID,
		Step:      domain.Step(req.Step),
		FieldName: req.FieldName,
		Action:    domain.ActionType(req.Action),
		Payload:   req.Payload,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHistoryResponse(record))
}
