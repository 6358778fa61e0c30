package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/internal/service/item"
)

// itemService defines the minimal interface needed by ItemsHandler.
type itemService interface {
	List(ctx context.Context) ([]domain.Item, error)
	Search(ctx context.Context, keyword string) ([]domain.Item, error)
	Get(ctx context.Context, itemID uuid.UUID) (*domain.Item, error)
	GetDetail(ctx context.Context, itemID uuid.UUID) (*item.ItemDetail, error)
	Create(ctx context.Context, input item.CreateItemInput) (*domain.Item, error)
	Update(ctx context.Context, input item.UpdateItemInput) (*domain.Item, error)
	Delete(ctx context.Context, itemID uuid.UUID) error
}

// ItemsHandler serves label item endpoints.
type ItemsHandler struct {
	svc itemService
	log *slog.Logger
}

// NewItemsHandler creates an ItemsHandler.
func NewItemsHandler(svc itemService, logger *slog.Logger) *ItemsHandler {
	return &ItemsHandler{svc: svc, log: logger.With("handler", "items")}
}

type itemResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	DepartmentID *string `json:"departmentId,omitempty"`
	Version      string  `json:"version"`
	Description  *string `json:"description,omitempty"`
	CreatedBy    string  `json:"createdBy"`
	UpdatedBy    string  `json:"updatedBy"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

type snapshotResponse struct {
	Stage     string          `json:"stage"`
	ImageURL  *string         `json:"imageUrl,omitempty"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt string          `json:"updatedAt"`
}

type itemDetailResponse struct {
	itemResponse
	Snapshots []snapshotResponse `json:"snapshots"`
}

func toItemResponse(it *domain.Item) itemResponse {
	return itemResponse{
		ID:           it.ID.String(),
		Name:         it.Name,
		Type:         it.Type,
		DepartmentID: it.DepartmentID,
		Version:      it.Version,
		Description:  it.Description,
		CreatedBy:    it.CreatedBy.String(),
		UpdatedBy:    it.UpdatedBy.String(),
		CreatedAt:    it.CreatedAt.Format(timeFormat),
		UpdatedAt:    it.UpdatedAt.Format(timeFormat),
	}
}

func toItemResponses(items []domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, toItemResponse(&items[i]))
	}
	return out
}

// List handles GET /api/items and GET /api/items/search?keyword=x.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(items))
}

// Search handles GET /api/items/search.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Search(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(items))
}

// Get handles GET /api/items/{id}. Returns the item with its current
// stage snapshots.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.svc.GetDetail(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	resp := itemDetailResponse{
		itemResponse: toItemResponse(detail.Item),
		Snapshots:    make([]snapshotResponse, 0, len(detail.Snapshots)),
	}
	for _, s := range detail.Snapshots {
		resp.Snapshots = append(resp.Snapshots, snapshotResponse{
			Stage:     s.Stage.String(),
			ImageURL:  s.ImageURL,
			Data:      s.Data,
			UpdatedAt: s.UpdatedAt.Format(timeFormat),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type createItemRequest struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Description  *string `json:"description"`
	DepartmentID *string `json:"departmentId"`
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	it, err := h.svc.Create(r.Context(), item.CreateItemInput{
		Name:         req.Name,
		Type:         req.Type,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(it))
}

type updateItemRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	it, err := h.svc.Update(r.Context(), item.UpdateItemInput{
		ItemID:      id,
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(it))
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
