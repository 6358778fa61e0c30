package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/adapter/labelapi"
	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/internal/service/pipeline"
)

// pipelineService defines the minimal interface needed by PipelineHandler.
type pipelineService interface {
	Start(ctx context.Context, name, itemType string) (*domain.Item, error)
	RunOCR(ctx context.Context, itemID uuid.UUID, upload labelapi.Upload) (*labelapi.OCRResult, error)
	RunStructure(ctx context.Context, itemID uuid.UUID, req labelapi.StructureRequest) (json.RawMessage, error)
	RunTranslate(ctx context.Context, itemID uuid.UUID, req labelapi.TranslateRequest) (*labelapi.TranslateResult, error)
	GenerateHTMLPreview(ctx context.Context, req labelapi.HTMLRequest) (string, error)
	ProcessFull(ctx context.Context, upload labelapi.Upload, targetCountry string, generateHTML bool) (*labelapi.PipelineResult, error)
	ProcessBatch(ctx context.Context, items []labelapi.BatchItem, targetCountry string, generateHTML bool) ([]labelapi.BatchResult, error)
	Save(ctx context.Context, input pipeline.SaveInput) error
}

// PipelineHandler serves the label-processing pipeline endpoints.
type PipelineHandler struct {
	svc       pipelineService
	maxUpload int64
	log       *slog.Logger
}

// NewPipelineHandler creates a PipelineHandler. maxUpload caps the
// multipart form size per request.
func NewPipelineHandler(svc pipelineService, maxUpload int64, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{
		svc:       svc,
		maxUpload: maxUpload,
		log:       logger.With("handler", "pipeline"),
	}
}

type startPipelineRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Start handles POST /api/pipeline/start. Creates the item the rest of
// the run attaches to.
func (h *PipelineHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startPipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	it, err := h.svc.Start(r.Context(), req.Name, req.Type)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(it))
}

// RunOCR handles POST /api/pipeline/{itemId}/ocr with a multipart
// "file" part.
func (h *PipelineHandler) RunOCR(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}
	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.svc.RunOCR(r.Context(), itemID, upload)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RunStructure handles POST /api/pipeline/{itemId}/structure.
func (h *PipelineHandler) RunStructure(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}

	var req labelapi.StructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	data, err := h.svc.RunStructure(r.Context(), itemID, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"data": data})
}

// RunTranslate handles POST /api/pipeline/{itemId}/translate.
func (h *PipelineHandler) RunTranslate(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}

	var req labelapi.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	result, err := h.svc.RunTranslate(r.Context(), itemID, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GenerateHTML handles POST /api/pipeline/transient/generate-html.
// Nothing is persisted and no history is written.
func (h *PipelineHandler) GenerateHTML(w http.ResponseWriter, r *http.Request) {
	var req labelapi.HTMLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	html, err := h.svc.GenerateHTMLPreview(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, html) //nolint:errcheck
}

// ProcessFull handles POST /api/pipeline/full: one upload through the
// whole remote pipeline in a single call. Form fields: file,
// target_country (optional), generate_html (optional bool).
func (h *PipelineHandler) ProcessFull(w http.ResponseWriter, r *http.Request) {
	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	targetCountry := r.FormValue("target_country")
	generateHTML := r.FormValue("generate_html") == "true"

	result, err := h.svc.ProcessFull(r.Context(), upload, targetCountry, generateHTML)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type batchResultResponse struct {
	ItemID string                   `json:"itemId"`
	Result *labelapi.PipelineResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// ProcessBatch handles POST /api/pipeline/batch: multiple "files"
// parts, each named by its form filename. Per-file failures are
// reported in place, the batch itself succeeds.
func (h *PipelineHandler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		badRequest(w, "at least one file required")
		return
	}

	items := make([]labelapi.BatchItem, 0, len(headers))
	for _, fh := range headers {
		upload, err := readFileHeader(fh)
		if err != nil {
			badRequest(w, "unreadable file "+fh.Filename)
			return
		}
		items = append(items, labelapi.BatchItem{
			ItemID: fh.Filename,
			Upload: upload,
		})
	}

	targetCountry := r.FormValue("target_country")
	generateHTML := r.FormValue("generate_html") == "true"

	results, err := h.svc.ProcessBatch(r.Context(), items, targetCountry, generateHTML)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	out := make([]batchResultResponse, 0, len(results))
	for _, res := range results {
		entry := batchResultResponse{ItemID: res.ItemID, Result: res.Result}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}

type saveRequest struct {
	OriginalFileName *string         `json:"originalFileName"`
	OCRResult        json.RawMessage `json:"ocrResult"`
	StructureResult  json.RawMessage `json:"structureResult"`
	TranslateResult  json.RawMessage `json:"translateResult"`
	SketchResult     json.RawMessage `json:"sketchResult"`
}

// Save handles POST /api/pipeline/{itemId}/save: the transactional
// commit of every provided stage snapshot.
func (h *PipelineHandler) Save(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	err := h.svc.Save(r.Context(), pipeline.SaveInput{
		ItemID:           itemID,
		OriginalFileName: req.OriginalFileName,
		OCRResult:        req.OCRResult,
		StructureResult:  req.StructureResult,
		TranslateResult:  req.TranslateResult,
		SketchResult:     req.SketchResult,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// readUpload extracts the single "file" part of a multipart request.
func (h *PipelineHandler) readUpload(w http.ResponseWriter, r *http.Request) (labelapi.Upload, bool) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		badRequest(w, "invalid multipart form")
		return labelapi.Upload{}, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file part required")
		return labelapi.Upload{}, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "unreadable file")
		return labelapi.Upload{}, false
	}
	return labelapi.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, true
}

func readFileHeader(fh *multipart.FileHeader) (labelapi.Upload, error) {
	file, err := fh.Open()
	if err != nil {
		return labelapi.Upload{}, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return labelapi.Upload{}, err
	}
	return labelapi.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
