package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/adapter/labelapi"
	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

// Start creates the item the pipeline will run against and records the
// ITEM/CREATE entry. ADMIN and USER callers create into their own
// department.
func (s *Service) Start(ctx context.Context, name, itemType string) (*domain.Item, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "required")
	}
	if strings.TrimSpace(itemType) == "" {
		return nil, domain.NewValidationError("type", "required")
	}

	var departmentID *string
	if caller.Role != domain.RoleSuperAdmin {
		departmentID = caller.DepartmentID
	}

	now := time.Now().UTC()
	item, err := s.items.Create(ctx, &domain.Item{
		ID:           uuid.New(),
		Name:         name,
		Type:         strings.TrimSpace(itemType),
		DepartmentID: departmentID,
		Version:      domain.DefaultItemVersion,
		CreatedBy:    caller.UserID,
		UpdatedBy:    caller.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	if _, err := s.history.Append(ctx, &domain.History{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Step:      domain.StepItem,
		FieldName: "item",
		Action:    domain.ActionCreate,
		ChangedBy: caller.UserID,
	}); err != nil {
		return nil, fmt.Errorf("record pipeline start: %w", err)
	}

	s.log.InfoContext(ctx, "pipeline started",
		slog.String("item_id", item.ID.String()),
		slog.String("name", item.Name),
	)
	return item, nil
}

// RunOCR extracts texts from the uploaded label image and marks the
// scan stage done. The OCR result itself is returned to the caller, not
// persisted; it becomes durable only at the final save. A failed remote
// call leaves no trace in the audit trail.
func (s *Service) RunOCR(ctx context.Context, itemID uuid.UUID, upload labelapi.Upload) (*labelapi.OCRResult, error) {
	caller, item, err := s.loadEditable(ctx, itemID)
	if err != nil {
		return nil, err
	}

	result, err := s.client.ExtractText(ctx, upload)
	if err != nil {
		return nil, err
	}

	if _, err := s.history.Append(ctx, &domain.History{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Step:      domain.StepScan,
		FieldName: "scan_meta",
		Action:    domain.ActionOCRDone,
		ChangedBy: caller.UserID,
	}); err != nil {
		return nil, fmt.Errorf("record ocr completion: %w", err)
	}

	s.log.InfoContext(ctx, "ocr stage done",
		slog.String("item_id", item.ID.String()),
		slog.Int("texts", len(result.Texts)),
	)
	return result, nil
}

// RunStructure converts OCR texts into the structured label document
// and marks the schema stage done.
func (s *Service) RunStructure(ctx context.Context, itemID uuid.UUID, req labelapi.StructureRequest) (json.RawMessage, error) {
	caller, item, err := s.loadEditable(ctx, itemID)
	if err != nil {
		return nil, err
	}

	result, err := s.client.StructureTexts(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.history.Append(ctx, &domain.History{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Step:      domain.StepSchema,
		FieldName: "data",
		Action:    domain.ActionStructureDone,
		ChangedBy: caller.UserID,
	}); err != nil {
		return nil, fmt.Errorf("record structure completion: %w", err)
	}

	s.log.InfoContext(ctx, "structure stage done", slog.String("item_id", item.ID.String()))
	return result, nil
}

// RunTranslate converts a structured document into the target country's
// format and marks the translate stage done.
func (s *Service) RunTranslate(ctx context.Context, itemID uuid.UUID, req labelapi.TranslateRequest) (*labelapi.TranslateResult, error) {
	caller, item, err := s.loadEditable(ctx, itemID)
	if err != nil {
		return nil, err
	}

	result, err := s.client.Translate(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.history.Append(ctx, &domain.History{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Step:      domain.StepTranslate,
		FieldName: "data",
		Action:    domain.ActionTranslateDone,
		ChangedBy: caller.UserID,
	}); err != nil {
		return nil, fmt.Errorf("record translate completion: %w", err)
	}

	s.log.InfoContext(ctx, "translate stage done",
		slog.String("item_id", item.ID.String()),
		slog.String("target_country", req.TargetCountry),
	)
	return result, nil
}

// GenerateHTMLPreview renders the label HTML for a live preview. It is
// transient: nothing is persisted and no history is written.
func (s *Service) GenerateHTMLPreview(ctx context.Context, req labelapi.HTMLRequest) (string, error) {
	if _, ok := ctxutil.IdentityFromCtx(ctx); !ok {
		return "", domain.ErrUnauthorized
	}
	return s.client.GenerateHTML(ctx, req)
}

// ProcessFull runs the whole pipeline in one composite remote call,
// without touching persistence.
func (s *Service) ProcessFull(ctx context.Context, upload labelapi.Upload, targetCountry string, generateHTML bool) (*labelapi.PipelineResult, error) {
	if _, ok := ctxutil.IdentityFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.client.ProcessFull(ctx, upload, targetCountry, generateHTML)
}

// ProcessBatch runs the composite pipeline for several uploads with
// bounded parallelism, continuing past per-item failures.
func (s *Service) ProcessBatch(ctx context.Context, items []labelapi.BatchItem, targetCountry string, generateHTML bool) ([]labelapi.BatchResult, error) {
	if _, ok := ctxutil.IdentityFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.client.ProcessBatch(ctx, items, targetCountry, generateHTML), nil
}
