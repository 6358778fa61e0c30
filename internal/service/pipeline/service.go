// Package pipeline orchestrates the label-processing flow: OCR,
// structuring, translation and HTML rendering against the remote
// service, with deferred persistence. Intermediate stages only append
// completion markers to the audit trail; durable stage snapshots exist
// only after the terminal save commits.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/adapter/labelapi"
	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/internal/permission"
	"github.com/laveleven/labelai-backend/pkg/ctxutil"
)

type labelClient interface {
	ExtractText(ctx context.Context, upload labelapi.Upload) (*labelapi.OCRResult, error)
	StructureTexts(ctx context.Context, req labelapi.StructureRequest) (json.RawMessage, error)
	Translate(ctx context.Context, req labelapi.TranslateRequest) (*labelapi.TranslateResult, error)
	GenerateHTML(ctx context.Context, req labelapi.HTMLRequest) (string, error)
	ProcessFull(ctx context.Context, upload labelapi.Upload, targetCountry string, generateHTML bool) (*labelapi.PipelineResult, error)
	ProcessBatch(ctx context.Context, items []labelapi.BatchItem, targetCountry string, generateHTML bool) []labelapi.BatchResult
}

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Touch(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) error
}

type snapshotRepo interface {
	Upsert(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error)
}

type historyRepo interface {
	Append(ctx context.Context, rec *domain.History) (*domain.History, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service runs the pipeline. Remote calls never happen inside a
// database transaction; the only transactional operation is the final
// save.
type Service struct {
	client    labelClient
	items     itemRepo
	snapshots snapshotRepo
	history   historyRepo
	tx        txManager
	perm      *permission.Engine
	log       *slog.Logger
}

// NewService creates a new pipeline service.
func NewService(
	log *slog.Logger,
	client labelClient,
	items itemRepo,
	snapshots snapshotRepo,
	history historyRepo,
	tx txManager,
	perm *permission.Engine,
) *Service {
	return &Service{
		client:    client,
		items:     items,
		snapshots: snapshots,
		history:   history,
		tx:        tx,
		perm:      perm,
		log:       log.With("service", "pipeline"),
	}
}

// loadEditable resolves the caller, loads the item fresh and checks
// edit access before any side effect.
func (s *Service) loadEditable(ctx context.Context, itemID uuid.UUID) (domain.Identity, *domain.Item, error) {
	caller, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return domain.Identity{}, nil, domain.ErrUnauthorized
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return caller, nil, fmt.Errorf("get item: %w", err)
	}
	if !s.perm.CanEditItem(caller, item) {
		return caller, nil, domain.ErrForbidden
	}
	return caller, item, nil
}
