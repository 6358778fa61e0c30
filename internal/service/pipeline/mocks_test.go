package pipeline

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/adapter/labelapi"
	"github.com/laveleven/labelai-backend/internal/domain"
)

var (
	_ labelClient  = &labelClientMock{}
	_ itemRepo     = &itemRepoMock{}
	_ snapshotRepo = &snapshotRepoMock{}
	_ historyRepo  = &historyRepoMock{}
	_ txManager    = &txManagerMock{}
)

type labelClientMock struct {
	ExtractTextFunc    func(ctx context.Context, upload labelapi.Upload) (*labelapi.OCRResult, error)
	StructureTextsFunc func(ctx context.Context, req labelapi.StructureRequest) (json.RawMessage, error)
	TranslateFunc      func(ctx context.Context, req labelapi.TranslateRequest) (*labelapi.TranslateResult, error)
	GenerateHTMLFunc   func(ctx context.Context, req labelapi.HTMLRequest) (string, error)
	ProcessFullFunc    func(ctx context.Context, upload labelapi.Upload, targetCountry string, generateHTML bool) (*labelapi.PipelineResult, error)
	ProcessBatchFunc   func(ctx context.Context, items []labelapi.BatchItem, targetCountry string, generateHTML bool) []labelapi.BatchResult

	mu    sync.Mutex
	calls int
}

func (m *labelClientMock) bump() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *labelClientMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *labelClientMock) ExtractText(ctx context.Context, upload labelapi.Upload) (*labelapi.OCRResult, error) {
	m.bump()
	return m.ExtractTextFunc(ctx, upload)
}

func (m *labelClientMock) StructureTexts(ctx context.Context, req labelapi.StructureRequest) (json.RawMessage, error) {
	m.bump()
	return m.StructureTextsFunc(ctx, req)
}

func (m *labelClientMock) Translate(ctx context.Context, req labelapi.TranslateRequest) (*labelapi.TranslateResult, error) {
	m.bump()
	return m.TranslateFunc(ctx, req)
}

func (m *labelClientMock) GenerateHTML(ctx context.Context, req labelapi.HTMLRequest) (string, error) {
	m.bump()
	return m.GenerateHTMLFunc(ctx, req)
}

func (m *labelClientMock) ProcessFull(ctx context.Context, upload labelapi.Upload, targetCountry string, generateHTML bool) (*labelapi.PipelineResult, error) {
	m.bump()
	return m.ProcessFullFunc(ctx, upload, targetCountry, generateHTML)
}

func (m *labelClientMock) ProcessBatch(ctx context.Context, items []labelapi.BatchItem, targetCountry string, generateHTML bool) []labelapi.BatchResult {
	m.bump()
	return m.ProcessBatchFunc(ctx, items, targetCountry, generateHTML)
}

type itemRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	CreateFunc  func(ctx context.Context, item *domain.Item) (*domain.Item, error)
	TouchFunc   func(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) error

	mu         sync.Mutex
	touchCalls int
}

func (m *itemRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *itemRepoMock) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	return m.CreateFunc(ctx, item)
}

func (m *itemRepoMock) Touch(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) error {
	m.mu.Lock()
	m.touchCalls++
	m.mu.Unlock()
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, id, updatedBy)
	}
	return nil
}

func (m *itemRepoMock) TouchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touchCalls
}

type snapshotRepoMock struct {
	UpsertFunc func(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error)

	mu      sync.Mutex
	upserts []*domain.Snapshot
}

func (m *snapshotRepoMock) Upsert(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	m.mu.Lock()
	m.upserts = append(m.upserts, snap)
	m.mu.Unlock()
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, snap)
	}
	return snap, nil
}

func (m *snapshotRepoMock) UpsertCalls() []*domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

type historyRepoMock struct {
	AppendFunc func(ctx context.Context, rec *domain.History) (*domain.History, error)

	mu      sync.Mutex
	appends []*domain.History
}

func (m *historyRepoMock) Append(ctx context.Context, rec *domain.History) (*domain.History, error) {
	m.mu.Lock()
	m.appends = append(m.appends, rec)
	m.mu.Unlock()
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, rec)
	}
	return rec, nil
}

func (m *historyRepoMock) AppendCalls() []*domain.History {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appends
}

// txManagerMock runs the function directly; transactional behavior is
// covered by the adapter's own tests.
type txManagerMock struct {
	mu   sync.Mutex
	runs int
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()
	return fn(ctx)
}

func (m *txManagerMock) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}
