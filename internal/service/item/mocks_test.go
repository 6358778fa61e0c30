package item

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
)

var (
	_ itemRepo     = &itemRepoMock{}
	_ snapshotRepo = &snapshotRepoMock{}
	_ historyRepo  = &historyRepoMock{}
)

type itemRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListFunc    func(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	SearchFunc  func(ctx context.Context, keyword string, filter domain.ItemFilter) ([]domain.Item, error)
	CreateFunc  func(ctx context.Context, item *domain.Item) (*domain.Item, error)
	UpdateFunc  func(ctx context.Context, item *domain.Item) (*domain.Item, error)
	DeleteFunc  func(ctx context.Context, id uuid.UUID) error

	mu          sync.Mutex
	deleteCalls []uuid.UUID
}

func (m *itemRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *itemRepoMock) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	return m.ListFunc(ctx, filter)
}

func (m *itemRepoMock) Search(ctx context.Context, keyword string, filter domain.ItemFilter) ([]domain.Item, error) {
	return m.SearchFunc(ctx, keyword, filter)
}

func (m *itemRepoMock) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	return m.CreateFunc(ctx, item)
}

func (m *itemRepoMock) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	return m.UpdateFunc(ctx, item)
}

func (m *itemRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	m.deleteCalls = append(m.deleteCalls, id)
	m.mu.Unlock()
	return m.DeleteFunc(ctx, id)
}

func (m *itemRepoMock) DeleteCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCalls
}

type snapshotRepoMock struct {
	ListByItemFunc   func(ctx context.Context, itemID uuid.UUID) ([]domain.Snapshot, error)
	DeleteByItemFunc func(ctx context.Context, itemID uuid.UUID) error

	mu                sync.Mutex
	deleteByItemCalls []uuid.UUID
}

func (m *snapshotRepoMock) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.Snapshot, error) {
	return m.ListByItemFunc(ctx, itemID)
}

func (m *snapshotRepoMock) DeleteByItem(ctx context.Context, itemID uuid.UUID) error {
	m.mu.Lock()
	m.deleteByItemCalls = append(m.deleteByItemCalls, itemID)
	m.mu.Unlock()
	if m.DeleteByItemFunc != nil {
		return m.DeleteByItemFunc(ctx, itemID)
	}
	return nil
}

func (m *snapshotRepoMock) DeleteByItemCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteByItemCalls
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
