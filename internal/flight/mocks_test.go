package flight

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/FlightShop_Go/internal/cache"
	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/storage"
)

// MockStore is a testify mock of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) SetEntitlement(ctx context.Context, owner uuid.UUID, expiresAt time.Time) error {
	return m.Called(ctx, owner, expiresAt).Error(0)
}

func (m *MockStore) GetEntitlement(ctx context.Context, owner uuid.UUID) (time.Time, bool, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *MockStore) RemoveEntitlement(ctx context.Context, owner uuid.UUID) error {
	return m.Called(ctx, owner).Error(0)
}

func (m *MockStore) GetAllEntitlements(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]time.Time), args.Error(1)
}

func (m *MockStore) AddOwnedItem(ctx context.Context, item domain.OwnedItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockStore) RemoveOwnedItem(ctx context.Context, kind domain.ItemKind, owner uuid.UUID, name string) error {
	return m.Called(ctx, kind, owner, name).Error(0)
}

func (m *MockStore) GetOwnedItems(ctx context.Context, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error) {
	args := m.Called(ctx, kind, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OwnedItem), args.Error(1)
}

func (m *MockStore) GetAllOwnedItems(ctx context.Context, kind domain.ItemKind) (map[uuid.UUID][]domain.OwnedItem, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]domain.OwnedItem), args.Error(1)
}

func (m *MockStore) RefreshCache(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CacheStats() cache.Stats {
	return m.Called().Get(0).(cache.Stats)
}

func (m *MockStore) Diagnostics() storage.Diagnostics {
	return m.Called().Get(0).(storage.Diagnostics)
}

// inlineRunner runs tick tasks immediately.
type inlineRunner struct{}

func (inlineRunner) RunTask(fn func()) bool {
	fn()
	return true
}

// fakeCountdowns records the registry calls.
type fakeCountdowns struct {
	mu     sync.Mutex
	active map[uuid.UUID]time.Time
	starts int
}

func newFakeCountdowns() *fakeCountdowns {
	return &fakeCountdowns{active: map[uuid.UUID]time.Time{}}
}

func (f *fakeCountdowns) Start(owner uuid.UUID, expiresAt time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if domain.IsPermanent(expiresAt) {
		delete(f.active, owner)
		return false
	}
	f.active[owner] = expiresAt
	f.starts++
	return true
}

func (f *fakeCountdowns) Cancel(owner uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.active[owner]
	delete(f.active, owner)
	return ok
}

func (f *fakeCountdowns) Disconnect(owner uuid.UUID) bool {
	return f.Cancel(owner)
}

func (f *fakeCountdowns) Remaining(owner uuid.UUID) (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.active[owner]
	return time.Until(t), ok
}

func (f *fakeCountdowns) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}

func (f *fakeCountdowns) expiry(owner uuid.UUID) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.active[owner]
	return t, ok
}
