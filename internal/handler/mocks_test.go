package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/flight"
)

// MockFlightService mocks flight.Service
type MockFlightService struct {
	mock.Mock
}

// NewMockFlightService creates a mock that asserts its expectations on cleanup.
func NewMockFlightService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFlightService {
	m := &MockFlightService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFlightService) status(args mock.Arguments) (domain.FlightStatus, error) {
	st, _ := args.Get(0).(domain.FlightStatus)
	return st, args.Error(1)
}

func (m *MockFlightService) BuyTime(ctx context.Context, owner uuid.UUID, d time.Duration) (domain.FlightStatus, error) {
	return m.status(m.Called(ctx, owner, d))
}

func (m *MockFlightService) BuyPermanent(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error) {
	return m.status(m.Called(ctx, owner))
}

func (m *MockFlightService) Grant(ctx context.Context, owner uuid.UUID, d time.Duration) (domain.FlightStatus, error) {
	return m.status(m.Called(ctx, owner, d))
}

func (m *MockFlightService) GrantPermanent(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error) {
	return m.status(m.Called(ctx, owner))
}

func (m *MockFlightService) Revoke(ctx context.Context, owner uuid.UUID) error {
	return m.Called(ctx, owner).Error(0)
}

func (m *MockFlightService) RevokeExpired(ctx context.Context, owner uuid.UUID) error {
	return m.Called(ctx, owner).Error(0)
}

func (m *MockFlightService) Status(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error) {
	return m.status(m.Called(ctx, owner))
}

func (m *MockFlightService) HandleJoin(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error) {
	return m.status(m.Called(ctx, owner))
}

func (m *MockFlightService) HandleQuit(ctx context.Context, owner uuid.UUID) {
	m.Called(ctx, owner)
}

func (m *MockFlightService) BuyItem(ctx context.Context, kind domain.ItemKind, owner uuid.UUID, name string) (domain.OwnedItem, error) {
	args := m.Called(ctx, kind, owner, name)
	item, _ := args.Get(0).(domain.OwnedItem)
	return item, args.Error(1)
}

func (m *MockFlightService) OwnedItems(ctx context.Context, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error) {
	args := m.Called(ctx, kind, owner)
	items, _ := args.Get(0).([]domain.OwnedItem)
	return items, args.Error(1)
}

func (m *MockFlightService) SelectSpeed(ctx context.Context, owner uuid.UUID, name string) (domain.CatalogItem, error) {
	args := m.Called(ctx, owner, name)
	item, _ := args.Get(0).(domain.CatalogItem)
	return item, args.Error(1)
}

func (m *MockFlightService) Catalog(kind domain.ItemKind) []domain.CatalogItem {
	items, _ := m.Called(kind).Get(0).([]domain.CatalogItem)
	return items
}

func (m *MockFlightService) Diagnostics(ctx context.Context) flight.Diagnostics {
	d, _ := m.Called(ctx).Get(0).(flight.Diagnostics)
	return d
}

func (m *MockFlightService) RefreshCache(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightService) AllEntitlements(ctx context.Context) ([]domain.Entitlement, error) {
	args := m.Called(ctx)
	all, _ := args.Get(0).([]domain.Entitlement)
	return all, args.Error(1)
}

var _ flight.Service = (*MockFlightService)(nil)
