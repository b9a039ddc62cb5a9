package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FlightShop_Go/internal/cache"
	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/flight"
	"github.com/osse101/FlightShop_Go/internal/storage"
)

func TestHandleGrant(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockFlightService)
		expectedStatus int
	}{
		{
			name: "Timed grant",
			body: `{"minutes": 15}`,
			setupMock: func(m *MockFlightService) {
				m.On("Grant", mock.Anything, testPlayer, 15*time.Minute).
					Return(domain.FlightStatus{OwnerID: testPlayer, Active: true, RemainingSeconds: 900}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Permanent grant ignores minutes",
			body: `{"permanent": true}`,
			setupMock: func(m *MockFlightService) {
				m.On("GrantPermanent", mock.Anything, testPlayer).
					Return(domain.FlightStatus{OwnerID: testPlayer, Active: true, Permanent: true}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Neither minutes nor permanent",
			body:           `{}`,
			setupMock:      func(m *MockFlightService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Negative minutes",
			body:           `{"minutes": -5}`,
			setupMock:      func(m *MockFlightService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Extending permanent flight",
			body: `{"minutes": 5}`,
			setupMock: func(m *MockFlightService) {
				m.On("Grant", mock.Anything, testPlayer, 5*time.Minute).Return(domain.FlightStatus{}, domain.ErrAlreadyPermanent)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMockFlightService(t)
			tt.setupMock(svc)
			h := NewAdminFlightHandler(svc)

			rec := httptest.NewRecorder()
			h.HandleGrant(rec, newPlayerRequest(http.MethodPost, "/grant", testPlayer.String(), tt.body))

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestHandleRevoke(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := NewMockFlightService(t)
		svc.On("Revoke", mock.Anything, testPlayer).Return(nil)
		h := NewAdminFlightHandler(svc)

		rec := httptest.NewRecorder()
		h.HandleRevoke(rec, newPlayerRequest(http.MethodPost, "/revoke", testPlayer.String(), ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), MsgFlightRevoked)
	})

	t.Run("Nothing to revoke", func(t *testing.T) {
		svc := NewMockFlightService(t)
		svc.On("Revoke", mock.Anything, testPlayer).Return(domain.ErrNoEntitlement)
		h := NewAdminFlightHandler(svc)

		rec := httptest.NewRecorder()
		h.HandleRevoke(rec, newPlayerRequest(http.MethodPost, "/revoke", testPlayer.String(), ""))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleDiagnostics(t *testing.T) {
	svc := NewMockFlightService(t)
	svc.On("Diagnostics", mock.Anything).Return(flight.Diagnostics{
		Storage:          storage.Diagnostics{Backend: "sqlite"},
		Cache:            cache.Stats{Hits: 3, Misses: 1, Size: 2, MaxSize: 100, HitRate: 0.75},
		ActiveCountdowns: 2,
		EconomyReady:     true,
	})
	h := NewAdminFlightHandler(svc)

	rec := httptest.NewRecorder()
	h.HandleDiagnostics(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/diagnostics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp flight.Diagnostics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sqlite", resp.Storage.Backend)
	assert.Equal(t, int64(3), resp.Cache.Hits)
	assert.Equal(t, 2, resp.ActiveCountdowns)
	assert.True(t, resp.EconomyReady)
}

func TestHandleRefreshCache(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := NewMockFlightService(t)
		svc.On("RefreshCache", mock.Anything).Return(7, nil)
		h := NewAdminFlightHandler(svc)

		rec := httptest.NewRecorder()
		h.HandleRefreshCache(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/cache/refresh", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp RefreshResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 7, resp.Entries)
	})

	t.Run("Backend down", func(t *testing.T) {
		svc := NewMockFlightService(t)
		svc.On("RefreshCache", mock.Anything).Return(0, errors.Join(domain.ErrStorageUnavailable, errors.New("dial tcp: refused")))
		h := NewAdminFlightHandler(svc)

		rec := httptest.NewRecorder()
		h.HandleRefreshCache(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/cache/refresh", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NotContains(t, rec.Body.String(), "dial tcp")
	})
}

func TestHandleEntitlements(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	expired := uuid.New()
	timed := uuid.New()
	forever := uuid.New()
	all := []domain.Entitlement{
		{OwnerID: expired, ExpiresAt: now.Add(-time.Minute)},
		{OwnerID: timed, ExpiresAt: now.Add(90 * time.Second)},
		{OwnerID: forever, ExpiresAt: domain.PermanentExpiry},
	}

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) []EntitlementView {
		t.Helper()
		var resp struct {
			Data []EntitlementView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Data
	}

	t.Run("All", func(t *testing.T) {
		svc := NewMockFlightService(t)
		svc.On("AllEntitlements", mock.Anything).Return(all, nil)
		h := NewAdminFlightHandler(svc)
		h.now = func() time.Time { return now }

		rec := httptest.NewRecorder()
		h.HandleEntitlements(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/entitlements", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		views := decode(t, rec)
		require.Len(t, views, 3)
		assert.False(t, views[0].Active)
		assert.Equal(t, int64(90), views[1].RemainingSeconds)
		assert.True(t, views[2].Permanent)
		assert.True(t, views[2].ExpiresAt.IsZero())
	})

	t.Run("Active only", func(t *testing.T) {
		svc := NewMockFlightService(t)
		svc.On("AllEntitlements", mock.Anything).Return(all, nil)
		h := NewAdminFlightHandler(svc)
		h.now = func() time.Time { return now }

		rec := httptest.NewRecorder()
		h.HandleEntitlements(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/entitlements?active=true", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		views := decode(t, rec)
		require.Len(t, views, 2)
		assert.Equal(t, timed, views[0].OwnerID)
		assert.Equal(t, forever, views[1].OwnerID)
	})

	t.Run("Bad filter", func(t *testing.T) {
		svc := NewMockFlightService(t)
		h := NewAdminFlightHandler(svc)

		rec := httptest.NewRecorder()
		h.HandleEntitlements(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/entitlements?active=maybe", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
