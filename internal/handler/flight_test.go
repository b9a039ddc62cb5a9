package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FlightShop_Go/internal/domain"
)

func TestHandleStatus(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockFlightService)
		expectedStatus int
		verifyBody     func(*testing.T, FlightResponse)
	}{
		{
			name: "Timed flight",
			id:   testPlayer.String(),
			setupMock: func(m *MockFlightService) {
				m.On("Status", mock.Anything, testPlayer).Return(domain.FlightStatus{
					OwnerID: testPlayer, Active: true, RemainingSeconds: 300,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			verifyBody: func(t *testing.T, resp FlightResponse) {
				assert.True(t, resp.Active)
				assert.Equal(t, int64(300), resp.RemainingSeconds)
				assert.Equal(t, "5m 00s", resp.Remaining)
			},
		},
		{
			name: "Permanent flight",
			id:   testPlayer.String(),
			setupMock: func(m *MockFlightService) {
				m.On("Status", mock.Anything, testPlayer).Return(domain.FlightStatus{
					OwnerID: testPlayer, Active: true, Permanent: true,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			verifyBody: func(t *testing.T, resp FlightResponse) {
				assert.True(t, resp.Permanent)
				assert.Equal(t, MsgPermanentFlight, resp.Remaining)
				assert.True(t, resp.ExpiresAt.IsZero())
			},
		},
		{
			name: "No flight",
			id:   testPlayer.String(),
			setupMock: func(m *MockFlightService) {
				m.On("Status", mock.Anything, testPlayer).Return(domain.FlightStatus{OwnerID: testPlayer}, nil)
			},
			expectedStatus: http.StatusOK,
			verifyBody: func(t *testing.T, resp FlightResponse) {
				assert.False(t, resp.Active)
				assert.Empty(t, resp.Remaining)
			},
		},
		{
			name:           "Invalid player ID",
			id:             "not-a-uuid",
			setupMock:      func(m *MockFlightService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Storage down",
			id:   testPlayer.String(),
			setupMock: func(m *MockFlightService) {
				m.On("Status", mock.Anything, testPlayer).
					Return(domain.FlightStatus{}, fmt.Errorf("load: %w", domain.ErrStorageUnavailable))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMockFlightService(t)
			tt.setupMock(svc)
			h := NewFlightHandler(svc)

			rec := httptest.NewRecorder()
			h.HandleStatus(rec, newPlayerRequest(http.MethodGet, "/api/v1/flight/"+tt.id, tt.id, ""))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.verifyBody != nil {
				var resp FlightResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				tt.verifyBody(t, resp)
			}
		})
	}
}

func TestHandleBuyTime(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockFlightService)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Success",
			body: `{"minutes": 30}`,
			setupMock: func(m *MockFlightService) {
				m.On("BuyTime", mock.Anything, testPlayer, 30*time.Minute).Return(domain.FlightStatus{
					OwnerID: testPlayer, Active: true, RemainingSeconds: 1800,
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Zero minutes",
			body:           `{"minutes": 0}`,
			setupMock:      func(m *MockFlightService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  ErrMsgInvalidRequestSummary,
		},
		{
			name:           "More than a year",
			body:           `{"minutes": 600000}`,
			setupMock:      func(m *MockFlightService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  ErrMsgInvalidRequestSummary,
		},
		{
			name:           "Malformed body",
			body:           `{"minutes":`,
			setupMock:      func(m *MockFlightService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  ErrMsgInvalidRequest,
		},
		{
			name: "Insufficient funds",
			body: `{"minutes": 10}`,
			setupMock: func(m *MockFlightService) {
				m.On("BuyTime", mock.Anything, testPlayer, 10*time.Minute).Return(domain.FlightStatus{}, domain.ErrInsufficientFunds)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  ErrMsgNotEnoughMoneyError,
		},
		{
			name: "Already permanent",
			body: `{"minutes": 10}`,
			setupMock: func(m *MockFlightService) {
				m.On("BuyTime", mock.Anything, testPlayer, 10*time.Minute).Return(domain.FlightStatus{}, domain.ErrAlreadyPermanent)
			},
			expectedStatus: http.StatusConflict,
			expectedError:  ErrMsgAlreadyPermanentErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMockFlightService(t)
			tt.setupMock(svc)
			h := NewFlightHandler(svc)

			rec := httptest.NewRecorder()
			h.HandleBuyTime(rec, newPlayerRequest(http.MethodPost, "/buy", testPlayer.String(), tt.body))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedError, resp.Error)
			}
		})
	}
}

func TestHandleBuyPermanent(t *testing.T) {
	svc := NewMockFlightService(t)
	svc.On("BuyPermanent", mock.Anything, testPlayer).Return(domain.FlightStatus{
		OwnerID: testPlayer, Active: true, Permanent: true,
	}, nil)
	h := NewFlightHandler(svc)

	rec := httptest.NewRecorder()
	h.HandleBuyPermanent(rec, newPlayerRequest(http.MethodPost, "/buy-permanent", testPlayer.String(), ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "expires_at")
	assert.Contains(t, rec.Body.String(), `"permanent":true`)
}

func TestHandleListItems(t *testing.T) {
	t.Run("Catalog and owned", func(t *testing.T) {
		svc := NewMockFlightService(t)
		catalog := []domain.CatalogItem{{Name: "clouds", Kind: domain.ItemKindEffect, Price: 250}}
		owned := []domain.OwnedItem{{OwnerID: testPlayer, Kind: domain.ItemKindEffect, Name: "clouds"}}
		svc.On("OwnedItems", mock.Anything, domain.ItemKindEffect, testPlayer).Return(owned, nil)
		svc.On("Catalog", domain.ItemKindEffect).Return(catalog)
		h := NewFlightHandler(svc)

		rec := httptest.NewRecorder()
		h.HandleListItems(domain.ItemKindEffect)(rec, newPlayerRequest(http.MethodGet, "/effects", testPlayer.String(), ""))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ItemsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, catalog, resp.Catalog)
		require.Len(t, resp.Owned, 1)
		assert.Equal(t, "clouds", resp.Owned[0].Name)
	})

	t.Run("Nothing owned renders an empty list", func(t *testing.T) {
		svc := NewMockFlightService(t)
		svc.On("OwnedItems", mock.Anything, domain.ItemKindSpeed, testPlayer).Return(nil, nil)
		svc.On("Catalog", domain.ItemKindSpeed).Return([]domain.CatalogItem{})
		h := NewFlightHandler(svc)

		rec := httptest.NewRecorder()
		h.HandleListItems(domain.ItemKindSpeed)(rec, newPlayerRequest(http.MethodGet, "/speeds", testPlayer.String(), ""))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"owned":[]`)
	})
}

func TestHandleBuyItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockFlightService)
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"name": "sparkles"}`,
			setupMock: func(m *MockFlightService) {
				m.On("BuyItem", mock.Anything, domain.ItemKindEffect, testPlayer, "sparkles").
					Return(domain.OwnedItem{OwnerID: testPlayer, Kind: domain.ItemKindEffect, Name: "sparkles"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing name",
			body:           `{}`,
			setupMock:      func(m *MockFlightService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid characters",
			body:           `{"name": "<script>"}`,
			setupMock:      func(m *MockFlightService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Unknown item",
			body: `{"name": "rainbows"}`,
			setupMock: func(m *MockFlightService) {
				m.On("BuyItem", mock.Anything, domain.ItemKindEffect, testPlayer, "rainbows").
					Return(domain.OwnedItem{}, fmt.Errorf("%w: rainbows", domain.ErrUnknownItem))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Already owned",
			body: `{"name": "sparkles"}`,
			setupMock: func(m *MockFlightService) {
				m.On("BuyItem", mock.Anything, domain.ItemKindEffect, testPlayer, "sparkles").
					Return(domain.OwnedItem{}, domain.ErrAlreadyOwned)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMockFlightService(t)
			tt.setupMock(svc)
			h := NewFlightHandler(svc)

			rec := httptest.NewRecorder()
			h.HandleBuyItem(domain.ItemKindEffect)(rec, newPlayerRequest(http.MethodPost, "/effects", testPlayer.String(), tt.body))

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestHandleSelectSpeed(t *testing.T) {
	t.Run("Owned tier", func(t *testing.T) {
		svc := NewMockFlightService(t)
		svc.On("SelectSpeed", mock.Anything, testPlayer, "fast").
			Return(domain.CatalogItem{Name: "fast", Kind: domain.ItemKindSpeed, Price: 500, Speed: 0.2}, nil)
		h := NewFlightHandler(svc)

		rec := httptest.NewRecorder()
		h.HandleSelectSpeed(rec, newPlayerRequest(http.MethodPost, "/speeds/select", testPlayer.String(), `{"name":"fast"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		var item domain.CatalogItem
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
		assert.InDelta(t, 0.2, item.Speed, 1e-9)
	})

	t.Run("Not owned", func(t *testing.T) {
		svc := NewMockFlightService(t)
		svc.On("SelectSpeed", mock.Anything, testPlayer, "fastest").Return(domain.CatalogItem{}, domain.ErrItemNotOwned)
		h := NewFlightHandler(svc)

		rec := httptest.NewRecorder()
		h.HandleSelectSpeed(rec, newPlayerRequest(http.MethodPost, "/speeds/select", testPlayer.String(), `{"name":"fastest"}`))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandleJoinAndQuit(t *testing.T) {
	svc := NewMockFlightService(t)
	svc.On("HandleJoin", mock.Anything, testPlayer).Return(domain.FlightStatus{
		OwnerID: testPlayer, Active: true, Online: true, Flying: true, RemainingSeconds: 90,
	}, nil)
	svc.On("HandleQuit", mock.Anything, testPlayer).Return()
	h := NewFlightHandler(svc)

	rec := httptest.NewRecorder()
	h.HandleJoin(rec, newPlayerRequest(http.MethodPost, "/join", testPlayer.String(), ""))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp FlightResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Flying)
	assert.Equal(t, "1m 30s", resp.Remaining)

	rec = httptest.NewRecorder()
	h.HandleQuit(rec, newPlayerRequest(http.MethodPost, "/quit", testPlayer.String(), ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgPlayerQuit)
}

func TestHandleJoin_StorageErrorStillReports(t *testing.T) {
	svc := NewMockFlightService(t)
	svc.On("HandleJoin", mock.Anything, testPlayer).
		Return(domain.FlightStatus{}, fmt.Errorf("load: %w: %w", domain.ErrStorageUnavailable, domain.ErrConnectionTimeout))
	h := NewFlightHandler(svc)

	rec := httptest.NewRecorder()
	h.HandleJoin(rec, newPlayerRequest(http.MethodPost, "/join", testPlayer.String(), ""))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrMsgUnavailableError)
}
