package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/FlightShop_Go/internal/domain"
)

func TestMapServiceErrorToUserMessage(t *testing.T) {
	storageDown := fmt.Errorf("failed to save entitlement: %w: %w", domain.ErrStorageUnavailable, errors.New("connection reset"))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"nil", nil, http.StatusInternalServerError, ErrMsgUnknownError},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusBadRequest, ErrMsgNotEnoughMoneyError},
		{"economy not ready", domain.ErrEconomyUnavailable, http.StatusServiceUnavailable, ErrMsgEconomyNotReady},
		{"already permanent", domain.ErrAlreadyPermanent, http.StatusConflict, ErrMsgAlreadyPermanentErr},
		{"already owned", domain.ErrAlreadyOwned, http.StatusConflict, ErrMsgAlreadyOwnedError},
		{"no entitlement", domain.ErrNoEntitlement, http.StatusNotFound, ErrMsgNoFlightError},
		{"wrapped unknown item", fmt.Errorf("%w: rainbows", domain.ErrUnknownItem), http.StatusNotFound, ErrMsgUnknownItemError},
		{"not owned", domain.ErrItemNotOwned, http.StatusForbidden, ErrMsgItemNotOwnedError},
		{"invalid duration", domain.ErrInvalidDuration, http.StatusBadRequest, ErrMsgInvalidInputError},
		{"storage", storageDown, http.StatusServiceUnavailable, ErrMsgUnavailableError},
		{"refund failed wins over storage", errors.Join(storageDown, domain.ErrRefundFailed), http.StatusInternalServerError, ErrMsgRefundFailedError},
		{"unknown errors are not echoed", errors.New("pq: relation does not exist"), http.StatusInternalServerError, ErrMsgGenericServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := mapServiceErrorToUserMessage(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
