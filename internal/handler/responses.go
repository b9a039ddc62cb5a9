package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/logger"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent, nothing left to tell the client
		logger.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		logger.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed service call and maps it to a user-facing response.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, msg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(opName, "error", err)
	} else {
		log.Warn(opName, "error", err)
	}
	respondError(w, status, msg)
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgUnavailableError    = "Server is temporarily unavailable. Please try again later."
	ErrMsgNotEnoughMoneyError = "Not enough money"
	ErrMsgEconomyNotReady     = "The economy is not available right now"
	ErrMsgAlreadyPermanentErr = "You can already fly forever"
	ErrMsgNoFlightError       = "You have no active flight"
	ErrMsgUnknownItemError    = "Item not found"
	ErrMsgAlreadyOwnedError   = "You already own that item"
	ErrMsgItemNotOwnedError   = "You don't own that item"
	ErrMsgInvalidInputError   = "Invalid request. Please check your inputs."
	ErrMsgRefundFailedError   = "Purchase failed and the refund could not be completed"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	// Refund failures are joined with the storage error that caused them, so they go first
	switch {
	case errors.Is(err, domain.ErrRefundFailed):
		return http.StatusInternalServerError, ErrMsgRefundFailedError
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, ErrMsgNotEnoughMoneyError
	case errors.Is(err, domain.ErrEconomyUnavailable):
		return http.StatusServiceUnavailable, ErrMsgEconomyNotReady
	case errors.Is(err, domain.ErrAlreadyPermanent):
		return http.StatusConflict, ErrMsgAlreadyPermanentErr
	case errors.Is(err, domain.ErrAlreadyOwned):
		return http.StatusConflict, ErrMsgAlreadyOwnedError
	case errors.Is(err, domain.ErrNoEntitlement):
		return http.StatusNotFound, ErrMsgNoFlightError
	case errors.Is(err, domain.ErrUnknownItem):
		return http.StatusNotFound, ErrMsgUnknownItemError
	case errors.Is(err, domain.ErrItemNotOwned):
		return http.StatusForbidden, ErrMsgItemNotOwnedError
	case errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidItemKind),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrStorageUnavailable), errors.Is(err, domain.ErrConnectionTimeout):
		return http.StatusServiceUnavailable, ErrMsgUnavailableError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
