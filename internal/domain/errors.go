package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Economy errors
	ErrMsgInsufficientFunds  = "insufficient funds"
	ErrMsgEconomyUnavailable = "economy is not available"
	ErrMsgInvalidAmount      = "amount must be positive"
	ErrMsgInvalidDuration    = "duration must be positive"
	ErrMsgAlreadyPermanent   = "flight is already permanent"
	ErrMsgNoEntitlement      = "no active flight entitlement"
	ErrMsgUnknownItem        = "unknown item"
	ErrMsgAlreadyOwned       = "item is already owned"
	ErrMsgItemNotOwned       = "item is not owned"
	ErrMsgInvalidItemKind    = "invalid item kind"
	ErrMsgStorageUnavailable = "storage is unavailable"
	ErrMsgConnectionTimeout  = "connection timeout"
	ErrMsgInvalidInput       = "invalid input"
	ErrMsgUnsupportedStorage = "unsupported storage type"
	ErrMsgRefundFailed       = "refund failed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Economy errors
	ErrInsufficientFunds  = errors.New(ErrMsgInsufficientFunds)
	ErrEconomyUnavailable = errors.New(ErrMsgEconomyUnavailable)
	ErrInvalidAmount      = errors.New(ErrMsgInvalidAmount)
	ErrRefundFailed       = errors.New(ErrMsgRefundFailed)

	// Entitlement errors
	ErrInvalidDuration  = errors.New(ErrMsgInvalidDuration)
	ErrAlreadyPermanent = errors.New(ErrMsgAlreadyPermanent)
	ErrNoEntitlement    = errors.New(ErrMsgNoEntitlement)

	// Item errors
	ErrUnknownItem     = errors.New(ErrMsgUnknownItem)
	ErrAlreadyOwned    = errors.New(ErrMsgAlreadyOwned)
	ErrItemNotOwned    = errors.New(ErrMsgItemNotOwned)
	ErrInvalidItemKind = errors.New(ErrMsgInvalidItemKind)

	// Storage errors
	ErrStorageUnavailable = errors.New(ErrMsgStorageUnavailable)
	ErrConnectionTimeout  = errors.New(ErrMsgConnectionTimeout)
	ErrUnsupportedStorage = errors.New(ErrMsgUnsupportedStorage)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
