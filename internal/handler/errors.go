package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgInvalidPlayerID       = "Invalid player ID"

	// Flight operation error messages
	ErrMsgStatusFailed       = "Failed to get flight status"
	ErrMsgBuyTimeFailed      = "Failed to buy flight time"
	ErrMsgBuyPermanentFailed = "Failed to buy permanent flight"
	ErrMsgBuyItemFailed      = "Failed to buy item"
	ErrMsgOwnedItemsFailed   = "Failed to get owned items"
	ErrMsgSelectSpeedFailed  = "Failed to select speed"
	ErrMsgJoinFailed         = "Failed to handle join"

	// Admin error messages
	ErrMsgGrantFailed        = "Failed to grant flight"
	ErrMsgRevokeFailed       = "Failed to revoke flight"
	ErrMsgRefreshCacheFailed = "Failed to refresh cache"
	ErrMsgEntitlementsFailed = "Failed to list entitlements"
)

// Success messages for API responses
const (
	MsgFlightRevoked   = "Flight revoked"
	MsgPlayerQuit      = "Player disconnected"
	MsgCacheRefreshed  = "Entitlement cache refreshed"
	MsgPermanentFlight = "permanent"
)

// Health messages
const (
	HealthStatusOK          = "ok"
	HealthStatusUnavailable = "unavailable"
	MsgStorageNotReady      = "storage is not ready"
	LogMsgReadinessFailed   = "Readiness check failed"
)

// Route parameters
const (
	ParamPlayerID = "id"
)
