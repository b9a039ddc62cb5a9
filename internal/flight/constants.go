package flight

// Purchase kinds reported in metrics
const (
	PurchaseKindTime      = "time"
	PurchaseKindPermanent = "permanent"
)

// Player-facing messages
const (
	MsgFlightEnabled   = "Flight enabled for %s."
	MsgFlightPermanent = "You can now fly forever."
	MsgFlightRevoked   = "Your flight has been revoked."
	MsgFlightResumed   = "Welcome back, your flight is active (%s left)."
	MsgItemPurchased   = "You bought %s."
	MsgSpeedSelected   = "Fly speed set to %s."
)

// Log messages
const (
	LogMsgPurchaseCompleted   = "Flight purchase completed"
	LogMsgGrantCompleted      = "Flight granted"
	LogMsgRevoked             = "Flight revoked"
	LogMsgItemPurchased       = "Item purchased"
	LogMsgRefunding           = "Persisting purchase failed, refunding"
	LogMsgRefundFailed        = "Refund failed after storage error"
	LogMsgTickRejected        = "Tick scheduler rejected game update"
	LogMsgExpiredOnJoin       = "Removing expired entitlement on join"
	LogMsgExpiredCleanup      = "Failed to remove expired entitlement"
	LogMsgExpiredRevoked      = "Expired entitlement removed"
	LogMsgExpiryRevokeSkipped = "Entitlement is active again, keeping it"
	LogMsgCacheRefreshed      = "Entitlement cache refreshed"
)

// Error messages
const (
	ErrMsgLoadEntitlement = "failed to load entitlement"
	ErrMsgSaveEntitlement = "failed to save entitlement"
	ErrMsgLoadOwnedItems  = "failed to load owned items"
	ErrMsgSaveOwnedItem   = "failed to save owned item"
)
