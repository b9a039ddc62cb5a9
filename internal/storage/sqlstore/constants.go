package sqlstore

// Error messages
const (
	ErrMsgSetEntitlementFailed     = "failed to store entitlement"
	ErrMsgGetEntitlementFailed     = "failed to read entitlement"
	ErrMsgRemoveEntitlementFailed  = "failed to remove entitlement"
	ErrMsgGetAllEntitlementsFailed = "failed to read entitlements"
	ErrMsgAddOwnedItemFailed       = "failed to store owned item"
	ErrMsgRemoveOwnedItemFailed    = "failed to remove owned item"
	ErrMsgGetOwnedItemsFailed      = "failed to read owned items"
)
