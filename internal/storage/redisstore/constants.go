package redisstore

// Operation names used for retry statistics and logs
const (
	OpSetEntitlement     = "redis.set_entitlement"
	OpGetEntitlement     = "redis.get_entitlement"
	OpRemoveEntitlement  = "redis.remove_entitlement"
	OpGetAllEntitlements = "redis.get_all_entitlements"
	OpAddOwnedItem       = "redis.add_owned_item"
	OpRemoveOwnedItem    = "redis.remove_owned_item"
	OpGetOwnedItems      = "redis.get_owned_items"
	OpGetAllOwnedItems   = "redis.get_all_owned_items"
)

// DefaultPrefix namespaces every key.
const DefaultPrefix = "flight"

// Error messages
const (
	ErrMsgPingFailed = "failed to reach redis"
)

// Log messages
const (
	LogMsgReady              = "Redis storage ready"
	LogMsgSkippingInvalidRow = "Skipping malformed redis entry"
)
