package sqlnet

// Operation names used for retry statistics and logs
const (
	OpSetEntitlement     = "sql.set_entitlement"
	OpGetEntitlement     = "sql.get_entitlement"
	OpRemoveEntitlement  = "sql.remove_entitlement"
	OpGetAllEntitlements = "sql.get_all_entitlements"
	OpAddOwnedItem       = "sql.add_owned_item"
	OpRemoveOwnedItem    = "sql.remove_owned_item"
	OpGetOwnedItems      = "sql.get_owned_items"
	OpGetAllOwnedItems   = "sql.get_all_owned_items"
)

// Error messages
const (
	ErrMsgUnsupportedDialect = "networked SQL backend supports mysql and postgres only"
	ErrMsgMigrationDB        = "failed to open migration connection"
)

// Log messages
const (
	LogMsgReady = "Networked SQL storage ready"
)
