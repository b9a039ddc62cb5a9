package cached

// Log messages
const (
	LogMsgWriteBackFailed   = "Write-back persistence failed, evicting cached entitlement"
	LogMsgRemoveBackFailed  = "Write-back removal failed"
	LogMsgPreloadStarted    = "Preloading entitlement cache"
	LogMsgPreloadCompleted  = "Entitlement cache preloaded"
	LogMsgPreloadFailed     = "Entitlement cache preload failed"
	LogMsgFlushTimeout      = "Timed out waiting for write-back tasks"
	LogMsgDispatchFallback  = "Background dispatcher rejected task, running on a new goroutine"
	LogMsgThroughWriteEvict = "Write-through persistence failed, evicting cached entitlement"
	LogMsgWriteAfterClose   = "Store is closing, running background write inline"
)

// Error messages
const (
	ErrMsgUnknownMode = "unknown cache write mode"
)
