package cache

import "time"

// Default configuration values
const (
	DefaultMaxSize         = 1000
	DefaultTTL             = 30 * time.Minute
	DefaultCleanupInterval = 5 * time.Minute
)

// Log messages
const (
	LogMsgSweepCompleted   = "Entitlement cache sweep removed expired entries"
	LogMsgSweepStopped     = "Entitlement cache sweeper stopped"
	LogMsgShutdownTimeout  = "Entitlement cache sweeper did not stop in time, clearing anyway"
	LogMsgPreloadCompleted = "Entitlement cache preloaded"
)
