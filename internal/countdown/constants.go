package countdown

import "time"

// Defaults
const (
	DefaultTickInterval     = time.Second
	DefaultShowBefore       = 5 * time.Minute
	DefaultWarnBefore       = time.Minute
	DefaultReminderInterval = 15 * time.Second
)

// Player-facing messages
const (
	MsgTimerText       = "Flight: %s"
	MsgReminder        = "Your flight ends in %s."
	MsgExpired         = "Your flight time has run out."
	MsgCountdownCancel = "Your flight countdown was cancelled."
)

// Log messages
const (
	LogMsgCountdownStarted   = "Flight countdown started"
	LogMsgCountdownReplaced  = "Replacing existing flight countdown"
	LogMsgCountdownExpired   = "Flight countdown expired"
	LogMsgCountdownCancelled = "Flight countdown cancelled"
	LogMsgOwnerDisconnected  = "Owner disconnected, dropping flight countdown"
	LogMsgRevokeFailed       = "Failed to remove expired entitlement"
	LogMsgAsyncRejected      = "Worker pool rejected revocation, running it on a new goroutine"
	LogMsgTickTaskStarted    = "Countdown tick task started"
	LogMsgTickTaskStopped    = "Countdown tick task stopped, no active countdowns"
)
