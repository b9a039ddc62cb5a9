package scheduler

// Log messages
const (
	LogMsgTaskPanicked     = "Scheduled task panicked"
	LogMsgJobQueueFull     = "Worker queue full, skipping scheduled job run"
	LogMsgSchedulerStopped = "Tick scheduler stopped"
	LogMsgStopTimedOut     = "Tick scheduler stop timed out"
)

// Error messages
const (
	ErrMsgNoWorkerPool = "scheduler has no worker pool"
)
