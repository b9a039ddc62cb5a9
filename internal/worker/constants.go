package worker

// Log messages
const (
	LogMsgWorkerJobFailed    = "Worker job failed"
	LogMsgWorkerJobPanicked  = "Worker job panicked"
	LogMsgWorkerPoolStarted  = "Worker pool started"
	LogMsgWorkerPoolStopped  = "Worker pool stopped"
	LogMsgWorkerStopTimedOut = "Worker pool stop timed out, abandoning queued jobs"
)

// Error messages
const (
	ErrMsgPoolStopped = "worker pool stopped"
	ErrMsgQueueFull   = "worker queue full"
)
