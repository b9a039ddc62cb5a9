package bootstrap

import "time"

// File system permissions
const (
	DirPermission     = 0755
	LogFilePermission = 0644
)

// Logger configuration
const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"
	LogFileNamePattern     = "session_%s.log"
	LogFileExtension       = ".log"

	// LogFileRetentionCount is how many session logs survive startup cleanup, including the new one
	LogFileRetentionCount = 10
)

// DiagnosticsInterval is how often the diagnostics job logs subsystem state.
const DiagnosticsInterval = time.Minute

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStarting            = "Starting FlightShop"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"
	ErrMsgFailedCreateLogsDir = "failed to create logs directory"
	ErrMsgFailedOpenLogFile   = "failed to open log file"
)

// Log messages for component wiring
const (
	LogMsgBackendSelected  = "Storage backend selected"
	LogMsgBreakerEnabled   = "Circuit breaker enabled"
	LogMsgStorageReady     = "Storage initialized"
	LogMsgDiagnostics      = "Flight diagnostics"
	ErrMsgBuildBackend     = "failed to build storage backend"
	ErrMsgInitStorage      = "failed to initialize storage"
	ErrMsgInvalidWriteMode = "invalid cache write mode"
)

// Shutdown messages
const (
	LogMsgShuttingDownServer   = "Shutting down server..."
	LogMsgServerForcedShutdown = "Server forced to shutdown"
	LogMsgCountdownsStopped    = "Countdowns stopped"
	LogMsgSchedulerStopFailed  = "Tick scheduler shutdown failed"
	LogMsgStorageCloseFailed   = "Storage flush and close failed"
	LogMsgWorkerPoolStopFailed = "Worker pool shutdown failed"
	LogMsgServerStopped        = "Server stopped"
)
