package sqlite

// Error messages
const (
	ErrMsgOpenFailed = "failed to open sqlite database"
)

// Log messages
const (
	LogMsgOpened          = "SQLite storage opened"
	LogMsgOperationFailed = "SQLite storage operation failed"
)
