package database

import "time"

// Pool defaults
const (
	DefaultMaxConnections    = 10
	DefaultAcquireTimeout    = 5 * time.Second
	DefaultValidationTimeout = 2 * time.Second
)

// Error Messages - Database Operations
const (
	ErrMsgPoolExhausted          = "connection pool exhausted"
	ErrMsgPoolClosed             = "connection pool closed"
	ErrMsgFailedToOpenDatabase   = "failed to open database"
	ErrMsgFailedToPingDatabase   = "failed to ping database"
	ErrMsgFailedToOpenConnection = "failed to open connection"
	ErrMsgFailedToMigrate        = "failed to apply migrations"
	ErrMsgUnsupportedDialect     = "unsupported SQL dialect"
	ErrMsgFailedToLoadMigrations = "failed to load migrations"
)

// Log Messages
const (
	LogMsgSuccessfullyConnectedToDatabase = "Successfully connected to the database"
	LogMsgConnectionDiscarded             = "Discarding connection that failed liveness check"
	LogMsgPoolClosing                     = "Closing connection pool"
	LogMsgPoolForceClose                  = "Connection pool close timed out, force-closing borrowed connections"
	LogMsgMigrationsApplied               = "Database migrations applied"
)
