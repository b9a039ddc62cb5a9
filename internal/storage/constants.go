package storage

// Error messages
const (
	ErrMsgBackendClosed = "storage backend is closed"
)
