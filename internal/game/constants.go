package game

// Defaults
const (
	DefaultFlySpeed   = 0.1
	MaxMessageHistory = 50
)

// Log messages
const (
	LogMsgPlayerJoined = "Player joined"
	LogMsgPlayerLeft   = "Player left"
)
