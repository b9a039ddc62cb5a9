package flight

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/cache"
	"github.com/osse101/FlightShop_Go/internal/storage"
)

// Store is the cached entitlement store.
type Store interface {
	storage.Backend
	RefreshCache(ctx context.Context) (int, error)
	CacheStats() cache.Stats
	Diagnostics() storage.Diagnostics
}

// Economy gates purchases.
type Economy interface {
	IsInitialized() bool
	Balance(owner uuid.UUID) int64
	Withdraw(owner uuid.UUID, amount int64) bool
	Deposit(owner uuid.UUID, amount int64) bool
}

// Game is the game-state collaborator.
type Game interface {
	Join(owner uuid.UUID)
	Quit(owner uuid.UUID)
	IsOnline(owner uuid.UUID) bool
	CanFly(owner uuid.UUID) bool
	SetFlight(owner uuid.UUID, enabled bool)
	SetFlySpeed(owner uuid.UUID, speed float64)
	SendMessage(owner uuid.UUID, msg string)
}

// Countdowns is the countdown registry.
type Countdowns interface {
	Start(owner uuid.UUID, expiresAt time.Time) bool
	Cancel(owner uuid.UUID) bool
	Disconnect(owner uuid.UUID) bool
	Remaining(owner uuid.UUID) (time.Duration, bool)
	Active() int
}

// TaskRunner posts game-state changes to the tick goroutine.
type TaskRunner interface {
	RunTask(fn func()) bool
}
