package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/database"
	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/retry"
)

// Type selects a durable backend.
type Type string

const (
	TypeFile     Type = "file"
	TypeSQLite   Type = "sqlite"
	TypeMySQL    Type = "mysql"
	TypePostgres Type = "postgres"
	TypeRedis    Type = "redis"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New(ErrMsgBackendClosed)

// Backend persists flight entitlements and owned items. Exactly one backend is the source
// of truth at a time.
//
// Init prepares the backend and must be called before anything else; a failure is fatal
// to startup. Close releases resources and is idempotent.
type Backend interface {
	Init(ctx context.Context) error
	Close(ctx context.Context) error

	SetEntitlement(ctx context.Context, owner uuid.UUID, expiresAt time.Time) error
	// GetEntitlement reports found=false when the owner has no stored entitlement.
	GetEntitlement(ctx context.Context, owner uuid.UUID) (expiresAt time.Time, found bool, err error)
	RemoveEntitlement(ctx context.Context, owner uuid.UUID) error
	// GetAllEntitlements reads every stored entitlement. Used for preload and reporting only.
	GetAllEntitlements(ctx context.Context) (map[uuid.UUID]time.Time, error)

	// AddOwnedItem records a purchase; adding an item that is already owned is a no-op.
	AddOwnedItem(ctx context.Context, item domain.OwnedItem) error
	RemoveOwnedItem(ctx context.Context, kind domain.ItemKind, owner uuid.UUID, name string) error
	// GetOwnedItems returns the owner's items of one kind sorted by name.
	GetOwnedItems(ctx context.Context, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error)
	GetAllOwnedItems(ctx context.Context, kind domain.ItemKind) (map[uuid.UUID][]domain.OwnedItem, error)
}

// Diagnostics describes a backend for operators.
type Diagnostics struct {
	Backend string              `json:"backend"`
	Pool    *database.PoolStats `json:"pool,omitempty"`
	Retry   *retry.Stats        `json:"retry,omitempty"`
}

// DiagnosticsReporter is implemented by backends that expose operator statistics.
type DiagnosticsReporter interface {
	Diagnostics() Diagnostics
}

// Describe returns the backend's diagnostics, or just its name when it reports none.
func Describe(b Backend, name string) Diagnostics {
	if r, ok := b.(DiagnosticsReporter); ok {
		return r.Diagnostics()
	}
	return Diagnostics{Backend: name}
}
