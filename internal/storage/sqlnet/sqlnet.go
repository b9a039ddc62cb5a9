// Package sqlnet is the networked SQL backend (MySQL or PostgreSQL). Every operation
// borrows a connection from a bounded pool and runs under the retrying executor.
package sqlnet

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/database"
	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/retry"
	"github.com/osse101/FlightShop_Go/internal/storage"
	"github.com/osse101/FlightShop_Go/internal/storage/sqlstore"
)

// Config configures the networked SQL backend.
type Config struct {
	Pool     database.Config
	Executor *retry.Executor
	// Retryable overrides IsRetryable.
	Retryable retry.Predicate
}

// Store is the networked SQL backend.
type Store struct {
	cfg       Config
	stmts     sqlstore.Statements
	exec      *retry.Executor
	retryable retry.Predicate
	now       func() time.Time

	mu   sync.RWMutex
	pool *database.Pool
}

// New creates a networked SQL backend. Nothing is dialled until Init.
func New(cfg Config) (*Store, error) {
	d := cfg.Pool.Dialect
	if d != database.DialectMySQL && d != database.DialectPostgres {
		return nil, fmt.Errorf("%s: %q", ErrMsgUnsupportedDialect, string(d))
	}

	exec := cfg.Executor
	if exec == nil {
		exec = retry.NewExecutor(retry.DefaultPolicy())
	}
	pred := cfg.Retryable
	if pred == nil {
		pred = IsRetryable
	}

	return &Store{
		cfg:       cfg,
		stmts:     sqlstore.For(d),
		exec:      exec,
		retryable: pred,
		now:       time.Now,
	}, nil
}

var _ storage.Backend = (*Store)(nil)

// Init migrates the schema and opens the pool. Failures are returned as-is, never retried.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		return nil
	}

	if err := s.migrate(ctx); err != nil {
		return err
	}

	pool, err := database.Open(ctx, s.cfg.Pool)
	if err != nil {
		return err
	}
	s.pool = pool

	logger.FromContext(ctx).Info(LogMsgReady,
		"dialect", string(s.cfg.Pool.Dialect),
		"pool_size", s.cfg.Pool.MaxConnections)
	return nil
}

// migrate runs on a short-lived handle so schema work never competes with pool slots.
func (s *Store) migrate(ctx context.Context) error {
	d := s.cfg.Pool.Dialect
	db, err := sql.Open(d.DriverName(), s.cfg.Pool.DSN)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgMigrationDB, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgMigrationDB, err)
	}
	return database.Migrate(ctx, db, d)
}

// Close drains the pool, waiting until ctx is done for borrowed connections.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.mu.Unlock()

	if pool == nil {
		return nil
	}
	return pool.Close(ctx)
}

func (s *Store) SetEntitlement(ctx context.Context, owner uuid.UUID, expiresAt time.Time) error {
	return s.run(ctx, OpSetEntitlement, func(ctx context.Context, conn *sql.Conn) error {
		return sqlstore.SetEntitlement(ctx, conn, s.stmts, owner, expiresAt, s.now())
	})
}

func (s *Store) GetEntitlement(ctx context.Context, owner uuid.UUID) (time.Time, bool, error) {
	var (
		expiresAt time.Time
		found     bool
	)
	err := s.run(ctx, OpGetEntitlement, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		expiresAt, found, err = sqlstore.GetEntitlement(ctx, conn, s.stmts, owner)
		return err
	})
	if err != nil {
		return time.Time{}, false, err
	}
	return expiresAt, found, nil
}

func (s *Store) RemoveEntitlement(ctx context.Context, owner uuid.UUID) error {
	return s.run(ctx, OpRemoveEntitlement, func(ctx context.Context, conn *sql.Conn) error {
		return sqlstore.RemoveEntitlement(ctx, conn, s.stmts, owner)
	})
}

func (s *Store) GetAllEntitlements(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	var all map[uuid.UUID]time.Time
	err := s.run(ctx, OpGetAllEntitlements, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		all, err = sqlstore.GetAllEntitlements(ctx, conn, s.stmts)
		return err
	})
	return all, err
}

func (s *Store) AddOwnedItem(ctx context.Context, item domain.OwnedItem) error {
	return s.run(ctx, OpAddOwnedItem, func(ctx context.Context, conn *sql.Conn) error {
		return sqlstore.AddOwnedItem(ctx, conn, s.stmts, item)
	})
}

func (s *Store) RemoveOwnedItem(ctx context.Context, kind domain.ItemKind, owner uuid.UUID, name string) error {
	return s.run(ctx, OpRemoveOwnedItem, func(ctx context.Context, conn *sql.Conn) error {
		return sqlstore.RemoveOwnedItem(ctx, conn, s.stmts, kind, owner, name)
	})
}

func (s *Store) GetOwnedItems(ctx context.Context, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error) {
	var items []domain.OwnedItem
	err := s.run(ctx, OpGetOwnedItems, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		items, err = sqlstore.GetOwnedItems(ctx, conn, s.stmts, kind, owner)
		return err
	})
	return items, err
}

func (s *Store) GetAllOwnedItems(ctx context.Context, kind domain.ItemKind) (map[uuid.UUID][]domain.OwnedItem, error) {
	var all map[uuid.UUID][]domain.OwnedItem
	err := s.run(ctx, OpGetAllOwnedItems, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		all, err = sqlstore.GetAllOwnedItems(ctx, conn, s.stmts, kind)
		return err
	})
	return all, err
}

// Diagnostics reports pool occupancy and retry counters.
func (s *Store) Diagnostics() storage.Diagnostics {
	d := storage.Diagnostics{Backend: string(s.cfg.Pool.Dialect)}

	stats := s.exec.Stats()
	d.Retry = &stats

	s.mu.RLock()
	if s.pool != nil {
		ps := s.pool.Stats()
		d.Pool = &ps
	}
	s.mu.RUnlock()
	return d
}

// run borrows a connection for one attempt of fn; pool exhaustion counts as a transient
// failure of that attempt.
func (s *Store) run(ctx context.Context, op string, fn func(ctx context.Context, conn *sql.Conn) error) error {
	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()

	if pool == nil {
		return storage.ErrClosed
	}

	return s.exec.Execute(ctx, op, func(ctx context.Context) error {
		return pool.WithConn(ctx, fn)
	}, s.retryable)
}
