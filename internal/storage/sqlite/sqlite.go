// Package sqlite is the embedded SQL backend: one persistent connection, one statement per
// operation, no pooling and no retry.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/database"
	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/storage"
	"github.com/osse101/FlightShop_Go/internal/storage/sqlstore"
)

// Store is the SQLite backend.
type Store struct {
	path  string
	stmts sqlstore.Statements
	now   func() time.Time

	mu sync.RWMutex
	db *sql.DB
}

// New creates a SQLite backend for the database file at path.
func New(path string) *Store {
	return &Store{
		path:  path,
		stmts: sqlstore.For(database.DialectSQLite),
		now:   time.Now,
	}
}

var _ storage.Backend = (*Store)(nil)

// Init opens the database file, creating it and the schema if needed.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgOpenFailed, err)
	}

	db, err := sql.Open(database.DialectSQLite.DriverName(), s.path)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgOpenFailed, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%s: %w", ErrMsgOpenFailed, err)
	}
	if err := database.Migrate(ctx, db, database.DialectSQLite); err != nil {
		_ = db.Close()
		return err
	}

	// a single persistent connection from here on
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s.db = db
	logger.FromContext(ctx).Info(LogMsgOpened, "path", s.path)
	return nil
}

// Close closes the connection. Safe to call more than once.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) SetEntitlement(ctx context.Context, owner uuid.UUID, expiresAt time.Time) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return s.logged(ctx, "set_entitlement", sqlstore.SetEntitlement(ctx, db, s.stmts, owner, expiresAt, s.now()))
}

func (s *Store) GetEntitlement(ctx context.Context, owner uuid.UUID) (time.Time, bool, error) {
	db, err := s.conn()
	if err != nil {
		return time.Time{}, false, err
	}
	t, found, err := sqlstore.GetEntitlement(ctx, db, s.stmts, owner)
	return t, found, s.logged(ctx, "get_entitlement", err)
}

func (s *Store) RemoveEntitlement(ctx context.Context, owner uuid.UUID) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return s.logged(ctx, "remove_entitlement", sqlstore.RemoveEntitlement(ctx, db, s.stmts, owner))
}

func (s *Store) GetAllEntitlements(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	all, err := sqlstore.GetAllEntitlements(ctx, db, s.stmts)
	return all, s.logged(ctx, "get_all_entitlements", err)
}

func (s *Store) AddOwnedItem(ctx context.Context, item domain.OwnedItem) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return s.logged(ctx, "add_owned_item", sqlstore.AddOwnedItem(ctx, db, s.stmts, item))
}

func (s *Store) RemoveOwnedItem(ctx context.Context, kind domain.ItemKind, owner uuid.UUID, name string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return s.logged(ctx, "remove_owned_item", sqlstore.RemoveOwnedItem(ctx, db, s.stmts, kind, owner, name))
}

func (s *Store) GetOwnedItems(ctx context.Context, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	items, err := sqlstore.GetOwnedItems(ctx, db, s.stmts, kind, owner)
	return items, s.logged(ctx, "get_owned_items", err)
}

func (s *Store) GetAllOwnedItems(ctx context.Context, kind domain.ItemKind) (map[uuid.UUID][]domain.OwnedItem, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	all, err := sqlstore.GetAllOwnedItems(ctx, db, s.stmts, kind)
	return all, s.logged(ctx, "get_all_owned_items", err)
}

// Diagnostics reports the backend name.
func (s *Store) Diagnostics() storage.Diagnostics {
	return storage.Diagnostics{Backend: string(storage.TypeSQLite)}
}

func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, storage.ErrClosed
	}
	return s.db, nil
}

// logged reports err to operators and passes it through to the caller.
func (s *Store) logged(ctx context.Context, op string, err error) error {
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgOperationFailed, "operation", op, "error", err)
	}
	return err
}
