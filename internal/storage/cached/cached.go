// Package cached puts the entitlement cache in front of any storage backend.
package cached

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/osse101/FlightShop_Go/internal/cache"
	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/metrics"
	"github.com/osse101/FlightShop_Go/internal/storage"
)

// Mode is the backend write policy.
type Mode string

const (
	// WriteThrough persists synchronously and reports backend errors to the caller.
	WriteThrough Mode = "write-through"
	// WriteBack persists on a background task; failures evict the cache entry and are
	// only logged.
	WriteBack Mode = "write-back"
)

// ParseMode validates a configured mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case WriteThrough, WriteBack:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%s: %q", ErrMsgUnknownMode, s)
	}
}

// Dispatcher runs a background task, typically on a worker pool.
type Dispatcher func(task func(ctx context.Context)) error

// Config configures the decorator.
type Config struct {
	Mode    Mode
	Preload bool
	Cache   cache.Config
}

// Option customises a Store.
type Option func(*Store)

// WithDispatcher routes write-back tasks and preloads through d.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Store) { s.dispatch = d }
}

// WithCache supplies a pre-built cache.
func WithCache(c *cache.EntitlementCache) Option {
	return func(s *Store) { s.cache = c }
}

// Store implements storage.Backend over a backend it does not own the lifecycle of
// beyond Init and Close, and a cache it owns.
//
// The cache is always updated first and is read-after-write consistent. Reads that fill
// the cache from the backend never overwrite a newer write made while they were in flight.
type Store struct {
	backend  storage.Backend
	cache    *cache.EntitlementCache
	mode     Mode
	preload  bool
	dispatch Dispatcher

	fills singleflight.Group

	// mu orders cache writes against read-through fills and preloads.
	mu         sync.Mutex
	seq        uint64
	preloading bool
	dirty      map[uuid.UUID]struct{}

	// loadMu serialises preloads and refreshes.
	loadMu sync.Mutex

	writes      *writeTracker
	preloadDone chan struct{}
	closed      atomic.Bool
}

// New wraps backend with a cache.
func New(backend storage.Backend, cfg Config, opts ...Option) *Store {
	if cfg.Mode == "" {
		cfg.Mode = WriteThrough
	}

	s := &Store{
		backend:     backend,
		mode:        cfg.Mode,
		preload:     cfg.Preload,
		dispatch:    goDispatch,
		writes:      newWriteTracker(),
		preloadDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New(cfg.Cache)
	}
	if !s.preload {
		close(s.preloadDone)
	}
	return s
}

var _ storage.Backend = (*Store)(nil)

func goDispatch(task func(ctx context.Context)) error {
	go task(context.Background())
	return nil
}

// Mode returns the write policy.
func (s *Store) Mode() Mode {
	return s.mode
}

// Init initialises the backend, then preloads the cache in the background if enabled.
func (s *Store) Init(ctx context.Context) error {
	if err := s.backend.Init(ctx); err != nil {
		return err
	}
	if !s.preload {
		return nil
	}

	bg := context.WithoutCancel(ctx)
	s.background(bg, func(ctx context.Context) {
		defer close(s.preloadDone)
		if _, err := s.load(ctx, false); err != nil {
			logger.FromContext(ctx).Error(LogMsgPreloadFailed, "error", err)
		}
	})
	return nil
}

// WaitForPreload blocks until the startup preload has finished or ctx is done.
func (s *Store) WaitForPreload(ctx context.Context) error {
	select {
	case <-s.preloadDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetEntitlement writes the cache, then the backend according to the write mode.
func (s *Store) SetEntitlement(ctx context.Context, owner uuid.UUID, expiresAt time.Time) error {
	s.mu.Lock()
	s.markWriteLocked(owner)
	s.cache.Set(owner, expiresAt)
	s.mu.Unlock()

	if s.mode == WriteThrough {
		if err := s.backend.SetEntitlement(ctx, owner, expiresAt); err != nil {
			logger.FromContext(ctx).Warn(LogMsgThroughWriteEvict, "owner", owner, "error", err)
			s.evict(owner)
			return err
		}
		return nil
	}

	s.background(context.WithoutCancel(ctx), func(ctx context.Context) {
		if err := s.backend.SetEntitlement(ctx, owner, expiresAt); err != nil {
			metrics.WriteBackFailures.Inc()
			logger.FromContext(ctx).Error(LogMsgWriteBackFailed, "owner", owner, "error", err)
			s.evict(owner)
		}
	})
	return nil
}

// GetEntitlement answers from the cache, falling back to the backend on a miss and caching
// what it finds. Concurrent misses for one owner share a single backend read.
func (s *Store) GetEntitlement(ctx context.Context, owner uuid.UUID) (time.Time, bool, error) {
	if expiresAt, ok := s.cache.Get(owner); ok {
		return expiresAt, true, nil
	}

	type result struct {
		expiresAt time.Time
		found     bool
	}

	v, err, _ := s.fills.Do(owner.String(), func() (any, error) {
		s.mu.Lock()
		startSeq := s.seq
		s.mu.Unlock()

		expiresAt, found, err := s.backend.GetEntitlement(ctx, owner)
		if err != nil {
			return nil, err
		}

		if found {
			s.mu.Lock()
			if s.seq == startSeq {
				s.cache.Set(owner, expiresAt)
			}
			s.mu.Unlock()
		}
		return result{expiresAt: expiresAt, found: found}, nil
	})
	if err != nil {
		return time.Time{}, false, err
	}

	r := v.(result)
	return r.expiresAt, r.found, nil
}

// RemoveEntitlement drops the cache entry, then removes from the backend according to the
// write mode.
func (s *Store) RemoveEntitlement(ctx context.Context, owner uuid.UUID) error {
	s.evict(owner)

	if s.mode == WriteThrough {
		return s.backend.RemoveEntitlement(ctx, owner)
	}

	s.background(context.WithoutCancel(ctx), func(ctx context.Context) {
		if err := s.backend.RemoveEntitlement(ctx, owner); err != nil {
			metrics.WriteBackFailures.Inc()
			logger.FromContext(ctx).Error(LogMsgRemoveBackFailed, "owner", owner, "error", err)
		}
	})
	return nil
}

// GetAllEntitlements always reads the backend.
func (s *Store) GetAllEntitlements(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	return s.backend.GetAllEntitlements(ctx)
}

func (s *Store) AddOwnedItem(ctx context.Context, item domain.OwnedItem) error {
	return s.backend.AddOwnedItem(ctx, item)
}

func (s *Store) RemoveOwnedItem(ctx context.Context, kind domain.ItemKind, owner uuid.UUID, name string) error {
	return s.backend.RemoveOwnedItem(ctx, kind, owner, name)
}

func (s *Store) GetOwnedItems(ctx context.Context, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error) {
	return s.backend.GetOwnedItems(ctx, kind, owner)
}

func (s *Store) GetAllOwnedItems(ctx context.Context, kind domain.ItemKind) (map[uuid.UUID][]domain.OwnedItem, error) {
	return s.backend.GetAllOwnedItems(ctx, kind)
}

// RefreshCache clears the cache and reloads it from the backend. It returns the number of
// entries loaded. Writes made while the refresh runs are kept over the reloaded values.
func (s *Store) RefreshCache(ctx context.Context) (int, error) {
	return s.load(ctx, true)
}

// Flush waits for in-flight write-back tasks, at most until ctx is done.
func (s *Store) Flush(ctx context.Context) error {
	if err := s.writes.wait(ctx); err != nil {
		logger.FromContext(ctx).Warn(LogMsgFlushTimeout, "pending", s.writes.inFlight())
		return err
	}
	return nil
}

// CacheStats returns the cache counters.
func (s *Store) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Diagnostics passes through the backend's diagnostics.
func (s *Store) Diagnostics() storage.Diagnostics {
	return storage.Describe(s.backend, "unknown")
}

// Close flushes pending writes, shuts the cache down and closes the backend. Later calls
// are no-ops.
func (s *Store) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.writes.close()
	flushErr := s.Flush(ctx)
	cacheErr := s.cache.Shutdown(ctx)
	backendErr := s.backend.Close(ctx)

	switch {
	case backendErr != nil:
		return backendErr
	case flushErr != nil:
		return flushErr
	default:
		return cacheErr
	}
}

// load reads every entitlement and preloads the cache, skipping owners written after the
// load began. With clear set the cache is emptied in the same step that starts tracking
// writes, so no write can fall between the two.
func (s *Store) load(ctx context.Context, clear bool) (int, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	log := logger.FromContext(ctx)
	log.Info(LogMsgPreloadStarted)

	s.mu.Lock()
	s.preloading = true
	s.dirty = make(map[uuid.UUID]struct{})
	if clear {
		s.cache.Clear()
	}
	s.mu.Unlock()

	// write-back writes issued before the load began must reach the backend first
	err := s.writes.wait(ctx)
	var all map[uuid.UUID]time.Time
	if err == nil {
		all, err = s.backend.GetAllEntitlements(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	dirty := s.dirty
	s.preloading = false
	s.dirty = nil

	if err != nil {
		return 0, err
	}
	for owner := range dirty {
		delete(all, owner)
	}

	n := s.cache.Preload(all)
	log.Info(LogMsgPreloadCompleted, "loaded", n, "stored", len(all))
	return n, nil
}

func (s *Store) evict(owner uuid.UUID) {
	s.mu.Lock()
	s.markWriteLocked(owner)
	s.cache.Remove(owner)
	s.mu.Unlock()
}

func (s *Store) markWriteLocked(owner uuid.UUID) {
	s.seq++
	if s.preloading {
		s.dirty[owner] = struct{}{}
	}
}

// background runs task through the dispatcher and tracks it for Flush. Once the store is
// closing, task runs inline instead.
func (s *Store) background(ctx context.Context, task func(ctx context.Context)) {
	if !s.writes.add() {
		logger.FromContext(ctx).Warn(LogMsgWriteAfterClose)
		task(ctx)
		return
	}
	wrapped := func(workerCtx context.Context) {
		defer s.writes.done()
		task(ctx)
	}

	if err := s.dispatch(wrapped); err != nil {
		logger.FromContext(ctx).Warn(LogMsgDispatchFallback, "error", err)
		go wrapped(ctx)
	}
}
