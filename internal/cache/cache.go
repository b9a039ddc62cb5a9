package cache

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/metrics"
)

// Config holds entitlement cache settings.
type Config struct {
	// MaxSize is the maximum number of cached entitlements.
	MaxSize int
	// TTL bounds how long an entry is trusted after it was cached, independent of
	// the entitlement's own expiry.
	TTL time.Duration
	// CleanupInterval is the period of the background sweep.
	CleanupInterval time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize:         DefaultMaxSize,
		TTL:             DefaultTTL,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Record is one cached entitlement.
type Record struct {
	OwnerID   uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time

	lastAccess atomic.Int64 // unix nanos, never below CreatedAt
}

func newRecord(owner uuid.UUID, expiresAt, now time.Time) *Record {
	r := &Record{OwnerID: owner, ExpiresAt: expiresAt, CreatedAt: now}
	r.lastAccess.Store(now.UnixNano())
	return r
}

// LastAccessedAt returns when the record was last read.
func (r *Record) LastAccessedAt() time.Time {
	return time.Unix(0, r.lastAccess.Load())
}

func (r *Record) touch(now time.Time) {
	n := now.UnixNano()
	if n < r.CreatedAt.UnixNano() {
		n = r.CreatedAt.UnixNano()
	}
	r.lastAccess.Store(n)
}

// Expired reports whether the record is stale (older than ttl) or its entitlement ran out.
func (r *Record) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.CreatedAt) > ttl || !now.Before(r.ExpiresAt)
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	HitRate   float64 `json:"hit_rate"`
}

// Option customises an EntitlementCache.
type Option func(*EntitlementCache)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *EntitlementCache) { c.now = now }
}

// EntitlementCache is a bounded owner -> expiry cache with TTL freshness, LRU eviction
// and hit/miss/eviction accounting. Safe for concurrent use.
//
// Capacity eviction drops the tail of the LRU list, i.e. the entry whose last Get or Set
// is oldest. Entries touched in the same instant are ordered by operation order, so the
// eviction choice is deterministic.
type EntitlementCache struct {
	cfg Config
	lru *expirable.LRU[uuid.UUID, *Record]
	now func() time.Time

	// mu serialises writes with expiry removals so a stale removal never drops a fresh Set.
	mu sync.Mutex

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a cache and starts its background sweep.
func New(cfg Config, opts ...Option) *EntitlementCache {
	def := DefaultConfig()
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	c := &EntitlementCache{
		cfg:  cfg,
		lru:  expirable.NewLRU[uuid.UUID, *Record](cfg.MaxSize, nil, cfg.TTL),
		now:  time.Now,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.sweepLoop()
	return c
}

// Get returns the cached expiry for owner. Absent or expired entries count as a miss and
// expired ones are removed; a hit refreshes the entry's access time.
func (c *EntitlementCache) Get(owner uuid.UUID) (time.Time, bool) {
	rec, ok := c.lru.Get(owner)
	if !ok {
		// the LRU hides TTL-expired entries without deleting them
		c.removeIfCurrent(owner, nil)
		c.recordMiss()
		return time.Time{}, false
	}

	now := c.now()
	if rec.Expired(now, c.cfg.TTL) {
		c.removeIfCurrent(owner, rec)
		c.recordMiss()
		return time.Time{}, false
	}

	rec.touch(now)
	c.hits.Add(1)
	metrics.CacheHits.Inc()
	return rec.ExpiresAt, true
}

// Contains reports whether Get would return a value. It has Get's side effects: access
// time and hit/miss counters change.
func (c *EntitlementCache) Contains(owner uuid.UUID) bool {
	_, ok := c.Get(owner)
	return ok
}

// Set caches the expiry for owner. A new owner on a full cache evicts the least recently
// used entry; replacing an existing owner never changes the size.
func (c *EntitlementCache) Set(owner uuid.UUID, expiresAt time.Time) {
	rec := newRecord(owner, expiresAt, c.now())

	c.mu.Lock()
	evicted := c.lru.Add(owner, rec)
	c.mu.Unlock()

	if evicted {
		c.evictions.Add(1)
		metrics.CacheEvictions.Inc()
	}
	metrics.CacheSize.Set(float64(c.lru.Len()))
}

// Remove drops owner from the cache.
func (c *EntitlementCache) Remove(owner uuid.UUID) {
	c.mu.Lock()
	c.lru.Remove(owner)
	c.mu.Unlock()
	metrics.CacheSize.Set(float64(c.lru.Len()))
}

// Preload bulk-inserts entries whose entitlement has not yet expired and returns how many
// were inserted. Entries go in shortest-lived first so that, when the batch exceeds
// capacity, eviction drops the ones closest to expiring.
func (c *EntitlementCache) Preload(entries map[uuid.UUID]time.Time) int {
	now := c.now()

	live := make([]Record, 0, len(entries))
	for owner, expiresAt := range entries {
		if !expiresAt.After(now) {
			continue
		}
		live = append(live, Record{OwnerID: owner, ExpiresAt: expiresAt})
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].ExpiresAt.Equal(live[j].ExpiresAt) {
			return live[i].OwnerID.String() < live[j].OwnerID.String()
		}
		return live[i].ExpiresAt.Before(live[j].ExpiresAt)
	})

	for i := range live {
		c.Set(live[i].OwnerID, live[i].ExpiresAt)
	}

	logger.Debug(LogMsgPreloadCompleted, "loaded", len(live), "skipped", len(entries)-len(live))
	return len(live)
}

// PurgeExpired removes every entry that is past its TTL or its entitlement expiry and
// returns the number removed.
func (c *EntitlementCache) PurgeExpired() int {
	now := c.now()
	removed := 0
	for _, owner := range c.lru.Keys() {
		rec, ok := c.lru.Peek(owner)
		if ok && !rec.Expired(now, c.cfg.TTL) {
			continue
		}
		if !ok {
			rec = nil
		}
		if c.removeIfCurrent(owner, rec) {
			removed++
		}
	}
	metrics.CacheSize.Set(float64(c.lru.Len()))
	return removed
}

// Clear drops all entries. Counters are kept.
func (c *EntitlementCache) Clear() {
	c.mu.Lock()
	c.lru.Purge()
	c.mu.Unlock()
	metrics.CacheSize.Set(0)
}

// Len returns the number of stored entries.
func (c *EntitlementCache) Len() int {
	return c.lru.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *EntitlementCache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		Size:      c.lru.Len(),
		MaxSize:   c.cfg.MaxSize,
		HitRate:   rate,
	}
}

// Shutdown stops the sweep, waiting until ctx is done at most, then clears all entries.
func (c *EntitlementCache) Shutdown(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stop) })

	var err error
	select {
	case <-c.done:
	case <-ctx.Done():
		logger.FromContext(ctx).Warn(LogMsgShutdownTimeout)
		err = ctx.Err()
	}

	c.Clear()
	return err
}

func (c *EntitlementCache) sweepLoop() {
	defer close(c.done)

	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.PurgeExpired(); n > 0 {
				logger.Debug(LogMsgSweepCompleted, "removed", n)
			}
		case <-c.stop:
			logger.Debug(LogMsgSweepStopped)
			return
		}
	}
}

// removeIfCurrent deletes owner unless a fresher record than expected has been stored.
// expected == nil means the LRU already reported the entry missing or TTL-expired.
func (c *EntitlementCache) removeIfCurrent(owner uuid.UUID, expected *Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.lru.Peek(owner)
	if ok && cur != expected {
		return false
	}
	return c.lru.Remove(owner)
}

func (c *EntitlementCache) recordMiss() {
	c.misses.Add(1)
	metrics.CacheMisses.Inc()
}
