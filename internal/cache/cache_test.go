package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock for expiry checks
type fakeClock struct {
	now atomic.Int64
}

func newFakeClock(t time.Time) *fakeClock {
	c := &fakeClock{}
	c.now.Store(t.UnixNano())
	return c
}

func (c *fakeClock) Now() time.Time          { return time.Unix(0, c.now.Load()) }
func (c *fakeClock) Advance(d time.Duration) { c.now.Add(int64(d)) }

func newTestCache(t *testing.T, cfg Config, opts ...Option) *EntitlementCache {
	t.Helper()
	c := New(cfg, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	})
	return c
}

func TestGet_MissOnAbsentKey(t *testing.T) {
	c := newTestCache(t, DefaultConfig())

	_, ok := c.Get(uuid.New())

	assert.False(t, ok)
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(0), stats.Hits)
}

func TestSetThenGet_CountsHit(t *testing.T) {
	c := newTestCache(t, DefaultConfig())
	owner := uuid.New()
	expiry := time.Now().Add(time.Hour)

	c.Set(owner, expiry)
	got, ok := c.Get(owner)

	require.True(t, ok)
	assert.True(t, expiry.Equal(got))
	assert.Equal(t, int64(1), c.Stats().Hits)
	assert.Equal(t, int64(0), c.Stats().Misses)
}

func TestGet_TTLExpiredEntryIsRemoved(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 10, TTL: 50 * time.Millisecond, CleanupInterval: time.Hour})
	owner := uuid.New()

	c.Set(owner, time.Now().Add(time.Hour))
	time.Sleep(80 * time.Millisecond)

	_, ok := c.Get(owner)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestGet_EntitlementExpiredRegardlessOfTTL(t *testing.T) {
	clock := newFakeClock(time.Now())
	c := newTestCache(t, Config{MaxSize: 10, TTL: time.Hour, CleanupInterval: time.Hour}, WithClock(clock.Now))
	owner := uuid.New()

	c.Set(owner, clock.Now().Add(time.Second))
	clock.Advance(time.Second)

	_, ok := c.Get(owner)
	assert.False(t, ok, "expiry equal to now counts as expired")
	assert.Equal(t, 0, c.Len())
}

func TestSet_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 2, TTL: time.Hour, CleanupInterval: time.Hour})
	a, b, cc := uuid.New(), uuid.New(), uuid.New()
	expiry := time.Now().Add(time.Hour)

	c.Set(a, expiry)
	c.Set(b, expiry)
	_, ok := c.Get(a)
	require.True(t, ok)

	c.Set(cc, expiry)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), c.Stats().Evictions)
	_, okA := c.Get(a)
	_, okB := c.Get(b)
	_, okC := c.Get(cc)
	assert.True(t, okA)
	assert.False(t, okB, "B had the oldest access and must be evicted")
	assert.True(t, okC)
}

func TestSet_ExistingKeyKeepsSize(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 2, TTL: time.Hour, CleanupInterval: time.Hour})
	a, b := uuid.New(), uuid.New()

	c.Set(a, time.Now().Add(time.Hour))
	c.Set(b, time.Now().Add(time.Hour))
	later := time.Now().Add(2 * time.Hour)
	c.Set(a, later)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(0), c.Stats().Evictions)
	got, ok := c.Get(a)
	require.True(t, ok)
	assert.True(t, later.Equal(got), "last set wins")
}

func TestSet_SizeNeverExceedsMax(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 5, TTL: time.Hour, CleanupInterval: time.Hour})

	for i := 0; i < 50; i++ {
		c.Set(uuid.New(), time.Now().Add(time.Hour))
		assert.LessOrEqual(t, c.Len(), 5)
	}
	assert.Equal(t, int64(45), c.Stats().Evictions)
}

func TestContains_HasGetSideEffects(t *testing.T) {
	c := newTestCache(t, DefaultConfig())
	owner := uuid.New()

	assert.False(t, c.Contains(owner))
	c.Set(owner, time.Now().Add(time.Hour))
	assert.True(t, c.Contains(owner))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestRemoveAndClear(t *testing.T) {
	c := newTestCache(t, DefaultConfig())
	a, b := uuid.New(), uuid.New()
	c.Set(a, time.Now().Add(time.Hour))
	c.Set(b, time.Now().Add(time.Hour))

	c.Remove(a)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestPreload_SkipsExpiredEntries(t *testing.T) {
	c := newTestCache(t, DefaultConfig())
	live, dead := uuid.New(), uuid.New()

	n := c.Preload(map[uuid.UUID]time.Time{
		live: time.Now().Add(time.Hour),
		dead: time.Now().Add(-time.Minute),
	})

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(live)
	assert.True(t, ok)
}

func TestPreload_RespectsCapacity(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 2, TTL: time.Hour, CleanupInterval: time.Hour})
	soon, later, latest := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	c.Preload(map[uuid.UUID]time.Time{
		soon:   now.Add(time.Minute),
		later:  now.Add(time.Hour),
		latest: now.Add(2 * time.Hour),
	})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(soon)
	assert.False(t, ok, "the entry closest to expiry is evicted")
}

func TestPurgeExpired(t *testing.T) {
	clock := newFakeClock(time.Now())
	c := newTestCache(t, Config{MaxSize: 10, TTL: time.Hour, CleanupInterval: time.Hour}, WithClock(clock.Now))
	short, long := uuid.New(), uuid.New()

	c.Set(short, clock.Now().Add(time.Minute))
	c.Set(long, clock.Now().Add(10*time.Minute))
	clock.Advance(2 * time.Minute)

	assert.Equal(t, 1, c.PurgeExpired())
	assert.Equal(t, 1, c.Len())

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, c.PurgeExpired(), "TTL expiry is swept too")
	assert.Equal(t, 0, c.Len())
}

func TestBackgroundSweep(t *testing.T) {
	clock := newFakeClock(time.Now())
	c := newTestCache(t, Config{MaxSize: 10, TTL: time.Hour, CleanupInterval: 10 * time.Millisecond}, WithClock(clock.Now))

	c.Set(uuid.New(), clock.Now().Add(time.Second))
	clock.Advance(time.Minute)

	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(0), c.Stats().Misses, "sweeping is not a read")
}

func TestStats_HitRate(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 10, TTL: time.Hour, CleanupInterval: time.Hour})
	assert.Equal(t, 0.0, c.Stats().HitRate, "no requests yet")

	owner := uuid.New()
	c.Set(owner, time.Now().Add(time.Hour))
	c.Get(owner)
	c.Get(owner)
	c.Get(owner)
	c.Get(uuid.New())

	stats := c.Stats()
	assert.InDelta(t, 0.75, stats.HitRate, 1e-9)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 10, stats.MaxSize)
}

func TestRecord_LastAccessNeverBeforeCreation(t *testing.T) {
	created := time.Now()
	r := newRecord(uuid.New(), created.Add(time.Hour), created)

	r.touch(created.Add(-time.Minute))
	assert.False(t, r.LastAccessedAt().Before(r.CreatedAt))

	r.touch(created.Add(time.Minute))
	assert.True(t, r.LastAccessedAt().Equal(created.Add(time.Minute)))
}

func TestConcurrentAccess(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 64, TTL: time.Hour, CleanupInterval: time.Millisecond})
	owners := make([]uuid.UUID, 128)
	for i := range owners {
		owners[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				owner := owners[(i*7+w)%len(owners)]
				if i%3 == 0 {
					c.Set(owner, time.Now().Add(time.Hour))
				} else {
					c.Get(owner)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}

func TestShutdown_StopsSweepAndClears(t *testing.T) {
	c := New(Config{MaxSize: 10, TTL: time.Hour, CleanupInterval: 5 * time.Millisecond})
	c.Set(uuid.New(), time.Now().Add(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, c.Shutdown(ctx))
	assert.Equal(t, 0, c.Len())

	// Idempotent
	require.NoError(t, c.Shutdown(ctx))
}
