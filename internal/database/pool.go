package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/metrics"
)

var (
	// ErrPoolExhausted is returned when no connection frees up within the acquire timeout.
	ErrPoolExhausted = errors.New(ErrMsgPoolExhausted)
	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New(ErrMsgPoolClosed)
)

// Config configures a Pool.
type Config struct {
	Dialect           Dialect
	DSN               string
	MaxConnections    int
	AcquireTimeout    time.Duration
	ValidationTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxConnections <= 0 {
		c.MaxConnections = DefaultMaxConnections
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = DefaultAcquireTimeout
	}
	if c.ValidationTimeout <= 0 {
		c.ValidationTimeout = DefaultValidationTimeout
	}
}

// PooledConn is a connection borrowed from a Pool. Callers must hand it back with
// Release or Discard on every path.
type PooledConn struct {
	*sql.Conn
	inUse bool
}

// PoolStats is a snapshot of pool occupancy.
type PoolStats struct {
	Open     int   `json:"open"`
	InUse    int   `json:"in_use"`
	Idle     int   `json:"idle"`
	Max      int   `json:"max"`
	Waits    int64 `json:"waits"`
	Discards int64 `json:"discards"`
}

// Pool hands out dedicated connections, at most MaxConnections at a time. A free
// connection passes a liveness check before every reuse; one that fails is closed and
// dropped. All bookkeeping is guarded by a single mutex that is never held across I/O.
type Pool struct {
	db  *sql.DB
	cfg Config

	mu      sync.Mutex
	conns   []*PooledConn
	opening int
	notify  chan struct{} // closed and replaced whenever a slot may have freed up
	closed  bool

	waits    atomic.Int64
	discards atomic.Int64
	dbClose  sync.Once
}

// Open creates the pool and verifies the server is reachable. A failed ping is fatal.
func Open(ctx context.Context, cfg Config) (*Pool, error) {
	cfg.applyDefaults()

	driverName := cfg.Dialect.DriverName()
	if driverName == "" {
		return nil, fmt.Errorf("%s: %q", ErrMsgUnsupportedDialect, string(cfg.Dialect))
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToOpenDatabase, err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	logger.FromContext(ctx).Info(LogMsgSuccessfullyConnectedToDatabase,
		"dialect", string(cfg.Dialect),
		"max_connections", cfg.MaxConnections)

	return &Pool{db: db, cfg: cfg, notify: make(chan struct{})}, nil
}

// DB exposes the underlying handle for schema migrations.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Dialect returns the pool's SQL dialect.
func (p *Pool) Dialect() Dialect {
	return p.cfg.Dialect
}

// Acquire borrows a connection, waiting up to AcquireTimeout for one to free up.
func (p *Pool) Acquire(ctx context.Context) (*PooledConn, error) {
	deadline := time.Now().Add(p.cfg.AcquireTimeout)
	expired := false

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}

		var candidate *PooledConn
		for _, c := range p.conns {
			if !c.inUse {
				c.inUse = true
				candidate = c
				break
			}
		}

		dial := false
		if candidate == nil && len(p.conns)+p.opening < p.cfg.MaxConnections {
			p.opening++
			dial = true
		}
		wake := p.notify
		p.mu.Unlock()

		switch {
		case candidate != nil:
			if p.valid(ctx, candidate) {
				p.updateGauges()
				return candidate, nil
			}
			logger.FromContext(ctx).Warn(LogMsgConnectionDiscarded)
			p.Discard(candidate)
			continue
		case dial:
			return p.dial(ctx)
		}

		if expired {
			return nil, ErrPoolExhausted
		}

		p.waits.Add(1)
		metrics.PoolWaits.Inc()

		timer := time.NewTimer(time.Until(deadline))
		select {
		case <-wake:
			// re-scan; another waiter may win the slot
		case <-timer.C:
			// one last scan before giving up
			expired = true
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
		timer.Stop()
	}
}

func (p *Pool) dial(ctx context.Context) (*PooledConn, error) {
	conn, err := p.db.Conn(ctx)

	p.mu.Lock()
	p.opening--
	if err != nil {
		p.broadcastLocked()
		p.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToOpenConnection, err)
	}
	if p.closed {
		p.mu.Unlock()
		_ = conn.Close()
		return nil, ErrPoolClosed
	}
	pc := &PooledConn{Conn: conn, inUse: true}
	p.conns = append(p.conns, pc)
	p.mu.Unlock()

	p.updateGauges()
	return pc, nil
}

func (p *Pool) valid(ctx context.Context, c *PooledConn) bool {
	pingCtx, cancel := context.WithTimeout(ctx, p.cfg.ValidationTimeout)
	defer cancel()
	return c.PingContext(pingCtx) == nil
}

// Release returns a connection to the pool and wakes waiters.
func (p *Pool) Release(c *PooledConn) {
	if c == nil {
		return
	}

	p.mu.Lock()
	if !p.contains(c) {
		p.mu.Unlock()
		return
	}
	if p.closed {
		p.removeLocked(c)
		p.broadcastLocked()
		p.mu.Unlock()
		closeConn(c)
		return
	}
	c.inUse = false
	p.broadcastLocked()
	p.mu.Unlock()

	p.updateGauges()
}

// Discard drops a connection from the pool and closes it without returning it to
// database/sql's idle set.
func (p *Pool) Discard(c *PooledConn) {
	if c == nil {
		return
	}

	p.mu.Lock()
	removed := p.removeLocked(c)
	p.broadcastLocked()
	p.mu.Unlock()

	if removed {
		p.discards.Add(1)
		metrics.PoolDiscards.Inc()
	}
	closeConn(c)
	p.updateGauges()
}

// WithConn borrows a connection for fn. Connections that fail with driver.ErrBadConn are
// discarded instead of released.
func (p *Pool) WithConn(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	c, err := p.Acquire(ctx)
	if err != nil {
		return err
	}

	err = fn(ctx, c.Conn)
	if errors.Is(err, driver.ErrBadConn) {
		p.Discard(c)
		return err
	}
	p.Release(c)
	return err
}

// Ping checks connectivity through a pooled connection.
func (p *Pool) Ping(ctx context.Context) error {
	return p.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// Stats returns a snapshot of pool occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	inUse := 0
	for _, c := range p.conns {
		if c.inUse {
			inUse++
		}
	}
	open := len(p.conns)
	p.mu.Unlock()

	return PoolStats{
		Open:     open,
		InUse:    inUse,
		Idle:     open - inUse,
		Max:      p.cfg.MaxConnections,
		Waits:    p.waits.Load(),
		Discards: p.discards.Load(),
	}
}

// Close stops lending connections, closes idle ones, waits until ctx is done for borrowed
// ones to come back, then force-closes whatever is still out.
func (p *Pool) Close(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgPoolClosing)

	p.mu.Lock()
	p.closed = true
	idle := p.takeLocked(func(c *PooledConn) bool { return !c.inUse })
	p.broadcastLocked()
	p.mu.Unlock()

	for _, c := range idle {
		closeConn(c)
	}

	var err error
	for {
		p.mu.Lock()
		remaining := len(p.conns)
		wake := p.notify
		p.mu.Unlock()

		if remaining == 0 {
			break
		}

		select {
		case <-wake:
			continue
		case <-ctx.Done():
			log.Warn(LogMsgPoolForceClose, "borrowed", remaining)
			p.mu.Lock()
			stuck := p.takeLocked(func(*PooledConn) bool { return true })
			p.mu.Unlock()
			for _, c := range stuck {
				closeConn(c)
			}
			err = ctx.Err()
		}
		break
	}

	p.dbClose.Do(func() {
		if cerr := p.db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	p.updateGauges()
	return err
}

func (p *Pool) contains(c *PooledConn) bool {
	for _, existing := range p.conns {
		if existing == c {
			return true
		}
	}
	return false
}

func (p *Pool) removeLocked(c *PooledConn) bool {
	for i, existing := range p.conns {
		if existing == c {
			p.conns = append(p.conns[:i], p.conns[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Pool) takeLocked(match func(*PooledConn) bool) []*PooledConn {
	var taken []*PooledConn
	kept := p.conns[:0]
	for _, c := range p.conns {
		if match(c) {
			taken = append(taken, c)
			continue
		}
		kept = append(kept, c)
	}
	p.conns = kept
	return taken
}

func (p *Pool) broadcastLocked() {
	close(p.notify)
	p.notify = make(chan struct{})
}

func (p *Pool) updateGauges() {
	s := p.Stats()
	metrics.PoolOpen.Set(float64(s.Open))
	metrics.PoolInUse.Set(float64(s.InUse))
}

// closeConn closes the physical connection rather than parking it in database/sql's
// idle list.
func closeConn(c *PooledConn) {
	_ = c.Raw(func(any) error { return driver.ErrBadConn })
	_ = c.Close()
}
