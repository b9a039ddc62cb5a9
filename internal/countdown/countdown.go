// Package countdown runs every timed flight entitlement off one repeating tick task.
package countdown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/metrics"
	"github.com/osse101/FlightShop_Go/internal/scheduler"
)

// Game is the part of the game state the countdown drives.
type Game interface {
	IsOnline(owner uuid.UUID) bool
	SetFlight(owner uuid.UUID, enabled bool)
	SendMessage(owner uuid.UUID, msg string)
	ShowTimer(owner uuid.UUID, text string, progress float64)
	HideTimer(owner uuid.UUID)
}

// Revoker removes a persisted entitlement once its countdown has run out. It must re-check
// the stored expiry under the same lock purchases take, and keep anything that is active
// again by the time it runs.
type Revoker interface {
	RevokeExpired(ctx context.Context, owner uuid.UUID) error
}

// RevokerFunc adapts a function to Revoker.
type RevokerFunc func(ctx context.Context, owner uuid.UUID) error

// RevokeExpired calls f.
func (f RevokerFunc) RevokeExpired(ctx context.Context, owner uuid.UUID) error {
	return f(ctx, owner)
}

// Scheduler is the subset of the tick scheduler the manager needs.
type Scheduler interface {
	RunTaskTimer(delay, period time.Duration, fn func()) scheduler.Task
	RunAsync(fn func(ctx context.Context)) error
}

// Config controls the tick period and the timer and reminder windows.
type Config struct {
	TickInterval     time.Duration
	ShowBefore       time.Duration
	WarnBefore       time.Duration
	ReminderInterval time.Duration
}

// DefaultConfig returns the default windows.
func DefaultConfig() Config {
	return Config{
		TickInterval:     DefaultTickInterval,
		ShowBefore:       DefaultShowBefore,
		WarnBefore:       DefaultWarnBefore,
		ReminderInterval: DefaultReminderInterval,
	}
}

// State is one active countdown.
type State struct {
	OwnerID        uuid.UUID
	ExpiresAt      time.Time
	StartedAt      time.Time
	TimerShown     bool
	LastReminderAt time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the countdown registry. It is safe for concurrent use, but game-state calls
// are made on whichever goroutine calls it, so callers post to the tick scheduler.
type Manager struct {
	cfg     Config
	game    Game
	revoker Revoker
	sched   Scheduler
	now     func() time.Time

	mu     sync.Mutex
	active map[uuid.UUID]*State
	task   scheduler.Task
}

// NewManager creates a countdown manager. Zero config fields take their defaults.
func NewManager(cfg Config, game Game, revoker Revoker, sched Scheduler, opts ...Option) *Manager {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.ShowBefore <= 0 {
		cfg.ShowBefore = def.ShowBefore
	}
	if cfg.WarnBefore <= 0 {
		cfg.WarnBefore = def.WarnBefore
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = def.ReminderInterval
	}

	m := &Manager{
		cfg:     cfg,
		game:    game,
		revoker: revoker,
		sched:   sched,
		now:     time.Now,
		active:  make(map[uuid.UUID]*State),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins a countdown to expiresAt, replacing any countdown the owner already has.
// Permanent entitlements are never counted down and report false.
func (m *Manager) Start(owner uuid.UUID, expiresAt time.Time) bool {
	if domain.IsPermanent(expiresAt) {
		m.Cancel(owner)
		return false
	}

	m.mu.Lock()
	prev, replaced := m.active[owner]
	m.active[owner] = &State{
		OwnerID:   owner,
		ExpiresAt: expiresAt,
		StartedAt: m.now(),
	}
	m.ensureTaskLocked()
	n := len(m.active)
	m.mu.Unlock()

	metrics.CountdownsActive.Set(float64(n))
	if replaced {
		logger.Debug(LogMsgCountdownReplaced, "owner", owner)
		if prev.TimerShown {
			m.game.HideTimer(owner)
		}
	}
	logger.Debug(LogMsgCountdownStarted, "owner", owner, "expires_at", expiresAt)
	return true
}

// Cancel stops the owner's countdown without revoking anything. It reports whether one
// was active.
func (m *Manager) Cancel(owner uuid.UUID) bool {
	st, ok := m.remove(owner)
	if !ok {
		return false
	}
	if st.TimerShown {
		m.game.HideTimer(owner)
	}
	logger.Debug(LogMsgCountdownCancelled, "owner", owner)
	return true
}

// Disconnect drops the owner's countdown when they leave. The persisted entitlement is
// kept so the countdown resumes on their next join.
func (m *Manager) Disconnect(owner uuid.UUID) bool {
	if _, ok := m.remove(owner); !ok {
		return false
	}
	logger.Debug(LogMsgOwnerDisconnected, "owner", owner)
	return true
}

// Remaining returns the time left on the owner's countdown.
func (m *Manager) Remaining(owner uuid.UUID) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.active[owner]
	if !ok {
		return 0, false
	}
	if d := st.ExpiresAt.Sub(m.now()); d > 0 {
		return d, true
	}
	return 0, true
}

// Active returns the number of running countdowns.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Running reports whether the repeating tick task is scheduled.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.task != nil
}

type action struct {
	state    State
	expired  bool
	offline  bool
	timer    string
	progress float64
	hide     bool
	reminder string
}

// Tick advances every countdown once. It runs on the tick goroutine.
func (m *Manager) Tick() {
	now := m.now()

	m.mu.Lock()
	actions := make([]action, 0, len(m.active))
	for owner, st := range m.active {
		remaining := st.ExpiresAt.Sub(now)

		if remaining <= 0 {
			delete(m.active, owner)
			actions = append(actions, action{state: *st, expired: true})
			continue
		}
		if !m.game.IsOnline(owner) {
			delete(m.active, owner)
			actions = append(actions, action{state: *st, offline: true})
			continue
		}

		a := action{state: *st}
		if remaining <= m.cfg.ShowBefore {
			st.TimerShown = true
			a.timer = fmt.Sprintf(MsgTimerText, FormatRemaining(remaining))
			a.progress = Progress(remaining, m.cfg.ShowBefore)
		} else if st.TimerShown {
			// extended past the window
			st.TimerShown = false
			a.hide = true
		}
		if remaining <= m.cfg.WarnBefore &&
			(st.LastReminderAt.IsZero() || now.Sub(st.LastReminderAt) >= m.cfg.ReminderInterval) {
			st.LastReminderAt = now
			a.reminder = fmt.Sprintf(MsgReminder, FormatRemaining(remaining))
		}
		if a.timer != "" || a.hide || a.reminder != "" {
			actions = append(actions, a)
		}
	}
	n := len(m.active)
	if n == 0 && m.task != nil {
		m.task.Cancel()
		m.task = nil
		logger.Debug(LogMsgTickTaskStopped)
	}
	m.mu.Unlock()

	metrics.CountdownsActive.Set(float64(n))

	for _, a := range actions {
		owner := a.state.OwnerID
		switch {
		case a.expired:
			m.expire(a.state)
		case a.offline:
			logger.Debug(LogMsgOwnerDisconnected, "owner", owner)
		default:
			if a.timer != "" {
				m.game.ShowTimer(owner, a.timer, a.progress)
			}
			if a.hide {
				m.game.HideTimer(owner)
			}
			if a.reminder != "" {
				m.game.SendMessage(owner, a.reminder)
			}
		}
	}
}

// expire applies the terminal transition: flight off, persisted entitlement revoked on a
// worker, timer detached, player told. The revoke may land after a newer purchase, so the
// Revoker decides whether anything is still expired.
func (m *Manager) expire(st State) {
	owner := st.OwnerID
	metrics.Expirations.Inc()
	logger.Info(LogMsgCountdownExpired, "owner", owner)

	m.game.SetFlight(owner, false)
	if st.TimerShown {
		m.game.HideTimer(owner)
	}
	m.game.SendMessage(owner, MsgExpired)

	revoke := func(ctx context.Context) {
		if err := m.revoker.RevokeExpired(ctx, owner); err != nil {
			logger.FromContext(ctx).Error(LogMsgRevokeFailed, "owner", owner, "error", err)
		}
	}
	if err := m.sched.RunAsync(revoke); err != nil {
		logger.Warn(LogMsgAsyncRejected, "error", err)
		go revoke(context.Background())
	}
}

// Shutdown cancels the tick task and clears every countdown. Timers are detached but no
// entitlement is revoked.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.task != nil {
		m.task.Cancel()
		m.task = nil
	}
	states := m.active
	m.active = make(map[uuid.UUID]*State)
	m.mu.Unlock()

	metrics.CountdownsActive.Set(0)
	for owner, st := range states {
		if st.TimerShown {
			m.game.HideTimer(owner)
		}
	}
}

func (m *Manager) remove(owner uuid.UUID) (State, bool) {
	m.mu.Lock()
	st, ok := m.active[owner]
	if ok {
		delete(m.active, owner)
	}
	if len(m.active) == 0 && m.task != nil {
		m.task.Cancel()
		m.task = nil
	}
	n := len(m.active)
	m.mu.Unlock()

	if !ok {
		return State{}, false
	}
	metrics.CountdownsActive.Set(float64(n))
	return *st, true
}

func (m *Manager) ensureTaskLocked() {
	if m.task != nil {
		return
	}
	m.task = m.sched.RunTaskTimer(m.cfg.TickInterval, m.cfg.TickInterval, m.Tick)
	logger.Debug(LogMsgTickTaskStarted, "interval", m.cfg.TickInterval)
}

// Progress is the fraction of the show-before window still remaining, clamped to [0,1].
func Progress(remaining, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	p := float64(remaining) / float64(window)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// FormatRemaining renders a duration for players, rounding up to the second.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	secs := int64((d + time.Second - 1) / time.Second)
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
