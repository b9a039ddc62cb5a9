// Package scheduler provides the single tick goroutine that owns game-state mutation, timer
// tasks that post onto it, and a hand-off to the worker pool for blocking work.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/worker"
)

// ErrNoWorkerPool is returned by RunAsync on a scheduler built without a pool.
var ErrNoWorkerPool = errors.New(ErrMsgNoWorkerPool)

// Task is a handle to a timer task.
type Task interface {
	Cancel()
	Cancelled() bool
}

// Scheduler manages the tick goroutine, timer tasks and scheduled jobs
type Scheduler struct {
	workerPool *worker.Pool

	mu      sync.Mutex
	queue   []func()
	stopped bool
	started bool

	wake chan struct{}
	quit chan struct{}
	wg   sync.WaitGroup
	loop sync.WaitGroup
}

// New creates a new scheduler. pool may be nil if RunAsync and Schedule are unused.
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
	}
}

// Start launches the tick goroutine. Tasks posted before Start run once it begins.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	s.loop.Add(1)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.loop.Done()
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.quit:
			s.drain()
			return
		}
	}
}

func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			s.safely(fn)
		}
	}
}

func (s *Scheduler) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(LogMsgTaskPanicked, "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// RunTask posts fn to the tick goroutine. It never blocks and reports false once the
// scheduler is stopping.
func (s *Scheduler) RunTask(fn func()) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// RunTaskTimer runs fn on the tick goroutine after delay and then every period. A period of
// zero runs it once.
func (s *Scheduler) RunTaskTimer(delay, period time.Duration, fn func()) Task {
	t := &timerTask{done: make(chan struct{})}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		t.Cancel()
		return t
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-t.done:
			return
		case <-s.quit:
			return
		}
		s.post(t, fn)
		if period <= 0 {
			return
		}

		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.post(t, fn)
			case <-t.done:
				return
			case <-s.quit:
				return
			}
		}
	}()
	return t
}

// post queues one firing of a timer task; a cancel that lands before it runs wins.
func (s *Scheduler) post(t *timerTask, fn func()) {
	s.RunTask(func() {
		if !t.Cancelled() {
			fn()
		}
	})
}

// RunAsync hands fn to the worker pool. It never blocks the caller.
func (s *Scheduler) RunAsync(fn func(ctx context.Context)) error {
	if s.workerPool == nil {
		return ErrNoWorkerPool
	}
	return s.workerPool.Submit(fn)
}

// Schedule registers a job to run on the worker pool at a fixed interval
func (s *Scheduler) Schedule(interval time.Duration, job worker.Job) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if s.workerPool == nil {
					continue
				}
				// a slow job must not pile up behind itself
				if err := s.workerPool.TryEnqueue(job); err != nil {
					logger.Warn(LogMsgJobQueueFull, "error", err)
				}
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop cancels every timer task and scheduled job, runs whatever is already queued for the
// tick goroutine and waits for it to exit until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	close(s.quit)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		if started {
			s.loop.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
		logger.Info(LogMsgSchedulerStopped)
		return nil
	case <-ctx.Done():
		logger.Warn(LogMsgStopTimedOut)
		return ctx.Err()
	}
}

type timerTask struct {
	once sync.Once
	done chan struct{}
}

func (t *timerTask) Cancel() {
	t.once.Do(func() { close(t.done) })
}

func (t *timerTask) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
