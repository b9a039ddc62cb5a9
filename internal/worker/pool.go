package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/osse101/FlightShop_Go/internal/logger"
)

var (
	// ErrPoolStopped is returned by Enqueue once Stop has begun.
	ErrPoolStopped = errors.New(ErrMsgPoolStopped)
	// ErrQueueFull is returned by TryEnqueue when every queue slot is taken.
	ErrQueueFull = errors.New(ErrMsgQueueFull)
)

// Job represents a task to be executed by a worker
type Job interface {
	Process(ctx context.Context) error
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) error

func (f JobFunc) Process(ctx context.Context) error {
	return f(ctx)
}

// Pool runs jobs on a fixed number of goroutines. Blocking storage I/O and retry backoff
// sleeps happen here, never on the tick scheduler.
type Pool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup

	// mu guards stopped; senders hold it shared so Stop can close the queue safely.
	mu      sync.RWMutex
	stopped bool
	started bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a new worker pool
func NewPool(workers int, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the workers. Later calls are no-ops.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	logger.Info(LogMsgWorkerPoolStarted, "workers", p.workers, "queue_size", cap(p.jobQueue))
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobQueue {
		p.run(job)
	}
}

func (p *Pool) run(job Job) {
	log := logger.FromContext(p.ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error(LogMsgWorkerJobPanicked, "panic", fmt.Sprint(r))
		}
	}()

	if err := job.Process(p.ctx); err != nil {
		log.Error(LogMsgWorkerJobFailed, "error", err)
	}
}

// Enqueue adds a job to the queue, blocking while it is full.
func (p *Pool) Enqueue(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	p.jobQueue <- job
	return nil
}

// TryEnqueue adds a job without blocking.
func (p *Pool) TryEnqueue(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.jobQueue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Submit runs fn on a worker. It never blocks: a full queue is reported as ErrQueueFull.
func (p *Pool) Submit(fn func(ctx context.Context)) error {
	return p.TryEnqueue(JobFunc(func(ctx context.Context) error {
		fn(ctx)
		return nil
	}))
}

// QueueDepth returns the number of jobs waiting for a worker.
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// Stop refuses new jobs, lets the workers drain the queue and waits for them until ctx is
// done. On timeout the context handed to running jobs is cancelled.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.jobQueue)
	started := p.started
	p.mu.Unlock()

	if !started {
		p.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		logger.Info(LogMsgWorkerPoolStopped)
		return nil
	case <-ctx.Done():
		p.cancel()
		logger.Warn(LogMsgWorkerStopTimedOut, "queued", len(p.jobQueue))
		return ctx.Err()
	}
}
