package cached

import (
	"context"
	"sync"
)

// writeTracker counts in-flight background writes. Unlike a WaitGroup, registering a write
// may race freely with waiting, and once closed it refuses new writes so nothing starts
// after Close has begun draining.
type writeTracker struct {
	mu     sync.Mutex
	n      int
	idle   chan struct{} // closed while n == 0
	closed bool
}

func newWriteTracker() *writeTracker {
	idle := make(chan struct{})
	close(idle)
	return &writeTracker{idle: idle}
}

// add registers a write. It reports false once the tracker is closed.
func (w *writeTracker) add() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	if w.n == 0 {
		w.idle = make(chan struct{})
	}
	w.n++
	return true
}

func (w *writeTracker) done() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.n--
	if w.n == 0 {
		close(w.idle)
	}
}

// close stops accepting writes. Writes already registered still count.
func (w *writeTracker) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// wait blocks until no write is in flight or ctx is done.
func (w *writeTracker) wait(ctx context.Context) error {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// inFlight returns the number of registered writes.
func (w *writeTracker) inFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}
