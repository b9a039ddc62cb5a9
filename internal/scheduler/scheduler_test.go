package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FlightShop_Go/internal/testing/leaktest"
	"github.com/osse101/FlightShop_Go/internal/worker"
)

// MockJob is a simple job for testing
type MockJob struct {
	RunCount atomic.Int32
	Done     chan struct{}
}

func (m *MockJob) Process(ctx context.Context) error {
	m.RunCount.Add(1)
	select {
	case m.Done <- struct{}{}:
	default:
	}
	return nil
}

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	pool := worker.NewPool(1, 10)
	pool.Start()
	s := New(pool)
	s.Start()
	t.Cleanup(func() {
		_ = s.Stop(context.Background())
		_ = pool.Stop(context.Background())
	})
	return s
}

func TestScheduler(t *testing.T) {
	sched := newScheduler(t)

	job := &MockJob{Done: make(chan struct{}, 10)}
	sched.Schedule(10*time.Millisecond, job)

	timeout := time.After(time.Second)
	runCount := 0
	for runCount < 2 {
		select {
		case <-job.Done:
			runCount++
		case <-timeout:
			t.Fatal("Timeout waiting for job execution")
		}
	}

	assert.GreaterOrEqual(t, runCount, 2)
}

func TestRunTask_SingleGoroutineInOrder(t *testing.T) {
	sched := newScheduler(t)

	var (
		mu    sync.Mutex
		order []int
	)
	active := atomic.Int32{}
	overlap := atomic.Bool{}
	done := make(chan struct{})

	for i := 0; i < 100; i++ {
		i := i
		require.True(t, sched.RunTask(func() {
			if active.Add(1) > 1 {
				overlap.Store(true)
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			active.Add(-1)
			if i == 99 {
				close(done)
			}
		}))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks did not run")
	}

	assert.False(t, overlap.Load())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 100)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestRunTask_PanicDoesNotKillLoop(t *testing.T) {
	sched := newScheduler(t)

	ran := make(chan struct{})
	sched.RunTask(func() { panic("boom") })
	sched.RunTask(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("loop died after panic")
	}
}

func TestRunTask_BeforeStartRunsAfterStart(t *testing.T) {
	s := New(nil)
	ran := make(chan struct{})
	require.True(t, s.RunTask(func() { close(ran) }))

	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("queued task never ran")
	}
}

func TestRunTaskTimer_Repeats(t *testing.T) {
	sched := newScheduler(t)

	var runs atomic.Int32
	task := sched.RunTaskTimer(0, 10*time.Millisecond, func() { runs.Add(1) })

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	task.Cancel()
	assert.True(t, task.Cancelled())

	// let a firing already queued drain, then make sure nothing else arrives
	time.Sleep(30 * time.Millisecond)
	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestRunTaskTimer_OneShot(t *testing.T) {
	sched := newScheduler(t)

	var runs atomic.Int32
	sched.RunTaskTimer(5*time.Millisecond, 0, func() { runs.Add(1) })

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestRunTaskTimer_CancelBeforeFirstRun(t *testing.T) {
	sched := newScheduler(t)

	var runs atomic.Int32
	task := sched.RunTaskTimer(50*time.Millisecond, 0, func() { runs.Add(1) })
	task.Cancel()
	task.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestRunAsync(t *testing.T) {
	sched := newScheduler(t)

	done := make(chan struct{})
	require.NoError(t, sched.RunAsync(func(ctx context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async task never ran")
	}
}

func TestRunAsync_NoPool(t *testing.T) {
	s := New(nil)
	assert.ErrorIs(t, s.RunAsync(func(context.Context) {}), ErrNoWorkerPool)
}

func TestStop_RejectsNewWorkAndLeaksNothing(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	s := New(nil)
	s.Start()
	s.RunTaskTimer(time.Hour, time.Hour, func() {})
	s.Schedule(time.Hour, &MockJob{})

	queued := make(chan struct{})
	s.RunTask(func() { close(queued) })

	require.NoError(t, s.Stop(context.Background()))
	<-queued

	assert.False(t, s.RunTask(func() {}))
	task := s.RunTaskTimer(0, 0, func() {})
	assert.True(t, task.Cancelled())
	assert.NoError(t, s.Stop(context.Background()))

	checker.Check(0)
}
