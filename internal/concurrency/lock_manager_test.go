package concurrency

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGetLock_SameKeySameMutex(t *testing.T) {
	lm := NewLockManager[uuid.UUID]()
	key := uuid.New()

	assert.Same(t, lm.GetLock(key), lm.GetLock(key))
	assert.NotSame(t, lm.GetLock(key), lm.GetLock(uuid.New()))
}

func TestWithLock_Serialises(t *testing.T) {
	lm := NewLockManager[string]()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = lm.WithLock("owner", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}
