package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrRealizeDeduplicates(t *testing.T) {
	c := New[string](0)
	calls := 0
	realize := func() (string, error) {
		calls++
		return "value", nil
	}

	for range 10 {
		v, err := c.GetOrRealize(42, 1, realize)
		require.NoError(t, err)
		assert.Equal(t, "value", v)
	}

	assert.Equal(t, 1, calls, "realize must run once per hash")
	refs, ok := c.RefCount(42)
	require.True(t, ok)
	assert.Equal(t, uint32(10), refs)
}

func TestReleaseRestoresAndGCFrees(t *testing.T) {
	c := New[string](2)
	_, err := c.GetOrRealize(7, 1, func() (string, error) { return "v", nil })
	require.NoError(t, err)

	c.Release(7)
	refs, ok := c.RefCount(7)
	require.True(t, ok)
	assert.Equal(t, uint32(0), refs)

	var freed []string
	free := func(v string) { freed = append(freed, v) }

	// Within the in-flight depth nothing may be freed.
	assert.Equal(t, 0, c.GarbageCollect(2, free))
	assert.Equal(t, 0, c.GarbageCollect(3, free))
	assert.Equal(t, 1, c.Len())

	// One frame past the depth the entry goes away.
	assert.Equal(t, 1, c.GarbageCollect(4, free))
	assert.Equal(t, []string{"v"}, freed)
	assert.Equal(t, 0, c.Len())
}

func TestGCSkipsReferencedEntries(t *testing.T) {
	c := New[int](1)
	_, err := c.GetOrRealize(1, 1, func() (int, error) { return 10, nil })
	require.NoError(t, err)

	assert.Equal(t, 0, c.GarbageCollect(100, nil), "referenced entries must never be freed")
	assert.Equal(t, 1, c.Len())
}

func TestConcurrentRealizationSingleFlight(t *testing.T) {
	c := New[int](0)
	var calls atomic.Int32
	var wg sync.WaitGroup

	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrRealize(99, 1, func() (int, error) {
				calls.Add(1)
				return 5, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 5, v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	refs, ok := c.RefCount(99)
	require.True(t, ok)
	assert.Equal(t, uint32(32), refs)
}

func TestHitPathSurvivesConcurrentGC(t *testing.T) {
	c := New[int](1)
	done := make(chan struct{})

	// One goroutine collects aggressively while others cycle references on
	// the same hash. A hit racing a collection must either hand back a live
	// reference or re-realize, never an already freed value.
	var collector sync.WaitGroup
	collector.Add(1)
	go func() {
		defer collector.Done()
		frame := uint64(0)
		for {
			select {
			case <-done:
				return
			default:
				frame += 3
				c.GarbageCollect(frame, nil)
			}
		}
	}()

	var workers sync.WaitGroup
	for range 4 {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for frame := uint64(0); frame < 5000; frame++ {
				v, err := c.GetOrRealize(11, frame, func() (int, error) { return 77, nil })
				if assert.NoError(t, err) {
					assert.Equal(t, 77, v)
					c.Release(11)
				}
			}
		}()
	}
	workers.Wait()
	close(done)
	collector.Wait()
}

func TestFailureDoesNotPoison(t *testing.T) {
	c := New[string](0)
	boom := errors.New("device lost")

	_, err := c.GetOrRealize(1, 1, func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len(), "failed entries must be removed")

	// Other hashes are unaffected and the failed hash can be retried.
	v, err := c.GetOrRealize(2, 1, func() (string, error) { return "other", nil })
	require.NoError(t, err)
	assert.Equal(t, "other", v)

	v, err = c.GetOrRealize(1, 1, func() (string, error) { return "recovered", nil })
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestReleaseUnderflowPanics(t *testing.T) {
	c := New[string](0)
	_, err := c.GetOrRealize(5, 1, func() (string, error) { return "v", nil })
	require.NoError(t, err)

	c.Release(5)
	assert.PanicsWithError(t, (&ConsistencyError{Hash: 5, Reason: "reference count underflow"}).Error(), func() {
		c.Release(5)
	})
}

func TestReleaseUnknownPanics(t *testing.T) {
	c := New[string](0)
	assert.Panics(t, func() { c.Release(1234) })
}

func TestAcquireOnlyReturnsCached(t *testing.T) {
	c := New[int](0)

	_, ok := c.Acquire(3, 1)
	assert.False(t, ok)

	_, err := c.GetOrRealize(3, 1, func() (int, error) { return 9, nil })
	require.NoError(t, err)

	v, ok := c.Acquire(3, 2)
	require.True(t, ok)
	assert.Equal(t, 9, v)

	refs, _ := c.RefCount(3)
	assert.Equal(t, uint32(2), refs)
}

func TestTouchDefersGC(t *testing.T) {
	c := New[int](2)
	_, err := c.GetOrRealize(8, 1, func() (int, error) { return 1, nil })
	require.NoError(t, err)
	c.Release(8)

	// Touching at frame 5 moves the last use forward, so frame 6 is still
	// within the in-flight depth.
	c.Touch(8, 5)
	assert.Equal(t, 0, c.GarbageCollect(6, nil))
	assert.Equal(t, 1, c.GarbageCollect(8, nil))
}
