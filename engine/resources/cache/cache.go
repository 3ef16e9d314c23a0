// package cache provides the hash-keyed, reference-counted resource caches
// that back realization. A cache maps descriptor content hashes to realized
// values, collapses concurrent realizations of the same hash into one call,
// and defers freeing until no in-flight frame can still reference a value.
package cache

import (
	"fmt"
	"sync"
)

// DefaultInFlightFrames is how many frames a command buffer referencing a
// resource is assumed to stay in flight. Entries are only freed once their
// last use is older than this.
const DefaultInFlightFrames uint64 = 2

// ConsistencyError is the panic value raised when reference counting is
// violated (releasing an unknown hash, or releasing more times than
// acquired). This is a programming error, not a runtime condition, so the
// cache fails fast instead of returning it.
type ConsistencyError struct {
	// Hash is the offending entry hash.
	Hash uint64

	// Reason describes the violated invariant.
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("cache consistency violated for hash %d: %s", e.Hash, e.Reason)
}

// entry is one cached value. The ready channel is closed once realization
// finished (successfully or not); waiters block on it instead of holding the
// cache lock across realization.
type entry[V any] struct {
	value         V
	err           error
	ready         chan struct{}
	refCount      uint32
	lastUsedFrame uint64
}

// Cache is a hash-keyed, reference-counted store of realized values.
// All methods are safe for concurrent use.
type Cache[V any] struct {
	mu             sync.Mutex
	entries        map[uint64]*entry[V]
	inFlightFrames uint64
}

// New creates an empty cache.
//
// Parameters:
//   - inFlightFrames: frames to wait after last use before an unreferenced
//     entry may be freed (0 selects DefaultInFlightFrames)
//
// Returns:
//   - *Cache[V]: the cache
func New[V any](inFlightFrames uint64) *Cache[V] {
	if inFlightFrames == 0 {
		inFlightFrames = DefaultInFlightFrames
	}
	return &Cache[V]{
		entries:        make(map[uint64]*entry[V]),
		inFlightFrames: inFlightFrames,
	}
}

// GetOrRealize returns the value for hash, realizing it via realize if it is
// not cached yet. Concurrent calls for the same hash run realize exactly
// once; the others wait for the result. On success the caller holds one
// reference which must be returned via Release. On failure no reference is
// held and the entry is removed, so a later call may retry; other entries
// are unaffected.
//
// Parameters:
//   - hash: descriptor content hash
//   - frame: current frame number, recorded as the entry's last use
//   - realize: called at most once per cache miss to produce the value
//
// Returns:
//   - V: the cached or freshly realized value
//   - error: the realization error, if realize failed
func (c *Cache[V]) GetOrRealize(hash uint64, frame uint64, realize func() (V, error)) (V, error) {
	c.mu.Lock()
	for {
		e, ok := c.entries[hash]
		if !ok {
			break
		}
		select {
		case <-e.ready:
			// Ready entry: take the reference under the lock so a concurrent
			// GarbageCollect cannot free it between lookup and increment.
			if e.err != nil {
				c.mu.Unlock()
				var zero V
				return zero, e.err
			}
			e.refCount++
			if frame > e.lastUsedFrame {
				e.lastUsedFrame = frame
			}
			value := e.value
			c.mu.Unlock()
			return value, nil
		default:
		}
		c.mu.Unlock()
		<-e.ready
		if e.err != nil {
			var zero V
			return zero, e.err
		}
		// The entry may have been collected between the wait and here; look
		// it up again instead of referencing a possibly freed value.
		c.mu.Lock()
	}

	e := &entry[V]{ready: make(chan struct{})}
	c.entries[hash] = e
	c.mu.Unlock()

	value, err := realize()

	c.mu.Lock()
	if err != nil {
		e.err = err
		delete(c.entries, hash)
		close(e.ready)
		c.mu.Unlock()
		var zero V
		return zero, err
	}
	e.value = value
	e.refCount = 1
	e.lastUsedFrame = frame
	close(e.ready)
	c.mu.Unlock()
	return value, nil
}

// Acquire takes an additional reference on an already cached value without
// realizing anything. Entries still being realized are skipped.
//
// Parameters:
//   - hash: descriptor content hash
//   - frame: current frame number, recorded as the entry's last use
//
// Returns:
//   - V: the cached value (zero value when absent)
//   - bool: true if the value was cached and a reference was taken
func (c *Cache[V]) Acquire(hash uint64, frame uint64) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[hash]
	if !ok {
		var zero V
		return zero, false
	}
	select {
	case <-e.ready:
	default:
		var zero V
		return zero, false
	}
	if e.err != nil {
		var zero V
		return zero, false
	}
	e.refCount++
	if frame > e.lastUsedFrame {
		e.lastUsedFrame = frame
	}
	return e.value, true
}

// Release returns one reference taken by GetOrRealize or Acquire. Releasing
// an unknown hash or dropping the count below zero panics with a
// *ConsistencyError.
//
// Parameters:
//   - hash: descriptor content hash
func (c *Cache[V]) Release(hash uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[hash]
	if !ok {
		panic(&ConsistencyError{Hash: hash, Reason: "release of unknown entry"})
	}
	if e.refCount == 0 {
		panic(&ConsistencyError{Hash: hash, Reason: "reference count underflow"})
	}
	e.refCount--
}

// Touch records a use of an entry at the given frame without changing its
// reference count. Used by per-frame preparation to keep referenced-but-idle
// resources from aging out mid-use.
//
// Parameters:
//   - hash: descriptor content hash
//   - frame: current frame number
func (c *Cache[V]) Touch(hash uint64, frame uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[hash]; ok && frame > e.lastUsedFrame {
		e.lastUsedFrame = frame
	}
}

// GarbageCollect frees entries that have no references and whose last use is
// older than the in-flight frame depth. free runs outside the cache lock so
// it may touch other caches.
//
// Parameters:
//   - frame: current frame number
//   - free: called once per freed value to release its GPU resources
//
// Returns:
//   - int: number of entries freed
func (c *Cache[V]) GarbageCollect(frame uint64, free func(V)) int {
	c.mu.Lock()
	var freed []V
	for hash, e := range c.entries {
		select {
		case <-e.ready:
		default:
			continue
		}
		if e.refCount > 0 || e.err != nil {
			continue
		}
		if frame < e.lastUsedFrame || frame-e.lastUsedFrame <= c.inFlightFrames {
			continue
		}
		freed = append(freed, e.value)
		delete(c.entries, hash)
	}
	c.mu.Unlock()

	if free != nil {
		for _, v := range freed {
			free(v)
		}
	}
	return len(freed)
}

// Len returns the number of cached entries, including in-progress ones.
//
// Returns:
//   - int: the entry count
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RefCount returns the current reference count of an entry.
//
// Parameters:
//   - hash: descriptor content hash
//
// Returns:
//   - uint32: the reference count (0 when absent)
//   - bool: true if the entry exists
func (c *Cache[V]) RefCount(hash uint64) (uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[hash]
	if !ok {
		return 0, false
	}
	return e.refCount, true
}
