package input

import "sync"

// Queue is the event queue shared by the window callbacks, the gamepad
// poller, and the engine tick. Push may be called from any goroutine; Drain
// is called once per tick and hands the events to the world in arrival order.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// NewQueue creates an empty event queue.
//
// Returns:
//   - *Queue: the queue
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event to the queue.
//
// Parameters:
//   - event: the event to enqueue
func (q *Queue) Push(event Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
}

// Drain removes and returns all queued events in arrival order. Returns nil
// when the queue is empty.
//
// Returns:
//   - []Event: the drained events
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	drained := q.events
	q.events = nil
	return drained
}

// Len returns the number of queued events.
//
// Returns:
//   - int: the queue length
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
