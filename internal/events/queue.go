package events

import "sync"

// queue is an unbounded FIFO feeding one worker. Enqueue never blocks so the
// committing caller is never slowed down by delivery.
type queue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered, size 1; coalesces wake-ups
	done   chan struct{} // closed by close()
}

func newQueue() *queue {
	return &queue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// enqueue appends evt; it returns false once the queue is closed
func (q *queue) enqueue(evt Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, evt)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// tryDequeue pops the front event without blocking
func (q *queue) tryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	evt := q.events[0]
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return evt, true
}

// drained reports whether the queue is closed and empty
func (q *queue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.events) == 0
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// close stops accepting events; queued events stay available for draining
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}
