package manager

import (
	"sync"

	"github.com/medularis/go-asterisk/protocol"
)

// eventQueue is an unbounded FIFO between the router and the dispatcher.
// The router must never block on event delivery, or a slow handler would
// stall response correlation for every caller.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*protocol.Event
	closed bool
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends one event. Events pushed before close are still delivered.
func (q *eventQueue) push(ev *protocol.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, ev)
	q.cond.Signal()
}

// pop blocks for the next event. It returns false once the queue is closed
// and fully drained.
func (q *eventQueue) pop() (*protocol.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	ev := q.items[0]
	q.items = q.items[1:]
	return ev, true
}

// close marks the queue terminated. Idempotent.
func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
