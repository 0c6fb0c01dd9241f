package manager

import (
	"sync"

	"github.com/medularis/go-asterisk/protocol"
)

// correlator pairs responses to requests by strict arrival order: the first
// response delivered goes to the longest-waiting caller. Responses that
// arrive with nobody waiting are buffered in FIFO order for the next
// caller. There is no identifier-based matching.
type correlator struct {
	mu      sync.Mutex
	waiters []chan *protocol.Message
	pending []*protocol.Message
	failure error
}

func newCorrelator() *correlator {
	return &correlator{}
}

// register enrolls the caller as a response waiter and must happen before
// its request bytes hit the wire, so registration order equals wire order.
// The returned channel yields exactly one message, or is closed when the
// session terminates.
func (c *correlator) register() (chan *protocol.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure != nil {
		return nil, c.failure
	}
	ch := make(chan *protocol.Message, 1)
	if len(c.pending) > 0 {
		ch <- c.pending[0]
		c.pending = c.pending[1:]
		return ch, nil
	}
	c.waiters = append(c.waiters, ch)
	return ch, nil
}

// abandon withdraws a waiter whose request never made it onto the wire.
func (c *correlator) abandon(ch chan *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

// deliver hands a response to the oldest waiter, or buffers it.
func (c *correlator) deliver(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure != nil {
		return
	}
	if len(c.waiters) > 0 {
		w := c.waiters[0]
		c.waiters = c.waiters[1:]
		w <- msg
		return
	}
	c.pending = append(c.pending, msg)
}

// fail terminates the correlator: every currently blocked waiter observes
// shutdown exactly once, and later registrations fail immediately with err.
// Only the first failure sticks.
func (c *correlator) fail(err error) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure != nil {
		return 0
	}
	c.failure = err
	n := len(c.waiters)
	for _, w := range c.waiters {
		close(w)
	}
	c.waiters = nil
	c.pending = nil
	return n
}

func (c *correlator) terminalError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

func (c *correlator) waiterCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
