package bridge

import (
	"sync"
	"time"
)

// EventRecord is the JSON shape served for one observed event.
type EventRecord struct {
	Name     string            `json:"name"`
	Received time.Time         `json:"received"`
	Headers  map[string]string `json:"headers"`
}

// eventRing holds the most recent records, oldest evicted first.
type eventRing struct {
	mu    sync.Mutex
	buf   []EventRecord
	next  int
	full  bool
	total uint64
}

func newEventRing(capacity int) *eventRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &eventRing{buf: make([]EventRecord, capacity)}
}

func (r *eventRing) add(rec EventRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = rec
	r.next++
	r.total++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

// snapshot returns records oldest to newest.
func (r *eventRing) snapshot() []EventRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]EventRecord, r.next)
		copy(out, r.buf[:r.next])
		return out
	}
	out := make([]EventRecord, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out
}

func (r *eventRing) seen() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
