package watcher

import (
	"sync"
	"time"
)

// debouncer coalesces events per path and delivers them after a quiet period.
type debouncer struct {
	delay time.Duration
	out   chan Event

	mu      sync.Mutex
	pending map[string]*pendingEvent
	closed  bool
}

// pendingEvent tracks a debounced event.
type pendingEvent struct {
	ops   Op
	timer *time.Timer
}

func newDebouncer(delay time.Duration, bufferSize int) *debouncer {
	return &debouncer{
		delay:   delay,
		out:     make(chan Event, bufferSize),
		pending: make(map[string]*pendingEvent),
	}
}

// add merges op into the pending event for path and restarts its timer.
func (d *debouncer) add(path string, op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if p, ok := d.pending[path]; ok {
		p.ops |= op
		p.timer.Reset(d.delay)
		return
	}

	d.pending[path] = &pendingEvent{
		ops:   op,
		timer: time.AfterFunc(d.delay, func() { d.fire(path) }),
	}
}

// fire delivers the pending event for path.
func (d *debouncer) fire(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[path]
	if !ok || d.closed {
		return
	}
	delete(d.pending, path)

	select {
	case d.out <- Event{Path: path, Op: p.ops, Timestamp: time.Now()}:
	default:
		// Channel full, drop event
	}
}

// pendingCount returns the number of events waiting for their timer.
func (d *debouncer) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// close stops all timers and closes the output channel.
func (d *debouncer) close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
	close(d.out)
}
