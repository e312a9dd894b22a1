// internal/platform/stream/dispatcher.go
package stream

import (
	"log"
	"sync"
)

// Dispatcher serializes snapshot and identity handlers onto one goroutine.
// Each handler runs to completion before the next queued event, so no two
// handlers ever mutate the same local mirror concurrently. The queue grows as
// needed, so a handler may dispatch follow-up events without deadlocking the
// goroutine it runs on.
type Dispatcher struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewDispatcher starts the dispatch goroutine. buffer sizes the initial event
// queue; the queue grows beyond it under load.
func NewDispatcher(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	d := &Dispatcher{
		queue: make([]func(), 0, buffer),
		done:  make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
		// The handler runs without the lock held, so it may Dispatch.
		fn()
	}
}

// Dispatch enqueues fn for serialized execution. Dispatch never blocks on a
// busy queue; events dispatched after Close are dropped with a warning.
func (d *Dispatcher) Dispatch(fn func()) {
	if d == nil || fn == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		log.Printf("[stream] WARN: event dispatched after close, dropped")
		return
	}
	d.queue = append(d.queue, fn)
	d.cond.Signal()
	d.mu.Unlock()
}

// Close stops the dispatcher after draining queued events.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	d.cond.Signal()
	d.mu.Unlock()
	<-d.done
}
