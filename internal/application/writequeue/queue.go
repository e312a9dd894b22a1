// internal/application/writequeue/queue.go
package writequeue

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var (
	ErrClosed = errors.New("writequeue: closed")
)

// Status is the observable outcome of one enqueued write.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// WriteFunc performs one remote write attempt.
type WriteFunc func(ctx context.Context) error

type record struct {
	id    uint64
	kind  string
	write WriteFunc

	mu     sync.Mutex
	status Status
	err    error
	done   chan struct{}
}

// Queue persists mutations one at a time, in enqueue order, with bounded
// retry. Callers never receive the write error; they observe outcomes through
// Status/Wait. Local optimistic state is never rolled back on failure.
type Queue struct {
	maxAttempts int
	backoff     time.Duration

	mu      sync.Mutex
	records map[uint64]*record
	nextID  uint64
	closed  bool

	ch   chan *record
	stop chan struct{}
	done chan struct{}
}

// New starts the queue worker. maxAttempts is clamped to at least 1; backoff
// is the flat delay between attempts of the same write.
func New(ctx context.Context, maxAttempts int, backoff time.Duration) *Queue {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	q := &Queue{
		maxAttempts: maxAttempts,
		backoff:     backoff,
		records:     map[uint64]*record{},
		ch:          make(chan *record, 128),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go q.run(ctx)
	return q
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case r, ok := <-q.ch:
			if !ok {
				return
			}
			q.perform(ctx, r)
		case <-q.stop:
			// Drain what was already enqueued, then exit.
			for {
				select {
				case r, ok := <-q.ch:
					if !ok {
						return
					}
					q.perform(ctx, r)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) perform(ctx context.Context, r *record) {
	var err error
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		err = r.write(ctx)
		if err == nil {
			r.finish(StatusConfirmed, nil)
			return
		}
		if attempt < q.maxAttempts {
			log.Printf("[writequeue] WARN: %s attempt %d/%d failed: %v (retrying)",
				r.kind, attempt, q.maxAttempts, err)
			select {
			case <-time.After(q.backoff):
			case <-ctx.Done():
				r.finish(StatusFailed, ctx.Err())
				return
			}
		}
	}
	log.Printf("[writequeue] WARN: %s failed after %d attempts: %v (local state retained)",
		r.kind, q.maxAttempts, err)
	r.finish(StatusFailed, err)
}

func (r *record) finish(s Status, err error) {
	r.mu.Lock()
	r.status = s
	r.err = err
	r.mu.Unlock()
	close(r.done)
}

// Enqueue registers a write and returns its observation id. After Close the
// write is marked failed immediately.
func (q *Queue) Enqueue(kind string, write WriteFunc) uint64 {
	q.mu.Lock()
	q.nextID++
	id := q.nextID
	r := &record{
		id:     id,
		kind:   kind,
		write:  write,
		status: StatusPending,
		done:   make(chan struct{}),
	}
	q.records[id] = r
	if q.closed {
		q.mu.Unlock()
		r.finish(StatusFailed, ErrClosed)
		return id
	}
	// Send under the mutex: Close cannot mark the queue closed between the
	// check above and the send, so the worker always drains this record.
	q.ch <- r
	q.mu.Unlock()
	return id
}

// Status reports the current status of an enqueued write.
func (q *Queue) Status(id uint64) (Status, bool) {
	q.mu.Lock()
	r, ok := q.records[id]
	q.mu.Unlock()
	if !ok {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, true
}

// Err returns the terminal error of a failed write, nil otherwise.
func (q *Queue) Err(id uint64) error {
	q.mu.Lock()
	r, ok := q.records[id]
	q.mu.Unlock()
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait blocks until the write with id reaches a terminal status.
func (q *Queue) Wait(id uint64) Status {
	q.mu.Lock()
	r, ok := q.records[id]
	q.mu.Unlock()
	if !ok {
		return ""
	}
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Close stops accepting writes and waits for already-enqueued ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.stop)
	<-q.done
}
