// internal/application/mirror/mirror.go
package mirror

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"bookstore/internal/platform/stream"
)

var (
	ErrAlreadyOpen = errors.New("mirror: already open")
	ErrEmptyPath   = errors.New("mirror: collection path is empty")
)

// Entry is one id -> value pair of a mirrored collection, in snapshot order.
type Entry[T any] struct {
	ID    string
	Value T
}

// Mirror keeps a local ordered id -> T mapping in sync with a remote
// collection. On every remote change notification the full mapping is rebuilt
// from the complete snapshot and the OnSnapshot callback (if any) is invoked
// with the new entries.
//
// The mirror itself never writes to the remote store.
type Mirror[T any] struct {
	mu      sync.RWMutex
	entries []Entry[T]
	index   map[string]int

	readyOnce sync.Once
	ready     chan struct{}

	sub *stream.Subscription

	// OnSnapshot, when set before Open, observes every rebuilt mapping.
	OnSnapshot func(entries []Entry[T])
}

// New returns an unopened mirror.
func New[T any]() *Mirror[T] {
	return &Mirror[T]{
		index: map[string]int{},
		ready: make(chan struct{}),
	}
}

// Open subscribes to the collection at path. A mirror is opened at most once.
func (m *Mirror[T]) Open(ctx context.Context, w Watcher, path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	m.mu.Lock()
	if m.sub != nil {
		m.mu.Unlock()
		return ErrAlreadyOpen
	}
	m.mu.Unlock()

	sub, err := w.WatchCollection(ctx, path, m.apply)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sub = sub
	m.mu.Unlock()
	return nil
}

// apply rebuilds the full mapping from a complete snapshot.
func (m *Mirror[T]) apply(docs []Document) {
	entries := make([]Entry[T], 0, len(docs))
	index := make(map[string]int, len(docs))
	for _, d := range docs {
		var v T
		if err := d.DataTo(&v); err != nil {
			log.Printf("[mirror] WARN: decode failed id=%s: %v", d.ID(), err)
			continue
		}
		index[d.ID()] = len(entries)
		entries = append(entries, Entry[T]{ID: d.ID(), Value: v})
	}

	m.mu.Lock()
	m.entries = entries
	m.index = index
	m.mu.Unlock()

	m.readyOnce.Do(func() { close(m.ready) })

	if m.OnSnapshot != nil {
		m.OnSnapshot(entries)
	}
}

// Ready is closed after the first snapshot has been applied.
func (m *Mirror[T]) Ready() <-chan struct{} {
	return m.ready
}

// Entries returns a copy of the current ordered mapping.
func (m *Mirror[T]) Entries() []Entry[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry[T], len(m.entries))
	copy(out, m.entries)
	return out
}

// Get returns the value mirrored under id.
func (m *Mirror[T]) Get(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.index[id]; ok {
		return m.entries[i].Value, true
	}
	var zero T
	return zero, false
}

// Len returns the number of mirrored documents.
func (m *Mirror[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Cancel releases the subscription. Safe when never opened or called twice.
func (m *Mirror[T]) Cancel() {
	m.mu.Lock()
	sub := m.sub
	m.mu.Unlock()
	sub.Cancel()
}
