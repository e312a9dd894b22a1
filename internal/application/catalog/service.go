// internal/application/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"bookstore/internal/application/mirror"
	"bookstore/internal/application/writequeue"
	bookdom "bookstore/internal/domain/book"
)

var (
	ErrAlreadyStarted = errors.New("catalog: already started")
)

// State tracks the service lifecycle. There is no terminal state while the
// session is active; Live simply keeps receiving snapshots.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateSubscribed    State = "subscribed"
	StateSeedAttempted State = "seed_attempted"
	StateSeedSkipped   State = "seed_skipped"
	StateLive          State = "live"
)

// CollectionPath returns the catalog collection path for a deployment.
func CollectionPath(deploymentID string) string {
	return fmt.Sprintf("artifacts/%s/public/data/books", deploymentID)
}

// Service mirrors the remote book collection. On the first observed snapshot
// only, an empty collection is seeded with the fixed default set; later
// emptiness (all documents removed) never re-triggers seeding.
//
// Catalog reads are identity-independent: the service works with or without a
// signed-in session.
type Service struct {
	watcher mirror.Watcher
	writer  SeedWriter
	covers  CoverStore // optional
	queue   *writequeue.Queue
	path    string

	mirror *mirror.Mirror[bookdom.Book]

	mu        sync.RWMutex
	state     State
	firstSeen bool
}

// NewService wires the catalog over its ports. covers may be nil.
func NewService(watcher mirror.Watcher, writer SeedWriter, covers CoverStore, queue *writequeue.Queue, deploymentID string) *Service {
	return &Service{
		watcher: watcher,
		writer:  writer,
		covers:  covers,
		queue:   queue,
		path:    CollectionPath(deploymentID),
		mirror:  mirror.New[bookdom.Book](),
		state:   StateUninitialized,
	}
}

// Start opens the collection subscription.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateSubscribed
	s.mu.Unlock()

	s.mirror.OnSnapshot = s.onSnapshot
	if err := s.mirror.Open(ctx, s.watcher, s.path); err != nil {
		s.mu.Lock()
		s.state = StateUninitialized
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Service) onSnapshot(entries []mirror.Entry[bookdom.Book]) {
	s.mu.Lock()
	first := !s.firstSeen
	s.firstSeen = true
	s.mu.Unlock()

	if first && len(entries) == 0 {
		s.setState(StateSeedAttempted)
		log.Printf("[catalog] no books found, seeding default catalog")
		// The seed runs off the snapshot handler so other queued events are
		// not stalled behind its writes. The one-shot gate above stays here.
		s.queue.Enqueue("catalog-seed", func(ctx context.Context) error {
			s.seedDefaults(ctx)
			return nil
		})
	} else if first {
		s.setState(StateSeedSkipped)
	}
	s.setState(StateLive)
}

// seedDefaults writes the fixed default set keyed by each book's own id.
// Individual failures are logged and do not block the other documents or mark
// the catalog as failed, so the enqueued seed never reports an error.
func (s *Service) seedDefaults(ctx context.Context) {
	for _, b := range bookdom.DefaultCatalog() {
		if s.covers != nil {
			if url, err := s.covers.EnsureCover(ctx, b); err != nil {
				log.Printf("[catalog] WARN: cover upload failed id=%s: %v (keeping placeholder url)", b.ID, err)
			} else {
				b.ImageURL = url
			}
		}
		if err := s.writer.CreateOrReplaceBook(ctx, s.path, b); err != nil {
			log.Printf("[catalog] WARN: seed write failed id=%s: %v", b.ID, err)
			continue
		}
		log.Printf("[catalog] seeded book id=%s title=%q", b.ID, b.Title)
	}
}

func (s *Service) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready is closed once the first snapshot has been applied.
func (s *Service) Ready() <-chan struct{} {
	return s.mirror.Ready()
}

// Books returns the mirrored catalog in snapshot order. Before the first
// snapshot arrives the default set is served, the way the source showed its
// mock catalog while loading.
func (s *Service) Books() []bookdom.Book {
	select {
	case <-s.mirror.Ready():
	default:
		return bookdom.DefaultCatalog()
	}
	entries := s.mirror.Entries()
	out := make([]bookdom.Book, 0, len(entries))
	for _, e := range entries {
		b := e.Value
		b.ID = e.ID
		out = append(out, b)
	}
	return out
}

// Book returns one mirrored book by id.
func (s *Service) Book(id string) (bookdom.Book, bool) {
	for _, b := range s.Books() {
		if b.ID == id {
			return b, true
		}
	}
	return bookdom.Book{}, false
}

// Close cancels the collection subscription.
func (s *Service) Close() {
	s.mirror.Cancel()
}
