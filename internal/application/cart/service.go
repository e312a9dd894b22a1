// internal/application/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"bookstore/internal/application/mirror"
	"bookstore/internal/application/writequeue"
	bookdom "bookstore/internal/domain/book"
	cartdom "bookstore/internal/domain/cart"
	"bookstore/internal/platform/stream"
)

var (
	ErrNoIdentity     = errors.New("cart: session has no identity")
	ErrAlreadyStarted = errors.New("cart: already started")
)

// DocumentPath returns the single cart document path for an identity.
func DocumentPath(deploymentID, identity string) string {
	return fmt.Sprintf("artifacts/%s/users/%s/cart/myCart", deploymentID, identity)
}

// cartDoc is the wire shape of the cart document.
type cartDoc struct {
	Items []cartdom.CartItem `firestore:"items"`
}

// Service mirrors exactly one remote cart document, scoped by session
// identity, and is the only write path for local cart state.
//
// Mutations apply optimistically: the new items sequence is visible locally on
// return, while persistence runs through the write queue with merge
// semantics. A later remote snapshot is authoritative and unconditionally
// replaces local state (last-writer-wins by arrival order).
type Service struct {
	watcher mirror.Watcher
	writer  Writer
	queue   *writequeue.Queue

	identity string
	docPath  string

	mu    sync.RWMutex
	items []cartdom.CartItem

	readyOnce sync.Once
	ready     chan struct{}

	sub *stream.Subscription
}

// NewService wires the cart for one session identity. identity must be
// non-empty; Start enforces it.
func NewService(watcher mirror.Watcher, writer Writer, queue *writequeue.Queue, deploymentID, identity string) *Service {
	return &Service{
		watcher:  watcher,
		writer:   writer,
		queue:    queue,
		identity: strings.TrimSpace(identity),
		docPath:  DocumentPath(deploymentID, strings.TrimSpace(identity)),
		items:    []cartdom.CartItem{},
		ready:    make(chan struct{}),
	}
}

// Start opens the single-document subscription. Without an identity the cart
// is unavailable and Start refuses; the catalog remains usable.
func (s *Service) Start(ctx context.Context) error {
	if s.identity == "" {
		return ErrNoIdentity
	}
	s.mu.Lock()
	if s.sub != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.mu.Unlock()

	sub, err := s.watcher.WatchDocument(ctx, s.docPath, s.onSnapshot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// onSnapshot handles one document snapshot. An absent document is created
// once with empty items; otherwise the snapshot's items field replaces local
// state, defaulting to empty when the field is missing.
func (s *Service) onSnapshot(doc mirror.Document) {
	if !doc.Exists() {
		s.replaceItems(nil)
		s.queue.Enqueue("cart-init", func(ctx context.Context) error {
			return s.writer.CreateCart(ctx, s.docPath, []cartdom.CartItem{})
		})
		s.readyOnce.Do(func() { close(s.ready) })
		return
	}

	var d cartDoc
	if err := doc.DataTo(&d); err != nil {
		log.Printf("[cart] WARN: decode failed: %v (keeping previous items)", err)
		return
	}
	s.replaceItems(d.Items)
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *Service) replaceItems(items []cartdom.CartItem) {
	if items == nil {
		items = []cartdom.CartItem{}
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// Add puts one copy of b into the cart: quantity incremented when the book is
// already present, a fresh line otherwise. Returns the write queue id of the
// persistence attempt.
func (s *Service) Add(b bookdom.Book) uint64 {
	s.mu.Lock()
	next := cartdom.AddItem(s.items, b)
	s.items = next
	s.mu.Unlock()
	return s.persist(next)
}

// Remove drops the line matching bookID; removing an absent id is a no-op
// locally but still persists the (unchanged) sequence.
func (s *Service) Remove(bookID string) uint64 {
	s.mu.Lock()
	next := cartdom.RemoveItem(s.items, bookID)
	s.items = next
	s.mu.Unlock()
	return s.persist(next)
}

// Clear empties the cart.
func (s *Service) Clear() uint64 {
	s.mu.Lock()
	next := cartdom.ClearItems()
	s.items = next
	s.mu.Unlock()
	return s.persist(next)
}

// Checkout is a payment-free placeholder: it always succeeds, then clears the
// cart locally and remotely.
func (s *Service) Checkout() uint64 {
	log.Printf("[cart] checkout requested identity=%s items=%d total=%s",
		s.identity, len(s.Items()), bookdom.FormatPrice(s.Total()))
	return s.Clear()
}

// persist enqueues a merge write of the new items sequence. Failures are
// logged by the queue; local optimistic state stays in place either way.
func (s *Service) persist(items []cartdom.CartItem) uint64 {
	snapshot := make([]cartdom.CartItem, len(items))
	copy(snapshot, items)
	return s.queue.Enqueue("cart-merge", func(ctx context.Context) error {
		return s.writer.MergeCartItems(ctx, s.docPath, snapshot)
	})
}

// Items returns a copy of the current items sequence.
func (s *Service) Items() []cartdom.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]cartdom.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Cart returns the local cart view.
func (s *Service) Cart() cartdom.Cart {
	return cartdom.Cart{OwnerIdentity: s.identity, Items: s.Items()}
}

// Total returns the cart total.
func (s *Service) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cartdom.TotalOf(s.items)
}

// Identity returns the owning session identity.
func (s *Service) Identity() string {
	return s.identity
}

// Ready is closed after the first document snapshot has been handled.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Close cancels the document subscription. Safe when never started.
func (s *Service) Close() {
	s.mu.Lock()
	sub := s.sub
	s.mu.Unlock()
	sub.Cancel()
}
