// internal/application/cart/supervisor.go
package cart

import (
	"context"
	"log"
	"sync"

	"bookstore/internal/application/session"
)

// Supervisor keeps exactly one cart service bound to the current session
// identity. On every identity emission it cancels the previous cart
// subscription and opens a fresh one for the new identity; an empty identity
// leaves the cart unavailable until the session recovers one.
type Supervisor struct {
	build func(identity string) *Service

	mu  sync.RWMutex
	cur *Service
}

// NewSupervisor wires the supervisor over a cart factory.
func NewSupervisor(build func(identity string) *Service) *Supervisor {
	return &Supervisor{build: build}
}

// OnSession reacts to one session emission. A re-emission of the current
// identity is a no-op; anything else tears the cart down and, when an
// identity is present, rebuilds it.
func (s *Supervisor) OnSession(ctx context.Context, sess session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur != nil && s.cur.Identity() == sess.Identity {
		return
	}
	if s.cur != nil {
		log.Printf("[cart] identity changed, closing cart identity=%s", s.cur.Identity())
		s.cur.Close()
		s.cur = nil
	}
	if sess.Identity == "" {
		log.Printf("[cart] no session identity, cart unavailable")
		return
	}

	svc := s.build(sess.Identity)
	if err := svc.Start(ctx); err != nil {
		log.Printf("[cart] WARN: cart start failed identity=%s: %v", sess.Identity, err)
		return
	}
	s.cur = svc
}

// Current returns the cart bound to the present identity, nil when none.
func (s *Supervisor) Current() *Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Close cancels the current cart subscription, if any.
func (s *Supervisor) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		s.cur.Close()
		s.cur = nil
	}
}
