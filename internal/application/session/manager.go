// internal/application/session/manager.go
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"bookstore/internal/platform/stream"
)

var (
	ErrAlreadyStarted = errors.New("session: already started")
)

// Session is the resolved state of the auth channel. Ready transitions
// exactly once from false to true, whether or not sign-in succeeded; an empty
// Identity after Ready means sign-in failed (cart unavailable, catalog still
// available).
type Session struct {
	Identity string
	Ready    bool
}

// Manager establishes and tracks the user identity for the process lifetime.
// A failed sign-in is logged and non-fatal; dependents observe an empty
// identity instead of blocking forever.
type Manager struct {
	auth  Authenticator
	token string

	mu        sync.RWMutex
	identity  string
	ready     bool
	observers []func(Session)

	readyOnce sync.Once
	readyCh   chan struct{}

	sub *stream.Subscription
}

// NewManager returns an unstarted manager. token may be empty, in which case
// sign-in is anonymous.
func NewManager(auth Authenticator, token string) *Manager {
	return &Manager{
		auth:    auth,
		token:   token,
		readyCh: make(chan struct{}),
	}
}

// Start opens the long-lived identity listener and triggers the first
// resolution. It returns once the listener is open; readiness is signalled
// asynchronously via Ready.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.sub != nil {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.mu.Unlock()

	sub, err := m.auth.Watch(ctx, func(identity string) {
		m.onAuthState(ctx, identity)
	})
	if err != nil {
		// The auth channel itself is unavailable. Degrade to "no identity"
		// and still become ready so dependents are not blocked.
		log.Printf("[session] WARN: auth watch failed: %v (continuing without identity)", err)
		m.setIdentity("")
		return nil
	}

	m.mu.Lock()
	m.sub = sub
	m.mu.Unlock()
	return nil
}

// onAuthState handles one identity-change event from the auth channel.
func (m *Manager) onAuthState(ctx context.Context, identity string) {
	if identity != "" {
		m.setIdentity(identity)
		return
	}

	// Signed out: establish an identity, token-based when configured.
	var (
		id  string
		err error
	)
	if m.token != "" {
		id, err = m.auth.SignInWithToken(ctx, m.token)
	} else {
		id, err = m.auth.SignInAnonymously(ctx)
	}
	if err != nil {
		log.Printf("[session] WARN: sign-in failed: %v", err)
		id = ""
	}
	m.setIdentity(id)
}

// setIdentity records the identity, marks readiness (first time only) and
// re-emits the session to subscribers.
func (m *Manager) setIdentity(identity string) {
	m.mu.Lock()
	m.identity = identity
	m.ready = true
	observers := make([]func(Session), len(m.observers))
	copy(observers, m.observers)
	s := Session{Identity: identity, Ready: true}
	m.mu.Unlock()

	m.readyOnce.Do(func() { close(m.readyCh) })

	for _, h := range observers {
		h(s)
	}
}

// Ready is closed after the first resolution, success or failure.
func (m *Manager) Ready() <-chan struct{} {
	return m.readyCh
}

// Current returns the session as currently resolved.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Session{Identity: m.identity, Ready: m.ready}
}

// Subscribe registers h for identity re-emissions. The returned token follows
// the uniform cancel contract.
func (m *Manager) Subscribe(h func(Session)) *stream.Subscription {
	m.mu.Lock()
	m.observers = append(m.observers, h)
	i := len(m.observers) - 1
	m.mu.Unlock()

	return stream.NewSubscription(func() {
		m.mu.Lock()
		if i < len(m.observers) {
			m.observers[i] = func(Session) {}
		}
		m.mu.Unlock()
	})
}

// Close cancels the identity listener.
func (m *Manager) Close() {
	m.mu.Lock()
	sub := m.sub
	m.mu.Unlock()
	sub.Cancel()
}
