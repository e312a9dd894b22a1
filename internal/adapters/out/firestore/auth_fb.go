// internal/adapters/out/firestore/auth_fb.go
package firestore

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"

	"bookstore/internal/platform/stream"
)

// AuthFB is the backend auth channel built on Firebase Auth.
//
// The admin SDK has no client-side auth-state stream, so the adapter keeps
// the resolved identity itself: watchers get an initial emission with the
// current state and a re-emission after every sign-in, which is the same
// shape the client-side auth-state listener delivers.
type AuthFB struct {
	Auth *firebaseauth.Client // nil degrades to local anonymous identities
	Disp *stream.Dispatcher

	mu       sync.Mutex
	identity string
	watchers map[int]func(identity string)
	nextID   int
}

func NewAuthFB(auth *firebaseauth.Client, disp *stream.Dispatcher) *AuthFB {
	return &AuthFB{
		Auth:     auth,
		Disp:     disp,
		watchers: map[int]func(string){},
	}
}

// Watch registers h for identity-change events and emits the current state.
func (a *AuthFB) Watch(ctx context.Context, h func(identity string)) (*stream.Subscription, error) {
	if a == nil {
		return nil, errors.New("auth_fb: adapter is nil")
	}
	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.watchers[id] = h
	current := a.identity
	a.mu.Unlock()

	// Initial emission, serialized like every other event.
	a.Disp.Dispatch(func() { h(current) })

	return stream.NewSubscription(func() {
		a.mu.Lock()
		delete(a.watchers, id)
		a.mu.Unlock()
	}), nil
}

// SignInWithToken resolves a pre-issued token to its identity.
func (a *AuthFB) SignInWithToken(ctx context.Context, token string) (string, error) {
	if a == nil || a.Auth == nil {
		return "", errors.New("auth_fb: firebase auth client is nil")
	}
	tok := strings.TrimSpace(token)
	if tok == "" {
		return "", errors.New("auth_fb: token is empty")
	}

	verified, err := a.Auth.VerifyIDToken(ctx, tok)
	if err != nil {
		return "", err
	}
	a.setIdentity(verified.UID)
	return verified.UID, nil
}

// SignInAnonymously establishes a fresh anonymous identity. When the auth
// client is unavailable a local uid is minted so the cart can still scope its
// document; the store's security rules are the backstop in that mode.
func (a *AuthFB) SignInAnonymously(ctx context.Context) (string, error) {
	if a == nil {
		return "", errors.New("auth_fb: adapter is nil")
	}

	if a.Auth == nil {
		uid := "anon-" + uuid.NewString()
		log.Printf("[auth_fb] WARN: firebase auth unavailable, minted local identity %s", uid)
		a.setIdentity(uid)
		return uid, nil
	}

	user, err := a.Auth.CreateUser(ctx, &firebaseauth.UserToCreate{})
	if err != nil {
		return "", err
	}
	a.setIdentity(user.UID)
	return user.UID, nil
}

// setIdentity records the identity and re-emits it to watchers.
func (a *AuthFB) setIdentity(identity string) {
	a.mu.Lock()
	a.identity = identity
	watchers := make([]func(string), 0, len(a.watchers))
	for _, h := range a.watchers {
		watchers = append(watchers, h)
	}
	a.mu.Unlock()

	for _, h := range watchers {
		h := h
		a.Disp.Dispatch(func() { h(identity) })
	}
}
