// internal/application/session/ports.go
package session

import (
	"context"

	"bookstore/internal/platform/stream"
)

// Authenticator is the backend auth channel.
//
// Watch emits the currently resolved identity on every auth-state change,
// including an initial emission for the state at subscribe time. An empty
// identity means "signed out".
type Authenticator interface {
	Watch(ctx context.Context, h func(identity string)) (*stream.Subscription, error)

	// SignInWithToken resolves a pre-issued token to an identity.
	SignInWithToken(ctx context.Context, token string) (string, error)

	// SignInAnonymously establishes a fresh anonymous identity.
	SignInAnonymously(ctx context.Context) (string, error)
}
