// internal/application/mirror/ports.go
package mirror

import (
	"context"

	"bookstore/internal/platform/stream"
)

// Document is one remote document inside a snapshot. DataTo decodes the
// document fields into v (a struct pointer), the way the backend client does.
type Document interface {
	ID() string
	Exists() bool
	DataTo(v any) error
}

// Watcher opens live subscriptions against the remote store. Every change
// notification delivers the complete current state, never a diff, in the
// order the backend emits it.
//
// Handlers are invoked serialized (one at a time); implementations route them
// through a stream.Dispatcher.
type Watcher interface {
	// WatchCollection subscribes to a collection path. docs carries every
	// document of the current snapshot in backend order.
	WatchCollection(ctx context.Context, path string, h func(docs []Document)) (*stream.Subscription, error)

	// WatchDocument subscribes to a single document path. doc.Exists()
	// reports whether the document currently exists.
	WatchDocument(ctx context.Context, path string, h func(doc Document)) (*stream.Subscription, error)
}
