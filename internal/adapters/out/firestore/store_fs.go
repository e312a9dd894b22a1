// internal/adapters/out/firestore/store_fs.go
package firestore

import (
	"context"
	"errors"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bookstore/internal/application/mirror"
	bookdom "bookstore/internal/domain/book"
	cartdom "bookstore/internal/domain/cart"
	"bookstore/internal/platform/stream"
)

var (
	errClientNil = errors.New("store_fs: firestore client is nil")
)

// StoreFS is the Firestore remote store: live snapshot listeners for the
// mirrors plus the seed / cart write operations.
//
// Listener handlers are routed through the dispatcher so they run serialized,
// one event at a time, across all subscriptions.
type StoreFS struct {
	Client *firestore.Client
	Disp   *stream.Dispatcher
}

func NewStoreFS(client *firestore.Client, disp *stream.Dispatcher) *StoreFS {
	return &StoreFS{Client: client, Disp: disp}
}

// fsDocument adapts a Firestore document snapshot to mirror.Document.
type fsDocument struct {
	snap *firestore.DocumentSnapshot
}

func (d fsDocument) ID() string         { return d.snap.Ref.ID }
func (d fsDocument) Exists() bool       { return d.snap.Exists() }
func (d fsDocument) DataTo(v any) error { return d.snap.DataTo(v) }

// WatchCollection subscribes to a collection path. Every change notification
// delivers the complete current snapshot in backend order. A listener failure
// is logged and ends the stream; local state freezes at the last snapshot (no
// automatic resubscription).
func (s *StoreFS) WatchCollection(ctx context.Context, path string, h func(docs []mirror.Document)) (*stream.Subscription, error) {
	if s == nil || s.Client == nil {
		return nil, errClientNil
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store_fs: collection path is empty")
	}

	lctx, cancel := context.WithCancel(ctx)
	it := s.Client.Collection(path).Snapshots(lctx)

	go func() {
		for {
			qs, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("[store_fs] WARN: collection listener failed path=%s: %v (local state frozen)", path, err)
				return
			}
			docs, err := collectDocs(qs.Documents)
			if err != nil {
				log.Printf("[store_fs] WARN: snapshot read failed path=%s: %v", path, err)
				continue
			}
			s.Disp.Dispatch(func() { h(docs) })
		}
	}()

	return stream.NewSubscription(func() {
		cancel()
		it.Stop()
	}), nil
}

// WatchDocument subscribes to a single document path.
func (s *StoreFS) WatchDocument(ctx context.Context, path string, h func(doc mirror.Document)) (*stream.Subscription, error) {
	if s == nil || s.Client == nil {
		return nil, errClientNil
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store_fs: document path is empty")
	}

	lctx, cancel := context.WithCancel(ctx)
	it := s.Client.Doc(path).Snapshots(lctx)

	go func() {
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("[store_fs] WARN: document listener failed path=%s: %v (local state frozen)", path, err)
				return
			}
			doc := fsDocument{snap: snap}
			s.Disp.Dispatch(func() { h(doc) })
		}
	}()

	return stream.NewSubscription(func() {
		cancel()
		it.Stop()
	}), nil
}

func collectDocs(di *firestore.DocumentIterator) ([]mirror.Document, error) {
	var out []mirror.Document
	for {
		snap, err := di.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, fsDocument{snap: snap})
	}
}

// CreateOrReplaceBook seeds one default book, keyed by the book's own id.
// Plain Set gives create-or-replace semantics, so racing seed attempts from
// concurrent instances converge to the same final documents.
func (s *StoreFS) CreateOrReplaceBook(ctx context.Context, collectionPath string, b bookdom.Book) error {
	if s == nil || s.Client == nil {
		return errClientNil
	}
	id := strings.TrimSpace(b.ID)
	if id == "" {
		return errors.New("store_fs: book id is empty")
	}
	_, err := s.Client.Collection(collectionPath).Doc(id).Set(ctx, b)
	return err
}

// CreateCart creates the cart document with the given items. Fails with
// AlreadyExists if the document is present (create, not merge); the caller
// treats that race as benign.
func (s *StoreFS) CreateCart(ctx context.Context, docPath string, items []cartdom.CartItem) error {
	if s == nil || s.Client == nil {
		return errClientNil
	}
	if items == nil {
		items = []cartdom.CartItem{}
	}
	_, err := s.Client.Doc(docPath).Create(ctx, map[string]any{"items": items})
	if status.Code(err) == codes.AlreadyExists {
		// Another client initialized the cart first; same outcome.
		return nil
	}
	return err
}

// MergeCartItems writes the items field with merge semantics: other fields
// stay untouched and a concurrently deleted document is recreated.
func (s *StoreFS) MergeCartItems(ctx context.Context, docPath string, items []cartdom.CartItem) error {
	if s == nil || s.Client == nil {
		return errClientNil
	}
	if items == nil {
		items = []cartdom.CartItem{}
	}
	_, err := s.Client.Doc(docPath).Set(ctx, map[string]any{"items": items}, firestore.MergeAll)
	return err
}
