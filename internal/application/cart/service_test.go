// internal/application/cart/service_test.go
package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/application/mirror"
	"bookstore/internal/application/writequeue"
	bookdom "bookstore/internal/domain/book"
	cartdom "bookstore/internal/domain/cart"
	"bookstore/internal/platform/stream"
)

type fakeCartDoc struct {
	exists bool
	items  []cartdom.CartItem
}

func (d fakeCartDoc) ID() string   { return "myCart" }
func (d fakeCartDoc) Exists() bool { return d.exists }
func (d fakeCartDoc) DataTo(v any) error {
	*(v.(*cartDoc)) = cartDoc{Items: d.items}
	return nil
}

// fakeCartRemote simulates the remote cart document.
type fakeCartRemote struct {
	handler func(doc mirror.Document)

	createCalls int
	created     []cartdom.CartItem
	merged      [][]cartdom.CartItem
	mergeErr    error
	watchErr    error
	cancels     int
}

func (f *fakeCartRemote) WatchCollection(ctx context.Context, path string, h func(docs []mirror.Document)) (*stream.Subscription, error) {
	return stream.NewSubscription(nil), nil
}

func (f *fakeCartRemote) WatchDocument(ctx context.Context, path string, h func(doc mirror.Document)) (*stream.Subscription, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	f.handler = h
	return stream.NewSubscription(func() { f.cancels++ }), nil
}

func (f *fakeCartRemote) CreateCart(ctx context.Context, docPath string, items []cartdom.CartItem) error {
	f.createCalls++
	f.created = items
	return nil
}

func (f *fakeCartRemote) MergeCartItems(ctx context.Context, docPath string, items []cartdom.CartItem) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	cp := make([]cartdom.CartItem, len(items))
	copy(cp, items)
	f.merged = append(f.merged, cp)
	return nil
}

func (f *fakeCartRemote) push(exists bool, items []cartdom.CartItem) {
	f.handler(fakeCartDoc{exists: exists, items: items})
}

func newTestService(t *testing.T, remote *fakeCartRemote) (*Service, *writequeue.Queue) {
	t.Helper()
	q := writequeue.New(context.Background(), 1, 0)
	t.Cleanup(q.Close)
	svc := NewService(remote, remote, q, "test-app", "user-1")
	return svc, q
}

func guide() bookdom.Book {
	return bookdom.Book{
		ID:     "2",
		Title:  "The Hitchhiker's Guide to the Galaxy",
		Author: "Douglas Adams",
		Price:  15.50,
	}
}

func TestStartRequiresIdentity(t *testing.T) {
	remote := &fakeCartRemote{}
	q := writequeue.New(context.Background(), 1, 0)
	defer q.Close()

	svc := NewService(remote, remote, q, "test-app", "   ")
	assert.ErrorIs(t, svc.Start(context.Background()), ErrNoIdentity)
	assert.Nil(t, remote.handler, "no subscription without identity")
}

func TestCreatesDocumentWhenAbsent(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, q := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))

	remote.push(false, nil)

	// The cart-init write is the first (and only) queued write.
	assert.Equal(t, writequeue.StatusConfirmed, q.Wait(1))
	assert.Equal(t, 1, remote.createCalls)
	assert.NotNil(t, remote.created)
	assert.Empty(t, remote.created, "created with empty items")
	assert.Empty(t, svc.Items())
}

func TestSnapshotReplacesLocalItems(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, _ := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))

	items := cartdom.AddItem(nil, guide())
	remote.push(true, items)

	got := svc.Items()
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	// Items field absent defaults to empty.
	remote.push(true, nil)
	assert.Empty(t, svc.Items())
}

func TestAddIsOptimisticThenPersisted(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, q := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))
	remote.push(true, nil)

	id := svc.Add(guide())

	// Optimistic: visible before persistence settles.
	got := svc.Items()
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Quantity)

	assert.Equal(t, writequeue.StatusConfirmed, q.Wait(id))
	require.Len(t, remote.merged, 1)
	assert.Equal(t, got, remote.merged[0])
}

func TestAddTwiceThenRemoveScenario(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, q := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))
	remote.push(true, nil)

	svc.Add(guide())
	svc.Add(guide())

	got := svc.Items()
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Quantity)
	assert.Equal(t, "$31.00", bookdom.FormatPrice(svc.Total()))

	id := svc.Remove("2")
	q.Wait(id)

	assert.Empty(t, svc.Items())
	assert.Equal(t, "$0.00", bookdom.FormatPrice(svc.Total()))
	require.NotEmpty(t, remote.merged)
	assert.Empty(t, remote.merged[len(remote.merged)-1])
}

func TestRemoveMissingIDPersistsUnchangedSequence(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, q := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))
	remote.push(true, cartdom.AddItem(nil, guide()))

	id := svc.Remove("no-such-book")
	q.Wait(id)

	require.Len(t, svc.Items(), 1)
	require.Len(t, remote.merged, 1)
	assert.Len(t, remote.merged[0], 1)
}

func TestRemoteEchoLeavesLocalStateUnchanged(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, q := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))
	remote.push(true, nil)

	id := svc.Add(guide())
	q.Wait(id)
	before := svc.Items()

	// The store echoes the persisted state back through the subscription.
	remote.push(true, remote.merged[0])

	assert.Equal(t, before, svc.Items(), "echo must be value-stable")
}

func TestAuthoritativeSnapshotOverwritesOptimisticState(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, _ := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))
	remote.push(true, nil)

	svc.Add(guide())
	require.Len(t, svc.Items(), 1)

	// A snapshot reflecting an older write arrives afterwards; arrival order
	// wins, so local state is replaced even though it looks stale.
	remote.push(true, nil)
	assert.Empty(t, svc.Items())
}

func TestClearOnEmptyCartPersistsEmptySequence(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, q := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))
	remote.push(true, nil)

	id := svc.Clear()
	assert.Equal(t, writequeue.StatusConfirmed, q.Wait(id))

	assert.Empty(t, svc.Items())
	require.Len(t, remote.merged, 1)
	assert.NotNil(t, remote.merged[0])
	assert.Empty(t, remote.merged[0])
}

func TestCheckoutAlwaysSucceedsAndClears(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, q := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))
	remote.push(true, nil)

	svc.Add(guide())
	id := svc.Checkout()
	q.Wait(id)

	assert.Empty(t, svc.Items())
	assert.Empty(t, remote.merged[len(remote.merged)-1])
}

func TestPersistenceFailureKeepsOptimisticState(t *testing.T) {
	remote := &fakeCartRemote{mergeErr: errors.New("store unavailable")}
	svc, q := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))
	remote.push(true, nil)

	id := svc.Add(guide())

	assert.Equal(t, writequeue.StatusFailed, q.Wait(id))
	assert.ErrorIs(t, q.Err(id), remote.mergeErr)
	require.Len(t, svc.Items(), 1, "local optimistic state retained")
}

func TestMutationsPersistInOrder(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, q := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))
	remote.push(true, nil)

	svc.Add(guide())
	svc.Add(guide())
	last := svc.Remove("2")
	q.Wait(last)

	require.Len(t, remote.merged, 3)
	assert.Equal(t, 1, remote.merged[0][0].Quantity)
	assert.Equal(t, 2, remote.merged[1][0].Quantity)
	assert.Empty(t, remote.merged[2])
}

func TestReadySignalsAfterFirstSnapshot(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, _ := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))

	select {
	case <-svc.Ready():
		t.Fatal("ready before first snapshot")
	default:
	}

	remote.push(true, nil)

	select {
	case <-svc.Ready():
	case <-time.After(time.Second):
		t.Fatal("not ready after first snapshot")
	}
}

func TestDocumentPath(t *testing.T) {
	assert.Equal(t, "artifacts/test-app/users/user-1/cart/myCart", DocumentPath("test-app", "user-1"))
}

func TestCartView(t *testing.T) {
	remote := &fakeCartRemote{}
	svc, _ := newTestService(t, remote)
	require.NoError(t, svc.Start(context.Background()))
	remote.push(true, nil)

	svc.Add(guide())
	c := svc.Cart()
	assert.Equal(t, "user-1", c.OwnerIdentity)
	assert.Equal(t, 1, c.Count())
}
