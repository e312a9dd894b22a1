// internal/application/writequeue/queue_test.go
package writequeue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueConfirms(t *testing.T) {
	q := New(context.Background(), 3, time.Millisecond)
	defer q.Close()

	id := q.Enqueue("test", func(ctx context.Context) error { return nil })

	assert.Equal(t, StatusConfirmed, q.Wait(id))
	assert.NoError(t, q.Err(id))
}

func TestBoundedRetryThenFailed(t *testing.T) {
	q := New(context.Background(), 3, time.Millisecond)
	defer q.Close()

	boom := errors.New("boom")
	attempts := 0
	id := q.Enqueue("test", func(ctx context.Context) error {
		attempts++
		return boom
	})

	assert.Equal(t, StatusFailed, q.Wait(id))
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, q.Err(id), boom)
}

func TestRetrySucceedsMidway(t *testing.T) {
	q := New(context.Background(), 3, time.Millisecond)
	defer q.Close()

	attempts := 0
	id := q.Enqueue("test", func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})

	assert.Equal(t, StatusConfirmed, q.Wait(id))
	assert.Equal(t, 2, attempts)
}

func TestWritesRunInEnqueueOrder(t *testing.T) {
	q := New(context.Background(), 1, 0)
	defer q.Close()

	var mu sync.Mutex
	var order []int
	var ids []uint64
	for i := 0; i < 8; i++ {
		i := i
		ids = append(ids, q.Enqueue("test", func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}))
	}
	for _, id := range ids {
		q.Wait(id)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)
}

func TestStatusTransitions(t *testing.T) {
	q := New(context.Background(), 1, 0)
	defer q.Close()

	release := make(chan struct{})
	id := q.Enqueue("test", func(ctx context.Context) error {
		<-release
		return nil
	})

	st, ok := q.Status(id)
	require.True(t, ok)
	assert.Equal(t, StatusPending, st)

	close(release)
	assert.Equal(t, StatusConfirmed, q.Wait(id))

	st, ok = q.Status(id)
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, st)
}

func TestEnqueueAfterCloseFailsImmediately(t *testing.T) {
	q := New(context.Background(), 1, 0)
	q.Close()

	id := q.Enqueue("test", func(ctx context.Context) error { return nil })

	assert.Equal(t, StatusFailed, q.Wait(id))
	assert.ErrorIs(t, q.Err(id), ErrClosed)
}

func TestEnqueueRacingCloseReachesTerminalStatus(t *testing.T) {
	q := New(context.Background(), 1, 0)

	const n = 32
	ids := make([]uint64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			ids[i] = q.Enqueue("noop", func(ctx context.Context) error { return nil })
		}()
	}
	q.Close()
	wg.Wait()

	// Every write landed before or after Close; none may stay pending.
	statuses := make([]Status, n)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, id := range ids {
			statuses[i] = q.Wait(id)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("a write enqueued around Close never reached a terminal status")
	}
	for i, st := range statuses {
		assert.Contains(t, []Status{StatusConfirmed, StatusFailed}, st, "write %d", i)
		if st == StatusFailed {
			assert.ErrorIs(t, q.Err(ids[i]), ErrClosed)
		}
	}
}

func TestUnknownID(t *testing.T) {
	q := New(context.Background(), 1, 0)
	defer q.Close()

	_, ok := q.Status(999)
	assert.False(t, ok)
	assert.Equal(t, Status(""), q.Wait(999))
}
