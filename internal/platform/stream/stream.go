// internal/platform/stream/stream.go
package stream

import "sync"

// Subscription is the uniform cancel token for every live subscription
// (identity, catalog, cart). Cancel releases the underlying listener.
//
// Cancel is idempotent: calling it more than once, or on a zero Subscription
// that was never opened, is a no-op.
type Subscription struct {
	once    sync.Once
	release func()
}

// NewSubscription wraps a release function. release may be nil.
func NewSubscription(release func()) *Subscription {
	return &Subscription{release: release}
}

// Cancel releases the subscription. Safe to call any number of times.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}
