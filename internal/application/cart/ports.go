// internal/application/cart/ports.go
package cart

import (
	"context"

	cartdom "bookstore/internal/domain/cart"
)

// Writer persists the cart document.
type Writer interface {
	// CreateCart creates the document with the given items. It must fail if
	// the document already exists (create, not merge).
	CreateCart(ctx context.Context, docPath string, items []cartdom.CartItem) error

	// MergeCartItems writes the items field with merge semantics: other
	// fields are left untouched and the document is recreated if it was
	// concurrently deleted.
	MergeCartItems(ctx context.Context, docPath string, items []cartdom.CartItem) error
}
