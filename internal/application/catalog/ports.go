// internal/application/catalog/ports.go
package catalog

import (
	"context"

	bookdom "bookstore/internal/domain/book"
)

// SeedWriter writes one default book into the remote catalog with
// create-or-replace semantics. Racing seed attempts from concurrent instances
// converge to the same final documents instead of erroring or duplicating.
type SeedWriter interface {
	CreateOrReplaceBook(ctx context.Context, collectionPath string, b bookdom.Book) error
}

// CoverStore hosts cover images for seeded books. Optional.
type CoverStore interface {
	// EnsureCover uploads (or reuses) a cover for b and returns its public URL.
	EnsureCover(ctx context.Context, b bookdom.Book) (string, error)
}
