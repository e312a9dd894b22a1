// internal/domain/book/entity.go
package book

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidBook = errors.New("book: invalid")
)

// Book represents "one catalog document".
//   - docId = Book.ID (Firestore)
//   - all other fields are replace-on-write
//
// The catalog is mirrored read-only locally; books are mutated only remotely.
type Book struct {
	// ID is the Firestore docId. It is not stored as a field inside the doc.
	ID string `json:"id" firestore:"-"`

	Title       string  `json:"title" firestore:"title"`
	Author      string  `json:"author" firestore:"author"`
	Price       float64 `json:"price" firestore:"price"`
	ImageURL    string  `json:"imageUrl" firestore:"imageUrl"`
	Description string  `json:"description" firestore:"description"`
}

// Validate checks the identity and price invariants.
func (b Book) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrInvalidBook
	}
	if strings.TrimSpace(b.Title) == "" {
		return ErrInvalidBook
	}
	if b.Price < 0 {
		return ErrInvalidBook
	}
	return nil
}

// FormatPrice renders a decimal price as "$x.xx".
func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}
