// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"

	bookdom "bookstore/internal/domain/book"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
)

// CartItem represents "one line item" in a cart: the book fields denormalized
// plus a quantity. Uniqueness is defined by the book id.
type CartItem struct {
	ID          string  `json:"id" firestore:"id"`
	Title       string  `json:"title" firestore:"title"`
	Author      string  `json:"author" firestore:"author"`
	Price       float64 `json:"price" firestore:"price"`
	ImageURL    string  `json:"imageUrl" firestore:"imageUrl"`
	Description string  `json:"description" firestore:"description"`
	Quantity    int     `json:"quantity" firestore:"quantity"`
}

// Subtotal returns price * quantity for the line.
func (it CartItem) Subtotal() float64 {
	return it.Price * float64(it.Quantity)
}

// Cart represents "the cart document".
//   - docId = myCart, under artifacts/{deploymentId}/users/{identity}/cart
//   - exactly one document per session identity
//
// OwnerIdentity is derived from the document path, not stored in the doc.
type Cart struct {
	OwnerIdentity string     `json:"ownerIdentity" firestore:"-"`
	Items         []CartItem `json:"items" firestore:"items"`
}

// Total returns the cart total across all lines.
func (c Cart) Total() float64 {
	return TotalOf(c.Items)
}

// Count returns the summed quantity across all lines.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// AddItem returns a new items sequence with b added: quantity incremented if a
// line with b.ID exists, otherwise a new line with quantity 1 appended.
// Pure and total; the input slice is never modified.
func AddItem(items []CartItem, b bookdom.Book) []CartItem {
	idx := findItemIndex(items, b.ID)
	out := cloneItems(items)
	if idx >= 0 {
		out[idx].Quantity++
		return out
	}
	return append(out, CartItem{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Price:       b.Price,
		ImageURL:    b.ImageURL,
		Description: b.Description,
		Quantity:    1,
	})
}

// RemoveItem returns a new items sequence without the line matching bookID.
// Removing an absent id is a no-op copy.
func RemoveItem(items []CartItem, bookID string) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, it := range items {
		if it.ID == bookID {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ClearItems returns the empty items sequence.
func ClearItems() []CartItem {
	return []CartItem{}
}

// TotalOf returns the total price of an items sequence.
func TotalOf(items []CartItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

// ValidateItems checks the per-line invariants: non-empty id, positive
// quantity, non-negative price and at most one line per book id.
func ValidateItems(items []CartItem) error {
	seen := map[string]struct{}{}
	for _, it := range items {
		id := strings.TrimSpace(it.ID)
		if id == "" || it.Quantity <= 0 || it.Price < 0 {
			return ErrInvalidCart
		}
		if _, dup := seen[id]; dup {
			return ErrInvalidCart
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ----------------------------
// Helpers
// ----------------------------

func findItemIndex(items []CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(src []CartItem) []CartItem {
	if len(src) == 0 {
		return []CartItem{}
	}
	cp := make([]CartItem, len(src))
	copy(cp, src)
	return cp
}
