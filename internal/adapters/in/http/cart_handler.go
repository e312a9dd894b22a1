// internal/adapters/in/http/cart_handler.go
package httpin

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"bookstore/internal/application/cart"
	bookdom "bookstore/internal/domain/book"
)

// CartHandler serves the cart endpoints.
//
//	GET    /api/cart              -> current cart with totals
//	POST   /api/cart/items        -> add one copy of a book {bookId}
//	DELETE /api/cart/items/{id}   -> remove a line
//	POST   /api/cart/clear        -> empty the cart
//	POST   /api/checkout          -> placeholder checkout (clears the cart)
//
// Mutations respond with the optimistic local state; persistence outcome is
// observable through the write queue, not the response.
type CartHandler struct {
	cart func() *cart.Service

	// Books resolves a catalog book for add-to-cart. Wired by the router
	// when a catalog is present.
	Books func(id string) (bookdom.Book, bool)
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	svc := h.service()
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "cart unavailable (no session identity)")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodGet && path == "/api/cart":
		h.writeCart(w, svc)

	case r.Method == http.MethodPost && path == "/api/cart/items":
		h.add(w, r, svc)

	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/api/cart/items/"):
		id := strings.TrimPrefix(path, "/api/cart/items/")
		svc.Remove(id)
		h.writeCart(w, svc)

	case r.Method == http.MethodPost && path == "/api/cart/clear":
		svc.Clear()
		h.writeCart(w, svc)

	case r.Method == http.MethodPost && path == "/api/checkout":
		svc.Checkout()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *CartHandler) service() *cart.Service {
	if h.cart == nil {
		return nil
	}
	return h.cart()
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request, svc *cart.Service) {
	var req struct {
		BookID string `json:"bookId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.BookID) == "" {
		writeError(w, http.StatusBadRequest, "bookId is required")
		return
	}

	if h.Books == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	b, ok := h.Books(req.BookID)
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}

	svc.Add(b)
	log.Printf("[cart_handler] added bookId=%s identity=%s", b.ID, svc.Identity())
	h.writeCart(w, svc)
}

func (h *CartHandler) writeCart(w http.ResponseWriter, svc *cart.Service) {
	c := svc.Cart()
	writeJSON(w, http.StatusOK, map[string]any{
		"cart":  c,
		"count": c.Count(),
		"total": bookdom.FormatPrice(c.Total()),
	})
}
