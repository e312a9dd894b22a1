// internal/adapters/in/http/router.go
package httpin

import (
	"encoding/json"
	"log"
	"net/http"

	"bookstore/internal/application/cart"
	"bookstore/internal/application/catalog"
)

// RouterDeps collects the services injected from main.
type RouterDeps struct {
	Catalog *catalog.Service

	// Cart returns the cart service for the current session, or nil while the
	// session has no identity (cart unavailable, catalog still available).
	Cart func() *cart.Service
}

// NewRouter attaches the storefront endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	books := &BooksHandler{catalog: deps.Catalog}
	mux.Handle("/api/books", books)
	mux.Handle("/api/books/", books)

	carts := &CartHandler{cart: deps.Cart}
	if deps.Catalog != nil {
		carts.Books = deps.Catalog.Book
	}
	mux.Handle("/api/cart", carts)
	mux.Handle("/api/cart/", carts)
	mux.Handle("/api/checkout", carts)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[httpin] WARN: response encode failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
