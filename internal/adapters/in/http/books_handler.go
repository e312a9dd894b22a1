// internal/adapters/in/http/books_handler.go
package httpin

import (
	"net/http"
	"strings"

	"bookstore/internal/application/catalog"
)

// BooksHandler serves the catalog read endpoints.
//
//	GET /api/books        -> full catalog in snapshot order
//	GET /api/books/{id}   -> one book
type BooksHandler struct {
	catalog *catalog.Service
}

func (h *BooksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/books"), "/")
	if id == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"books": h.catalog.Books(),
			"state": h.catalog.State(),
		})
		return
	}

	b, ok := h.catalog.Book(id)
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}
