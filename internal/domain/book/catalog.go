// internal/domain/book/catalog.go
package book

// DefaultCatalog returns the fixed book set used to seed an empty remote
// catalog. Seed writes key each document by Book.ID, so repeated seed
// attempts converge to the same documents.
func DefaultCatalog() []Book {
	return []Book{
		{
			ID:          "1",
			Title:       "The Lord of the Rings",
			Author:      "J.R.R. Tolkien",
			Price:       29.99,
			ImageURL:    "https://placehold.co/400x600/1e293b/d4d4d8?text=Book+1",
			Description: "A classic high fantasy novel.",
		},
		{
			ID:          "2",
			Title:       "The Hitchhiker's Guide to the Galaxy",
			Author:      "Douglas Adams",
			Price:       15.50,
			ImageURL:    "https://placehold.co/400x600/1e293b/d4d4d8?text=Book+2",
			Description: "A comedic science fiction series.",
		},
		{
			ID:          "3",
			Title:       "Dune",
			Author:      "Frank Herbert",
			Price:       22.00,
			ImageURL:    "https://placehold.co/400x600/1e293b/d4d4d8?text=Book+3",
			Description: "An epic science fiction novel.",
		},
		{
			ID:          "4",
			Title:       "1984",
			Author:      "George Orwell",
			Price:       12.99,
			ImageURL:    "https://placehold.co/400x600/1e293b/d4d4d8?text=Book+4",
			Description: "A dystopian social science fiction novel.",
		},
		{
			ID:          "5",
			Title:       "Pride and Prejudice",
			Author:      "Jane Austen",
			Price:       10.75,
			ImageURL:    "https://placehold.co/400x600/1e293b/d4d4d8?text=Book+5",
			Description: "A romantic novel of manners.",
		},
	}
}
