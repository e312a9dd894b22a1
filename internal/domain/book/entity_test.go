// internal/domain/book/entity_test.go
package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	b := Book{ID: "1", Title: "Dune", Price: 22.00}
	require.NoError(t, b.Validate())

	assert.ErrorIs(t, Book{Title: "x"}.Validate(), ErrInvalidBook)
	assert.ErrorIs(t, Book{ID: "1"}.Validate(), ErrInvalidBook)
	assert.ErrorIs(t, Book{ID: "1", Title: "x", Price: -0.01}.Validate(), ErrInvalidBook)
}

func TestDefaultCatalog(t *testing.T) {
	books := DefaultCatalog()
	require.Len(t, books, 5)

	seen := map[string]bool{}
	for _, b := range books {
		require.NoError(t, b.Validate())
		assert.False(t, seen[b.ID], "duplicate id %s", b.ID)
		seen[b.ID] = true
	}

	guide := books[1]
	assert.Equal(t, "The Hitchhiker's Guide to the Galaxy", guide.Title)
	assert.Equal(t, "$15.50", FormatPrice(guide.Price))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$0.00", FormatPrice(0))
	assert.Equal(t, "$29.99", FormatPrice(29.99))
}
