package catalog

import (
	"strings"

	"catalog-admin/internal/domain"
)

// Criteria holds the active search and category filter. Empty fields match
// everything.
type Criteria struct {
	SearchText string
	Category   string
}

// IsZero reports whether c constrains nothing.
func (c Criteria) IsZero() bool {
	return c.SearchText == "" && c.Category == ""
}

// Apply returns the products matching c, in their original order.
// A product matches when the search text is a case-insensitive substring of
// its name or description, and its category equals c.Category exactly.
// The result is always a fresh slice; products is never modified.
func Apply(products []domain.Product, c Criteria) []domain.Product {
	if c.IsZero() {
		return append(make([]domain.Product, 0, len(products)), products...)
	}
	needle := strings.ToLower(c.SearchText)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matchesSearch(p, needle) && matchesCategory(p, c.Category) {
			out = append(out, p)
		}
	}
	return out
}

func matchesSearch(p domain.Product, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}

func matchesCategory(p domain.Product, category string) bool {
	return category == "" || p.Category == category
}
