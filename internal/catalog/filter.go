package catalog

import (
	"strings"

	"github.com/utafrali/storefront/internal/domain"
)

// FilterInput holds the two storefront filter dimensions. A nil CollectionID
// means "no collection filter"; a non-nil id that matches no product legally
// yields an empty result.
type FilterInput struct {
	SearchTerm   string
	CollectionID *string
}

// Filter narrows the product list by collection and free-text search. It is a
// pure function: the input slice is never mutated and calling it again with
// the same inputs returns the same result. Both filters compose with AND, and
// the result preserves the order of the input catalog.
func Filter(products []domain.Product, input FilterInput) []domain.Product {
	term := strings.ToLower(strings.TrimSpace(input.SearchTerm))

	matched := make([]domain.Product, 0)
	for _, p := range products {
		if !matches(p, input.CollectionID, term) {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

// matches checks a single product against both filter dimensions.
func matches(p domain.Product, collectionID *string, term string) bool {
	// Collection filter.
	if collectionID != nil && *collectionID != "" {
		if p.CollectionID == nil || *p.CollectionID != *collectionID {
			return false
		}
	}

	// Full-text match on name and description.
	if term != "" {
		nameLower := strings.ToLower(p.Name)
		descLower := strings.ToLower(p.Description)
		if !strings.Contains(nameLower, term) && !strings.Contains(descLower, term) {
			return false
		}
	}

	return true
}
