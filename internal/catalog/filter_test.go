package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utafrali/storefront/internal/domain"
)

func strPtr(s string) *string { return &s }

func testCatalog() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Blue Shirt", Description: "A classic cotton shirt", CollectionID: strPtr("c1")},
		{ID: "p2", Name: "Red Shoes", Description: "Leather running shoes", CollectionID: strPtr("c2")},
		{ID: "p3", Name: "Green Jacket", Description: "Waterproof shell", CollectionID: strPtr("c1")},
	}
}

// =============================================================================
// Collection filter
// =============================================================================

func TestFilter_ByCollection(t *testing.T) {
	result := Filter(testCatalog(), FilterInput{CollectionID: strPtr("c1")})

	assert.Len(t, result, 2)
	assert.Equal(t, "p1", result[0].ID)
	assert.Equal(t, "p3", result[1].ID)
}

func TestFilter_UnknownCollection_YieldsEmpty(t *testing.T) {
	result := Filter(testCatalog(), FilterInput{CollectionID: strPtr("nope")})

	assert.Empty(t, result)
}

func TestFilter_NilCollection_NoFilter(t *testing.T) {
	result := Filter(testCatalog(), FilterInput{})

	assert.Len(t, result, 3)
}

// =============================================================================
// Search filter
// =============================================================================

func TestFilter_BySearchTerm_MatchesName(t *testing.T) {
	result := Filter(testCatalog(), FilterInput{SearchTerm: "shoe"})

	assert.Len(t, result, 1)
	assert.Equal(t, "p2", result[0].ID)
}

func TestFilter_BySearchTerm_MatchesDescription(t *testing.T) {
	result := Filter(testCatalog(), FilterInput{SearchTerm: "waterproof"})

	assert.Len(t, result, 1)
	assert.Equal(t, "p3", result[0].ID)
}

func TestFilter_SearchTerm_CaseInsensitive(t *testing.T) {
	result := Filter(testCatalog(), FilterInput{SearchTerm: "BLUE"})

	assert.Len(t, result, 1)
	assert.Equal(t, "p1", result[0].ID)
}

func TestFilter_SearchTerm_Trimmed(t *testing.T) {
	result := Filter(testCatalog(), FilterInput{SearchTerm: "  shirt  "})

	assert.Len(t, result, 1)
	assert.Equal(t, "p1", result[0].ID)
}

func TestFilter_WhitespaceOnlyTerm_NoFilter(t *testing.T) {
	result := Filter(testCatalog(), FilterInput{SearchTerm: "   "})

	assert.Len(t, result, 3)
}

// =============================================================================
// Composition and invariants
// =============================================================================

func TestFilter_SearchAndCollection_ComposeWithAND(t *testing.T) {
	// "shirt" matches p1 only; collection c2 contains p2 only.
	// Together they must yield nothing.
	result := Filter(testCatalog(), FilterInput{
		SearchTerm:   "shirt",
		CollectionID: strPtr("c2"),
	})

	assert.Empty(t, result)
}

func TestFilter_PreservesCatalogOrder(t *testing.T) {
	products := []domain.Product{
		{ID: "a", Name: "Shirt One"},
		{ID: "b", Name: "Shirt Two"},
		{ID: "c", Name: "Shirt Three"},
	}

	result := Filter(products, FilterInput{SearchTerm: "shirt"})

	assert.Equal(t, []string{"a", "b", "c"}, []string{result[0].ID, result[1].ID, result[2].ID})
}

func TestFilter_Pure_DoesNotMutateInput(t *testing.T) {
	products := testCatalog()

	first := Filter(products, FilterInput{SearchTerm: "shoe"})
	second := Filter(products, FilterInput{SearchTerm: "shoe"})

	assert.Equal(t, first, second)
	assert.Len(t, products, 3)
	assert.Equal(t, "p1", products[0].ID)
}

func TestFilter_EmptyCatalog(t *testing.T) {
	result := Filter(nil, FilterInput{SearchTerm: "anything"})

	assert.NotNil(t, result)
	assert.Empty(t, result)
}

// =============================================================================
// Storefront scenarios
// =============================================================================

func TestFilter_SelectCollection_ReturnsOnlyMembers(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", Name: "Blue Shirt", CollectionID: strPtr("c1")},
		{ID: "p2", Name: "Red Shoes", CollectionID: strPtr("c2")},
	}

	result := Filter(products, FilterInput{CollectionID: strPtr("c1")})

	assert.Len(t, result, 1)
	assert.Equal(t, "p1", result[0].ID)
}

func TestFilter_SearchWithoutCollection(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", Name: "Blue Shirt", CollectionID: strPtr("c1")},
		{ID: "p2", Name: "Red Shoes", CollectionID: strPtr("c2")},
	}

	result := Filter(products, FilterInput{SearchTerm: "shoe"})

	assert.Len(t, result, 1)
	assert.Equal(t, "p2", result[0].ID)
}
