package catalog

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Provider is the external catalog source. The storefront treats it as a
// collaborator behind this interface: the production implementation is the
// HTTP client against the product service, tests use fakes.
type Provider interface {
	// LoadProducts fetches the full product list in catalog order.
	LoadProducts(ctx context.Context) ([]domain.Product, error)

	// LoadCollections fetches the full collection list.
	LoadCollections(ctx context.Context) ([]domain.Collection, error)
}
