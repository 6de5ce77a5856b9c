package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
)

// CatalogHandler handles HTTP requests for the filtered catalog views.
type CatalogHandler struct {
	store  *catalog.Store
	logger *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(store *catalog.Store, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		store:  store,
		logger: logger,
	}
}

// ProductsResponse is the payload for the filtered product listing. When a
// collection filter is active its display name is included for the section
// heading.
type ProductsResponse struct {
	Products       pagination.Result[domain.Product] `json:"products"`
	SearchTerm     string                            `json:"search_term,omitempty"`
	CollectionID   string                            `json:"collection_id,omitempty"`
	CollectionName string                            `json:"collection_name,omitempty"`
}

// Products handles GET /api/v1/catalog/products?search=&collection=&page=&per_page=
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := catalog.FilterInput{SearchTerm: query.Get("search")}
	if collection := query.Get("collection"); collection != "" {
		input.CollectionID = &collection
	}

	filtered := catalog.Filter(h.store.Products(), input)

	params := pagination.FromRequest(r)
	page := pagination.Slice(filtered, params)

	resp := ProductsResponse{
		Products:   pagination.NewResult(page, len(filtered), params),
		SearchTerm: input.SearchTerm,
	}
	if input.CollectionID != nil {
		resp.CollectionID = *input.CollectionID
		if name, ok := h.store.CollectionName(*input.CollectionID); ok {
			resp.CollectionName = name
		}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// Collections handles GET /api/v1/catalog/collections?featured=true
func (h *CatalogHandler) Collections(w http.ResponseWriter, r *http.Request) {
	var collections []domain.Collection
	if r.URL.Query().Get("featured") == "true" {
		collections = h.store.FeaturedCollections()
	} else {
		collections = h.store.Collections()
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: collections})
}
