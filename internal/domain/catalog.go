package domain

// Product is a catalog product as supplied by the catalog service. The
// storefront treats it as read-only; price is in minor currency units.
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        int64   `json:"price"`
	Currency     string  `json:"currency"`
	CollectionID *string `json:"collection_id,omitempty"`
	ImageURL     string  `json:"image_url,omitempty"`
}

// Collection is a curated grouping of products used as a filter dimension on
// the landing page.
type Collection struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Featured    bool    `json:"featured"`
}
