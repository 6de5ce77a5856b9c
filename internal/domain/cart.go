package domain

// CartLine is one entry in a cart, identified by (ProductID, VariantKey).
// VariantKey is empty for products sold without variants. UnitPrice is the
// price captured when the line was first added, in minor currency units.
type CartLine struct {
	ProductID  string `json:"product_id"`
	VariantKey string `json:"variant_key,omitempty"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

// CartState is a cart snapshot: the ordered line items (insertion order) and
// the drawer visibility flag. Totals are always derived from Lines so they
// cannot drift out of sync with the line contents.
type CartState struct {
	Lines  []CartLine `json:"lines"`
	IsOpen bool       `json:"is_open"`
}

// TotalItems returns the summed quantity across all lines.
func (s *CartState) TotalItems() int {
	var n int
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice returns the summed quantity×unitPrice across all lines, in minor
// currency units.
func (s *CartState) TotalPrice() int64 {
	var total int64
	for _, l := range s.Lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

// FindLineIndex returns the index of the line matching the given identity, or
// -1 if no such line exists.
func (s *CartState) FindLineIndex(productID, variantKey string) int {
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID && s.Lines[i].VariantKey == variantKey {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the state. The cart store hands out clones so
// callers can never mutate the authoritative lines slice.
func (s *CartState) Clone() CartState {
	lines := make([]CartLine, len(s.Lines))
	copy(lines, s.Lines)
	return CartState{Lines: lines, IsOpen: s.IsOpen}
}
