package catalog

import (
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// Store is an in-memory snapshot of the catalog: the ordered product list and
// the collection list the storefront renders from. It is loaded in bulk from
// the catalog provider at startup and kept fresh by the event consumer.
// Thread-safe via sync.RWMutex. Order is insertion order; upserts of known
// ids update in place so the storefront never reshuffles.
type Store struct {
	mu          sync.RWMutex
	products    []domain.Product
	productIdx  map[string]int
	collections []domain.Collection
	collIdx     map[string]int
}

// NewStore creates an empty catalog store.
func NewStore() *Store {
	return &Store{
		products:    make([]domain.Product, 0),
		productIdx:  make(map[string]int),
		collections: make([]domain.Collection, 0),
		collIdx:     make(map[string]int),
	}
}

// ReplaceProducts swaps the entire product snapshot. Used for bulk loads.
func (s *Store) ReplaceProducts(products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make([]domain.Product, len(products))
	copy(s.products, products)
	s.productIdx = make(map[string]int, len(products))
	for i := range s.products {
		s.productIdx[s.products[i].ID] = i
	}
}

// ReplaceCollections swaps the entire collection snapshot. Used for bulk loads.
func (s *Store) ReplaceCollections(collections []domain.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections = make([]domain.Collection, len(collections))
	copy(s.collections, collections)
	s.collIdx = make(map[string]int, len(collections))
	for i := range s.collections {
		s.collIdx[s.collections[i].ID] = i
	}
}

// UpsertProduct adds a product or updates it in place, preserving its
// position in the catalog order.
func (s *Store) UpsertProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.productIdx[p.ID]; ok {
		s.products[i] = p
		return
	}
	s.productIdx[p.ID] = len(s.products)
	s.products = append(s.products, p)
}

// RemoveProduct removes a product by id. Absent ids are a no-op.
func (s *Store) RemoveProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.productIdx[id]
	if !ok {
		return
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	delete(s.productIdx, id)
	for j := i; j < len(s.products); j++ {
		s.productIdx[s.products[j].ID] = j
	}
}

// UpsertCollection adds a collection or updates it in place.
func (s *Store) UpsertCollection(c domain.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.collIdx[c.ID]; ok {
		s.collections[i] = c
		return
	}
	s.collIdx[c.ID] = len(s.collections)
	s.collections = append(s.collections, c)
}

// RemoveCollection removes a collection by id. Absent ids are a no-op.
func (s *Store) RemoveCollection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.collIdx[id]
	if !ok {
		return
	}
	s.collections = append(s.collections[:i], s.collections[i+1:]...)
	delete(s.collIdx, id)
	for j := i; j < len(s.collections); j++ {
		s.collIdx[s.collections[j].ID] = j
	}
}

// Products returns a copy of the product snapshot in catalog order.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Collections returns a copy of the collection snapshot in catalog order.
func (s *Store) Collections() []domain.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Collection, len(s.collections))
	copy(out, s.collections)
	return out
}

// FeaturedCollections returns collections flagged as featured, in catalog order.
func (s *Store) FeaturedCollections() []domain.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Collection, 0)
	for _, c := range s.collections {
		if c.Featured {
			out = append(out, c)
		}
	}
	return out
}

// CollectionName resolves a collection id to its display name. Returns false
// when the id is unknown.
func (s *Store) CollectionName(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.collIdx[id]
	if !ok {
		return "", false
	}
	return s.collections[i].Name, true
}
