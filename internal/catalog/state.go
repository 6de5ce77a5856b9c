package catalog

import (
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// View is the filtered catalog the presentation layer renders: the matching
// products in catalog order plus the filter inputs that produced them.
type View struct {
	Products     []domain.Product
	SearchTerm   string
	CollectionID *string
}

// FilterState holds the transient filter selections (search term and selected
// collection) and the filtered view derived from them. Each command
// recomputes the view synchronously against the catalog store and notifies
// subscribers in a single pass. Thread-safe.
type FilterState struct {
	mu           sync.Mutex
	store        *Store
	searchTerm   string
	collectionID *string

	subscribers map[int]func(View)
	nextSubID   int
}

// NewFilterState creates a filter state bound to the given catalog store.
func NewFilterState(store *Store) *FilterState {
	return &FilterState{
		store:       store,
		subscribers: make(map[int]func(View)),
	}
}

// SetSearchTerm updates the free-text search term and recomputes the view.
func (f *FilterState) SetSearchTerm(term string) {
	f.mu.Lock()
	f.searchTerm = term
	view := f.viewLocked()
	subs := f.subscribersLocked()
	f.mu.Unlock()

	notify(subs, view)
}

// SelectCollection sets the selected collection id and recomputes the view.
// An unknown id is legal and yields an empty view.
func (f *FilterState) SelectCollection(id string) {
	f.mu.Lock()
	f.collectionID = &id
	view := f.viewLocked()
	subs := f.subscribersLocked()
	f.mu.Unlock()

	notify(subs, view)
}

// ClearCollectionFilter removes the collection filter and recomputes the view.
func (f *FilterState) ClearCollectionFilter() {
	f.mu.Lock()
	f.collectionID = nil
	view := f.viewLocked()
	subs := f.subscribersLocked()
	f.mu.Unlock()

	notify(subs, view)
}

// View returns the current filtered view.
func (f *FilterState) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// Subscribe registers an observer invoked after each filter change. The
// returned function removes the subscription.
func (f *FilterState) Subscribe(fn func(View)) func() {
	f.mu.Lock()
	id := f.nextSubID
	f.nextSubID++
	f.subscribers[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subscribers, id)
		f.mu.Unlock()
	}
}

func (f *FilterState) viewLocked() View {
	var collectionID *string
	if f.collectionID != nil {
		id := *f.collectionID
		collectionID = &id
	}
	return View{
		Products: Filter(f.store.Products(), FilterInput{
			SearchTerm:   f.searchTerm,
			CollectionID: f.collectionID,
		}),
		SearchTerm:   f.searchTerm,
		CollectionID: collectionID,
	}
}

func (f *FilterState) subscribersLocked() []func(View) {
	subs := make([]func(View), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(View), view View) {
	for _, fn := range subs {
		fn(view)
	}
}
