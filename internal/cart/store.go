package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerLine is the maximum quantity allowed for a single cart line.
	MaxQuantityPerLine = 100
	// MaxLinesPerCart is the maximum number of distinct lines allowed in a cart.
	MaxLinesPerCart = 50
	// MaxPriceCents is the maximum unit price in cents (100,000.00) allowed per line.
	MaxPriceCents = 100_000_00
)

// saveTimeout bounds each background persistence write.
const saveTimeout = 5 * time.Second

// Snapshot is an immutable view of the cart handed to queries and observers.
// Totals are derived from the lines at snapshot time, never cached.
type Snapshot struct {
	Lines      []domain.CartLine `json:"lines"`
	IsOpen     bool              `json:"is_open"`
	TotalItems int               `json:"total_items"`
	TotalPrice int64             `json:"total_price"`
}

// EventPublisher publishes cart domain events after committed mutations.
// Publish failures are logged by the store, never surfaced to callers.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, snap Snapshot) error
	PublishCartCleared(ctx context.Context, sessionID string) error
}

// Store holds the authoritative in-memory cart for one browser session. All
// mutations go through the command methods; each committed mutation notifies
// subscribers synchronously and schedules an asynchronous persistence write.
// In-memory state is authoritative: a failed save is logged and the state
// stands.
type Store struct {
	mu        sync.Mutex
	sessionID string
	state     domain.CartState
	writeSeq  uint64

	subscribers map[int]func(Snapshot)
	nextSubID   int

	repo      repository.CartRepository
	publisher EventPublisher
	logger    *slog.Logger

	// Coalescing persistence worker: only the newest pending record is ever
	// written, and records carry a monotonic sequence so an older write can
	// never clobber a newer one at the repository.
	pending *repository.CartRecord
	wake    chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewStore creates a cart store for a session, seeded with the hydrated lines
// (nil for a fresh session) and the write sequence of the persisted record
// (zero for a fresh session), so post-hydration writes keep ascending. The
// drawer always starts closed: a reopened page must not auto-open the drawer.
// The persistence worker runs until Close.
func NewStore(sessionID string, lines []domain.CartLine, writeSeq uint64, repo repository.CartRepository, publisher EventPublisher, logger *slog.Logger) *Store {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		sessionID: sessionID,
		writeSeq:  writeSeq,
		state: domain.CartState{
			Lines:  append([]domain.CartLine(nil), lines...),
			IsOpen: false,
		},
		subscribers: make(map[int]func(Snapshot)),
		repo:        repo,
		publisher:   publisher,
		logger:      logger,
		wake:        make(chan struct{}, 1),
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	go s.persistLoop(ctx)

	return s
}

// SessionID returns the session this store belongs to.
func (s *Store) SessionID() string {
	return s.sessionID
}

// AddItem adds quantity of a product variant to the cart. An existing
// (productID, variantKey) line gains quantity; the unit price captured by the
// first add wins and is never overwritten by a later add.
func (s *Store) AddItem(ctx context.Context, productID, variantKey string, unitPrice int64, quantity int) error {
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	if unitPrice < 0 {
		return apperrors.InvalidInput("unit price must not be negative")
	}
	if quantity > MaxQuantityPerLine {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}
	if unitPrice > MaxPriceCents {
		return apperrors.InvalidInput(fmt.Sprintf("unit price must not exceed %d cents", MaxPriceCents))
	}

	s.mu.Lock()

	if i := s.state.FindLineIndex(productID, variantKey); i >= 0 {
		newQty := s.state.Lines[i].Quantity + quantity
		if newQty > MaxQuantityPerLine {
			s.mu.Unlock()
			return apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerLine))
		}
		s.state.Lines[i].Quantity = newQty
	} else {
		if len(s.state.Lines) >= MaxLinesPerCart {
			s.mu.Unlock()
			return apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d lines", MaxLinesPerCart))
		}
		s.state.Lines = append(s.state.Lines, domain.CartLine{
			ProductID:  productID,
			VariantKey: variantKey,
			Quantity:   quantity,
			UnitPrice:  unitPrice,
		})
	}

	snap, subs := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(ctx, snap, subs)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", s.sessionID),
		slog.String("product_id", productID),
		slog.String("variant_key", variantKey),
		slog.Int("quantity", quantity),
	)

	return nil
}

// RemoveItem removes the (productID, variantKey) line. Removing an absent
// line is a no-op, never an error.
func (s *Store) RemoveItem(ctx context.Context, productID, variantKey string) {
	s.mu.Lock()

	i := s.state.FindLineIndex(productID, variantKey)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.state.Lines = append(s.state.Lines[:i], s.state.Lines[i+1:]...)

	snap, subs := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(ctx, snap, subs)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", s.sessionID),
		slog.String("product_id", productID),
		slog.String("variant_key", variantKey),
	)
}

// SetQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line, exactly like RemoveItem. An absent line is a no-op:
// SetQuantity never creates lines.
func (s *Store) SetQuantity(ctx context.Context, productID, variantKey string, quantity int) error {
	if quantity > MaxQuantityPerLine {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	if quantity <= 0 {
		s.RemoveItem(ctx, productID, variantKey)
		return nil
	}

	s.mu.Lock()

	i := s.state.FindLineIndex(productID, variantKey)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.state.Lines[i].Quantity = quantity

	snap, subs := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(ctx, snap, subs)

	s.logger.InfoContext(ctx, "cart line quantity updated",
		slog.String("session_id", s.sessionID),
		slog.String("product_id", productID),
		slog.String("variant_key", variantKey),
		slog.Int("quantity", quantity),
	)

	return nil
}

// Clear empties the cart lines. The drawer flag is left untouched.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.state.Lines = []domain.CartLine{}
	snap, subs := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap, subs)
	s.publishCleared(ctx)

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", s.sessionID),
	)
}

// OpenDrawer opens the cart drawer. Idempotent: opening an open drawer
// commits nothing.
func (s *Store) OpenDrawer(ctx context.Context) {
	s.setOpen(ctx, true)
}

// CloseDrawer closes the cart drawer. Idempotent.
func (s *Store) CloseDrawer(ctx context.Context) {
	s.setOpen(ctx, false)
}

// ToggleDrawer flips the drawer flag. Two toggles in succession return the
// drawer to its original state.
func (s *Store) ToggleDrawer(ctx context.Context) {
	s.mu.Lock()
	s.state.IsOpen = !s.state.IsOpen
	snap, subs := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(ctx, snap, subs)
}

func (s *Store) setOpen(ctx context.Context, open bool) {
	s.mu.Lock()
	if s.state.IsOpen == open {
		s.mu.Unlock()
		return
	}
	s.state.IsOpen = open
	snap, subs := s.commitLocked()
	s.mu.Unlock()

	s.afterCommit(ctx, snap, subs)
}

// Snapshot returns the current cart state with derived totals.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// TotalItems returns the sum of line quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalItems()
}

// TotalPrice returns the sum of quantity × unit price over all lines, in cents.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalPrice()
}

// Subscribe registers an observer invoked synchronously, in a single pass,
// after each committed mutation. The returned function removes the
// subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Close stops the persistence worker, flushing any pending write first.
func (s *Store) Close() {
	s.cancel()
	<-s.done
}

// commitLocked advances the write sequence, queues the persistence record,
// and captures the snapshot plus the subscriber list for notification.
// Caller must hold s.mu.
func (s *Store) commitLocked() (Snapshot, []func(Snapshot)) {
	s.writeSeq++

	record := &repository.CartRecord{
		SessionID: s.sessionID,
		Lines:     append([]domain.CartLine(nil), s.state.Lines...),
		IsOpen:    s.state.IsOpen,
		WriteSeq:  s.writeSeq,
		UpdatedAt: time.Now().UTC(),
	}

	// Supersede any pending write: only the newest snapshot matters.
	s.pending = record
	select {
	case s.wake <- struct{}{}:
	default:
	}

	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return snap, subs
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:      append([]domain.CartLine(nil), s.state.Lines...),
		IsOpen:     s.state.IsOpen,
		TotalItems: s.state.TotalItems(),
		TotalPrice: s.state.TotalPrice(),
	}
}

// afterCommit notifies subscribers and publishes the cart.updated event.
func (s *Store) afterCommit(ctx context.Context, snap Snapshot, subs []func(Snapshot)) {
	s.notify(snap, subs)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCartUpdated(ctx, s.sessionID, snap); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Store) notify(snap Snapshot, subs []func(Snapshot)) {
	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) publishCleared(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCartCleared(ctx, s.sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// persistLoop is the single persistence worker for this store. It drains the
// coalescing slot: when multiple mutations land before a write completes,
// only the newest snapshot is written.
func (s *Store) persistLoop(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case <-s.wake:
			s.drainPending()
		}
	}
}

func (s *Store) drainPending() {
	s.mu.Lock()
	record := s.pending
	s.pending = nil
	s.mu.Unlock()

	if record == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.Error("failed to persist cart, in-memory state stands",
			slog.String("session_id", s.sessionID),
			slog.Uint64("write_seq", record.WriteSeq),
			slog.String("error", err.Error()),
		)
	}
}

// flush performs a final best-effort write on shutdown.
func (s *Store) flush() {
	s.drainPending()
}
