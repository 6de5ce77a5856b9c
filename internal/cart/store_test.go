package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// fakeRepository records saves in memory and honors the write-sequence
// contract, so tests can observe what the persistence worker actually wrote.
type fakeRepository struct {
	mu      sync.Mutex
	records map[string]*repository.CartRecord
	saves   int
	saveErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: make(map[string]*repository.CartRecord)}
}

func (f *fakeRepository) Get(_ context.Context, sessionID string) (*repository.CartRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[sessionID]
	if !ok {
		return nil, apperrors.NotFound("cart", sessionID)
	}
	cpy := *record
	return &cpy, nil
}

func (f *fakeRepository) Save(_ context.Context, record *repository.CartRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	if existing, ok := f.records[record.SessionID]; ok && existing.WriteSeq >= record.WriteSeq {
		return nil
	}
	cpy := *record
	f.records[record.SessionID] = &cpy
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, sessionID)
	return nil
}

func (f *fakeRepository) stored(sessionID string) *repository.CartRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[sessionID]
	if !ok {
		return nil
	}
	cpy := *record
	return &cpy
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	store := NewStore("sess-1", nil, 0, repo, nil, testLogger())
	t.Cleanup(store.Close)
	return store, repo
}

// =============================================================================
// AddItem
// =============================================================================

func TestStore_AddItem_NewLine(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "m", 2500, 2))

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.Equal(t, 2, snap.TotalItems)
	assert.Equal(t, int64(5000), snap.TotalPrice)
}

func TestStore_AddItem_MergesSameIdentity(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "", 2500, 2))
	require.NoError(t, store.AddItem(ctx, "p1", "", 9900, 1))

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 3, snap.Lines[0].Quantity)
	// The unit price of the first add wins.
	assert.Equal(t, int64(2500), snap.Lines[0].UnitPrice)
	assert.Equal(t, 3, snap.TotalItems)
	assert.Equal(t, int64(7500), snap.TotalPrice)
}

func TestStore_AddItem_VariantsAreDistinctLines(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "s", 2500, 1))
	require.NoError(t, store.AddItem(ctx, "p1", "m", 2500, 1))

	snap := store.Snapshot()
	assert.Len(t, snap.Lines, 2)
}

func TestStore_AddItem_PreservesInsertionOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 1))
	require.NoError(t, store.AddItem(ctx, "p2", "", 100, 1))
	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 1))

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "p1", snap.Lines[0].ProductID)
	assert.Equal(t, "p2", snap.Lines[1].ProductID)
}

func TestStore_AddItem_Validation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		productID string
		price     int64
		quantity  int
	}{
		{"missing product id", "", 100, 1},
		{"zero quantity", "p1", 100, 0},
		{"negative quantity", "p1", 100, -1},
		{"negative price", "p1", -1, 1},
		{"quantity over limit", "p1", 100, MaxQuantityPerLine + 1},
		{"price over limit", "p1", MaxPriceCents + 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.AddItem(ctx, tt.productID, "", tt.price, tt.quantity)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}

	// Rejected commands commit nothing.
	assert.Empty(t, store.Snapshot().Lines)
}

func TestStore_AddItem_FreeItem(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddItem(context.Background(), "p1", "", 0, 3))

	snap := store.Snapshot()
	assert.Equal(t, 3, snap.TotalItems)
	assert.Equal(t, int64(0), snap.TotalPrice)
}

// =============================================================================
// RemoveItem / SetQuantity
// =============================================================================

func TestStore_RemoveItem(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 1))
	require.NoError(t, store.AddItem(ctx, "p2", "", 100, 1))

	store.RemoveItem(ctx, "p1", "")

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "p2", snap.Lines[0].ProductID)
}

func TestStore_RemoveItem_Absent_NoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 1))

	notified := 0
	store.Subscribe(func(Snapshot) { notified++ })

	store.RemoveItem(ctx, "missing", "")

	assert.Len(t, store.Snapshot().Lines, 1)
	assert.Zero(t, notified, "structural no-op must not notify")
}

func TestStore_SetQuantity(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 1))
	require.NoError(t, store.SetQuantity(ctx, "p1", "", 5))

	snap := store.Snapshot()
	assert.Equal(t, 5, snap.Lines[0].Quantity)
	assert.Equal(t, int64(500), snap.TotalPrice)
}

func TestStore_SetQuantity_ZeroRemovesLine(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 2))
	require.NoError(t, store.SetQuantity(ctx, "p1", "", 0))

	assert.Empty(t, store.Snapshot().Lines)
}

func TestStore_SetQuantity_NegativeRemovesLine(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 2))
	require.NoError(t, store.SetQuantity(ctx, "p1", "", -3))

	assert.Empty(t, store.Snapshot().Lines)
}

func TestStore_SetQuantity_Absent_NeverCreates(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SetQuantity(context.Background(), "ghost", "", 4))

	assert.Empty(t, store.Snapshot().Lines)
}

// =============================================================================
// Clear and drawer
// =============================================================================

func TestStore_Clear_LeavesDrawerUntouched(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 1))
	store.OpenDrawer(ctx)

	store.Clear(ctx)

	snap := store.Snapshot()
	assert.Empty(t, snap.Lines)
	assert.True(t, snap.IsOpen)
	assert.Zero(t, snap.TotalItems)
}

func TestStore_Drawer_OpenCloseToggle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.False(t, store.Snapshot().IsOpen)

	store.OpenDrawer(ctx)
	assert.True(t, store.Snapshot().IsOpen)

	store.CloseDrawer(ctx)
	assert.False(t, store.Snapshot().IsOpen)

	store.ToggleDrawer(ctx)
	assert.True(t, store.Snapshot().IsOpen)
}

func TestStore_Toggle_TwiceRestoresState(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.ToggleDrawer(ctx)
	store.ToggleDrawer(ctx)
	assert.False(t, store.Snapshot().IsOpen)

	store.OpenDrawer(ctx)
	store.ToggleDrawer(ctx)
	store.ToggleDrawer(ctx)
	assert.True(t, store.Snapshot().IsOpen)
}

func TestStore_OpenDrawer_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.OpenDrawer(ctx)

	notified := 0
	store.Subscribe(func(Snapshot) { notified++ })
	store.OpenDrawer(ctx)

	assert.Zero(t, notified)
}

// =============================================================================
// Subscriptions
// =============================================================================

func TestStore_Subscribe_NotifiedAfterEachMutation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var snaps []Snapshot
	unsubscribe := store.Subscribe(func(s Snapshot) { snaps = append(snaps, s) })

	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 2))
	require.NoError(t, store.SetQuantity(ctx, "p1", "", 1))
	store.ToggleDrawer(ctx)

	require.Len(t, snaps, 3)
	assert.Equal(t, 2, snaps[0].TotalItems)
	assert.Equal(t, 1, snaps[1].TotalItems)
	assert.True(t, snaps[2].IsOpen)

	unsubscribe()
	require.NoError(t, store.AddItem(ctx, "p2", "", 100, 1))
	assert.Len(t, snaps, 3)
}

func TestStore_Subscribe_SnapshotIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.Subscribe(func(s Snapshot) {
		if len(s.Lines) > 0 {
			s.Lines[0].Quantity = 999
		}
	})

	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 2))

	assert.Equal(t, 2, store.Snapshot().Lines[0].Quantity)
}

// =============================================================================
// Persistence
// =============================================================================

func TestStore_Persistence_WritesCommittedState(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "m", 2500, 2))

	assert.Eventually(t, func() bool {
		record := repo.stored("sess-1")
		return record != nil && len(record.Lines) == 1 && record.Lines[0].Quantity == 2
	}, time.Second, 5*time.Millisecond)
}

func TestStore_Persistence_NewestWriteWins(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "", 100, 1))
	require.NoError(t, store.AddItem(ctx, "p2", "", 100, 1))
	require.NoError(t, store.SetQuantity(ctx, "p1", "", 7))

	assert.Eventually(t, func() bool {
		record := repo.stored("sess-1")
		return record != nil && record.WriteSeq == 3
	}, time.Second, 5*time.Millisecond)

	record := repo.stored("sess-1")
	require.Len(t, record.Lines, 2)
	assert.Equal(t, 7, record.Lines[0].Quantity)
}

func TestStore_Persistence_SaveFailureKeepsStateAuthoritative(t *testing.T) {
	repo := newFakeRepository()
	repo.saveErr = errors.New("redis down")
	store := NewStore("sess-1", nil, 0, repo, nil, testLogger())
	t.Cleanup(store.Close)

	require.NoError(t, store.AddItem(context.Background(), "p1", "", 100, 1))

	assert.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.saves > 0
	}, time.Second, 5*time.Millisecond)

	// In-memory state stands despite the failed save.
	assert.Equal(t, 1, store.TotalItems())
}

func TestStore_Close_FlushesPendingWrite(t *testing.T) {
	repo := newFakeRepository()
	store := NewStore("sess-1", nil, 0, repo, nil, testLogger())

	require.NoError(t, store.AddItem(context.Background(), "p1", "", 100, 1))
	store.Close()

	record := repo.stored("sess-1")
	require.NotNil(t, record)
	assert.Len(t, record.Lines, 1)
}

// =============================================================================
// Derived totals
// =============================================================================

func TestStore_Totals_NeverStale(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, "p1", "", 2500, 2))
	assert.Equal(t, 2, store.TotalItems())
	assert.Equal(t, int64(5000), store.TotalPrice())

	require.NoError(t, store.AddItem(ctx, "p2", "", 1000, 1))
	assert.Equal(t, 3, store.TotalItems())
	assert.Equal(t, int64(6000), store.TotalPrice())

	store.RemoveItem(ctx, "p1", "")
	assert.Equal(t, 1, store.TotalItems())
	assert.Equal(t, int64(1000), store.TotalPrice())

	store.Clear(ctx)
	assert.Zero(t, store.TotalItems())
	assert.Zero(t, store.TotalPrice())
}
