package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Manager owns one Store per session. A store is created and hydrated on
// first access and reused for the rest of the session's lifetime; there is no
// hidden global cart.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store

	repo      repository.CartRepository
	publisher EventPublisher
	logger    *slog.Logger
}

// NewManager creates a session cart manager.
func NewManager(repo repository.CartRepository, publisher EventPublisher, logger *slog.Logger) *Manager {
	return &Manager{
		stores:    make(map[string]*Store),
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Get returns the cart store for a session, hydrating it from the repository
// on first access. A missing record starts an empty cart; a load failure
// degrades to an empty cart with a warning, never an error. The drawer is
// always closed after hydration regardless of what was persisted.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	m.mu.Lock()
	if store, ok := m.stores[sessionID]; ok {
		m.mu.Unlock()
		return store, nil
	}
	m.mu.Unlock()

	lines, writeSeq := m.hydrate(ctx, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another request may have hydrated the same session concurrently.
	if store, ok := m.stores[sessionID]; ok {
		return store, nil
	}

	store := NewStore(sessionID, lines, writeSeq, m.repo, m.publisher, m.logger)
	m.stores[sessionID] = store
	return store, nil
}

// Drop clears the persisted cart and forgets the session's store.
func (m *Manager) Drop(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	store, ok := m.stores[sessionID]
	delete(m.stores, sessionID)
	m.mu.Unlock()

	if ok {
		store.Close()
	}

	return m.repo.Delete(ctx, sessionID)
}

// Close shuts down every session store, flushing pending writes.
func (m *Manager) Close() {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, s := range m.stores {
		stores = append(stores, s)
	}
	m.stores = make(map[string]*Store)
	m.mu.Unlock()

	for _, s := range stores {
		s.Close()
	}
}

// hydrate loads the persisted record for a session. It returns the lines and
// the record's write sequence so the new store continues the sequence instead
// of restarting it (a restart would make every new write look stale).
func (m *Manager) hydrate(ctx context.Context, sessionID string) ([]domain.CartLine, uint64) {
	record, err := m.repo.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			m.logger.WarnContext(ctx, "failed to load persisted cart, starting empty",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return nil, 0
	}

	m.logger.DebugContext(ctx, "cart hydrated",
		slog.String("session_id", sessionID),
		slog.Int("lines", len(record.Lines)),
		slog.Uint64("write_seq", record.WriteSeq),
	)

	return record.Lines, record.WriteSeq
}
