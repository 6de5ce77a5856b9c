package repository

import (
	"context"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// CartRecord is the persisted form of a session's cart: the lines, the drawer
// flag, and the write sequence of the snapshot that produced it. The sequence
// lets the repository refuse stale writes so an older snapshot can never
// clobber a newer one.
type CartRecord struct {
	SessionID string            `json:"session_id"`
	Lines     []domain.CartLine `json:"lines"`
	IsOpen    bool              `json:"is_open"`
	WriteSeq  uint64            `json:"write_seq"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves the persisted cart for a session. Returns a not-found
	// application error when no record exists.
	Get(ctx context.Context, sessionID string) (*CartRecord, error)

	// Save persists a cart record. A record whose WriteSeq is lower than the
	// stored one is silently discarded (last-write-wins by sequence).
	Save(ctx context.Context, record *CartRecord) error

	// Delete removes the persisted cart for a session.
	Delete(ctx context.Context, sessionID string) error
}
