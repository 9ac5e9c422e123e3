package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by repositories when the requested entity
// does not exist
var ErrNotFound = errors.New("entity not found")

// HoldingRepository defines the interface for holding persistence operations
type HoldingRepository interface {
	// Create creates a new holding
	Create(ctx context.Context, h *Holding) error

	// GetByID retrieves a holding by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Holding, error)

	// ListByUser retrieves all holdings of one user, oldest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Holding, error)

	// Update persists changes to an existing holding
	Update(ctx context.Context, h *Holding) error

	// Delete removes a holding
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateLivePrices sets the live unit price for the given holdings
	// in one pass. Holdings absent from the map keep their stored price.
	UpdateLivePrices(ctx context.Context, userID uuid.UUID, prices map[uuid.UUID]decimal.Decimal) error
}

// SnapshotRepository defines the interface for daily wealth snapshot persistence
type SnapshotRepository interface {
	// Upsert inserts the snapshot or overwrites the existing entry for
	// the same (user, date)
	Upsert(ctx context.Context, userID uuid.UUID, snap *WealthSnapshot) error

	// ListByUser retrieves a user's snapshots ordered by date ascending
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*WealthSnapshot, error)

	// DeleteByUser removes all snapshots of one user
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// TransactionRepository defines the interface for sell-log persistence operations
type TransactionRepository interface {
	// Create creates a new transaction entry
	Create(ctx context.Context, tx *Transaction) error

	// ListByUser retrieves a user's transactions, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)
}
