package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-scheduler/internal/domain"
)

// DeckStore persists per-deck scheduling configuration.
type DeckStore interface {
	// GetConfig returns the scheduling configuration of a deck.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetConfig(ctx context.Context, deckID uuid.UUID) (*domain.DeckSchedulingConfig, error)

	// Upsert creates or replaces a deck's configuration after validating it.
	Upsert(ctx context.Context, cfg *domain.DeckSchedulingConfig) error

	// WithTx returns a DeckStore that runs its queries in tx.
	WithTx(tx *sql.Tx) DeckStore
}
