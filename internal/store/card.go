package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-scheduler/internal/domain"
)

// CardStore defines the interface for card scheduling state persistence.
type CardStore interface {
	// Create saves a new card. The card must pass domain validation.
	Create(ctx context.Context, card domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Card, error)

	// GetByIDForUpdate is GetByID with a row-level lock (SELECT ... FOR UPDATE).
	// It must run inside a transaction and serializes concurrent ratings of the
	// same card until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Card, error)

	// Update persists the scheduling fields of an existing card.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card domain.Card) error

	// ListDueReviews returns Review cards of the deck that are due at now,
	// ordered by due date, then by last review, then by ID. A limit of zero or
	// less returns every due card.
	ListDueReviews(ctx context.Context, deckID uuid.UUID, now time.Time, limit int) ([]domain.Card, error)

	// GetOldestNew returns the earliest-created New card of the deck.
	// Returns ErrCardNotFound if the deck has no New cards.
	GetOldestNew(ctx context.Context, deckID uuid.UUID) (domain.Card, error)

	// NextDueAt returns the earliest due date among the deck's Review cards.
	// The boolean is false when the deck has no Review cards.
	NextDueAt(ctx context.Context, deckID uuid.UUID) (time.Time, bool, error)

	// ListByDeck returns every card of the deck ordered by creation time.
	ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error)

	// WithTx returns a CardStore that runs its queries in tx.
	WithTx(tx *sql.Tx) CardStore
}
