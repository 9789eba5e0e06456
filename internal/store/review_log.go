package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-scheduler/internal/domain"
)

// DailyCounts is the number of ratings given since a study-day boundary,
// split by the state the card was in before the rating.
type DailyCounts struct {
	New    int
	Review int
}

// ReviewLogStore is the append-only audit trail of ratings. There is no update
// or delete: entries are immutable once written.
type ReviewLogStore interface {
	// Append writes one entry. Returns ErrReviewLogExists for a repeated ID.
	Append(ctx context.Context, entry *domain.ReviewLogEntry) error

	// CountSince counts the deck's entries reviewed at or after since.
	CountSince(ctx context.Context, deckID uuid.UUID, since time.Time) (DailyCounts, error)

	// ListByCard returns the card's entries oldest first.
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.ReviewLogEntry, error)

	// WithTx returns a ReviewLogStore that runs its queries in tx.
	WithTx(tx *sql.Tx) ReviewLogStore
}
