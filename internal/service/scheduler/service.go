package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/domain/fsrs"
)

// Service decides which card to study next and records ratings.
// It holds no persistent state of its own: every call borrows stores from the
// injected store.UnitOfWork, and all times are passed in by the caller.
type Service interface {
	// GetNext returns the card to study at now.
	//
	// Due Review cards come first, in the deck's review order, unless the daily
	// review quota is spent. Otherwise, when allowNew is set and the daily new
	// quota allows it, the earliest-created New card is returned.
	//
	// Returns:
	//   - (card, nil): the card to study
	//   - (zero, ErrNoCardsDue): nothing is due or the quotas are spent
	//   - (zero, ErrDeckNotFound): the deck has no scheduling configuration
	GetNext(ctx context.Context, now time.Time, deckID uuid.UUID, allowNew bool) (domain.Card, error)

	// Preview computes the outcome of each rating without persisting anything.
	// Returns ErrCardNotFound or ErrDeckNotFound for missing entities.
	Preview(ctx context.Context, cardID uuid.UUID, now time.Time) (fsrs.Preview, error)

	// Rate applies a rating and returns the updated card.
	//
	// The card update and its review log entry are written in one transaction:
	// both become visible together or neither does. Storage failures are
	// returned unmodified.
	Rate(
		ctx context.Context,
		cardID uuid.UUID,
		rating domain.Rating,
		now time.Time,
		timeSpentMs int64,
	) (domain.Card, error)

	// PeekDue lists due Review cards in due-date order without selecting one.
	// A limit of zero or less lists them all.
	PeekDue(ctx context.Context, now time.Time, deckID uuid.UUID, limit int) ([]domain.Card, error)

	// TimeToNext returns how long until the deck's next Review card is due,
	// zero if one is already due. The boolean is false when the deck has no
	// Review cards at all.
	TimeToNext(ctx context.Context, now time.Time, deckID uuid.UUID) (time.Duration, bool, error)
}
