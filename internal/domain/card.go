package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// CardState is the lifecycle state of a card.
type CardState string

// Card lifecycle states. A card moves from New to Review on its first rating and
// never goes back.
const (
	CardStateNew    CardState = "new"
	CardStateReview CardState = "review"
)

// IsValid reports whether s is a known card state.
func (s CardState) IsValid() bool {
	return s == CardStateNew || s == CardStateReview
}

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrNewCardScheduled is returned when a New card carries review history.
	ErrNewCardScheduled = errors.New("new card must have zero repetitions and zero stability")

	// ErrCardNumbers is returned when a counter or memory value is out of range.
	ErrCardNumbers = errors.New("card scheduling values out of range")
)

// Card is the scheduling record of a single flashcard. Cards are plain values:
// copying a Card yields an independent snapshot, which is what the engine relies on
// to guarantee it never mutates the caller's instance.
type Card struct {
	ID     uuid.UUID `json:"id"`
	DeckID uuid.UUID `json:"deck_id"`
	State  CardState `json:"state"`

	Stability  float64 `json:"stability"`
	Difficulty float64 `json:"difficulty"`

	// IntervalMinutes is the last scheduled interval. It is never rounded.
	IntervalMinutes float64 `json:"interval_minutes"`
	Repetitions     int     `json:"repetitions"`
	Lapses          int     `json:"lapses"`

	DueAt time.Time `json:"due_at"`
	// LastReviewedAt is the zero time for cards that have never been rated.
	LastReviewedAt time.Time `json:"last_reviewed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCard creates a New card in the given deck, due immediately.
func NewCard(deckID uuid.UUID, now time.Time) (Card, error) {
	card := Card{
		ID:        uuid.New(),
		DeckID:    deckID,
		State:     CardStateNew,
		DueAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return Card{}, err
	}

	return card, nil
}

// Validate checks the structural invariants of a card.
func (c Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if !c.State.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCardState, c.State)
	}

	if c.State == CardStateNew && (c.Repetitions != 0 || c.Stability != 0) {
		return ErrNewCardScheduled
	}

	if c.Repetitions < 0 || c.Lapses < 0 || c.IntervalMinutes < 0 ||
		math.IsNaN(c.Stability) || math.IsNaN(c.Difficulty) {
		return ErrCardNumbers
	}

	return nil
}

// HasBeenReviewed reports whether the card carries a last-review timestamp.
func (c Card) HasBeenReviewed() bool {
	return !c.LastReviewedAt.IsZero()
}

// IsDue reports whether the card is due at the given instant.
func (c Card) IsDue(at time.Time) bool {
	return !c.DueAt.After(at)
}

// Snapshot captures the scheduling fields recorded in the review log.
func (c Card) Snapshot() CardSnapshot {
	return CardSnapshot{
		State:           c.State,
		Repetitions:     c.Repetitions,
		Lapses:          c.Lapses,
		Stability:       c.Stability,
		Difficulty:      c.Difficulty,
		IntervalMinutes: c.IntervalMinutes,
		DueAt:           c.DueAt,
	}
}
