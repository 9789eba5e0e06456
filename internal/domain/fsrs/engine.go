package fsrs

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-scheduler/internal/domain"
)

// defaultRetrievability is reported for cards that have no usable memory state.
const defaultRetrievability = 0.9

// Outcome is the result of applying one rating to a card.
type Outcome struct {
	Rating domain.Rating
	Card   domain.Card
	// ElapsedDays since the previous review, 0 for a first review.
	ElapsedDays float64
	// Retrievability of the card at review time, before the update.
	Retrievability float64
}

// Preview holds the four possible outcomes of rating a card now.
type Preview struct {
	Again Outcome
	Hard  Outcome
	Good  Outcome
	Easy  Outcome
}

// For returns the outcome of the given rating.
func (p Preview) For(r domain.Rating) (Outcome, bool) {
	switch r {
	case domain.RatingAgain:
		return p.Again, true
	case domain.RatingHard:
		return p.Hard, true
	case domain.RatingGood:
		return p.Good, true
	case domain.RatingEasy:
		return p.Easy, true
	default:
		return Outcome{}, false
	}
}

// All returns the outcomes ordered again, hard, good, easy.
func (p Preview) All() [4]Outcome {
	return [4]Outcome{p.Again, p.Hard, p.Good, p.Easy}
}

// Engine defines the FSRS memory-model operations. Implementations are pure:
// they never mutate their inputs and the same inputs always yield the same result.
type Engine interface {
	// Update applies a rating to a card at the given instant.
	Update(card domain.Card, rating domain.Rating, now time.Time, cfg Config) (Outcome, error)

	// Preview computes the outcome of every rating from the same card snapshot.
	Preview(card domain.Card, now time.Time, cfg Config) (Preview, error)

	// Retrievability returns the card's recall probability at the given instant.
	Retrievability(card domain.Card, at time.Time) float64
}

// defaultEngine is the FSRS-4.5 implementation of Engine. It holds no state.
type defaultEngine struct{}

// NewEngine creates an FSRS-4.5 engine.
func NewEngine() Engine {
	return defaultEngine{}
}

// Update implements Engine.
func (e defaultEngine) Update(
	card domain.Card,
	rating domain.Rating,
	now time.Time,
	cfg Config,
) (Outcome, error) {
	if !cfg.valid() {
		return Outcome{}, ErrInvalidConfig
	}

	if !rating.IsValid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidRating, rating)
	}

	return e.next(card, rating, now, cfg), nil
}

// Preview implements Engine.
func (e defaultEngine) Preview(card domain.Card, now time.Time, cfg Config) (Preview, error) {
	if !cfg.valid() {
		return Preview{}, ErrInvalidConfig
	}

	// card is a value: every branch below starts from the same snapshot.
	return Preview{
		Again: e.next(card, domain.RatingAgain, now, cfg),
		Hard:  e.next(card, domain.RatingHard, now, cfg),
		Good:  e.next(card, domain.RatingGood, now, cfg),
		Easy:  e.next(card, domain.RatingEasy, now, cfg),
	}, nil
}

// Retrievability implements Engine.
func (e defaultEngine) Retrievability(card domain.Card, at time.Time) float64 {
	if !card.HasBeenReviewed() || !(card.Stability > 0) || !isFinite(card.Stability) {
		return defaultRetrievability
	}
	return ForgettingCurve(elapsedDays(card.LastReviewedAt, at), card.Stability)
}

// next computes the post-review card. rating must be valid.
func (e defaultEngine) next(card domain.Card, rating domain.Rating, now time.Time, cfg Config) Outcome {
	w := cfg.profile.weights
	grade := rating.Grade()
	out := card

	result := Outcome{
		Rating:         rating,
		Retrievability: e.Retrievability(card, now),
	}

	lapsed := false
	if needsInitialization(card) {
		out.Stability = initialStability(w, grade)
		out.Difficulty = initialDifficulty(w, grade)
		out.Repetitions = 1
		out.Lapses = 0
		if rating == domain.RatingAgain {
			out.Lapses = 1
		}
	} else {
		result.ElapsedDays = elapsedDays(card.LastReviewedAt, now)
		r := ForgettingCurve(result.ElapsedDays, card.Stability)
		d := nextDifficulty(w, card.Difficulty, grade)

		var (
			s  float64
			ok bool
		)
		if rating == domain.RatingAgain {
			s, ok = forgetStability(w, card.Stability, d, r)
			lapsed = true
		} else {
			s, ok = recallStability(w, card.Stability, d, r, grade)
		}
		if !ok {
			s = stabilityFallback(card.Stability)
		}

		out.Stability = s
		out.Difficulty = d
		out.Repetitions = card.Repetitions + 1
		if lapsed {
			out.Lapses = card.Lapses + 1
		}
	}

	interval := cfg.IntervalMinutes(out.Stability)
	// A lapse restarts the card at the profile floor whatever its stability, for every profile.
	if lapsed {
		interval = cfg.profile.minMinutes
	}

	out.State = domain.CardStateReview
	out.IntervalMinutes = interval
	out.DueAt = now.Add(minutesToDuration(interval))
	out.LastReviewedAt = now
	out.UpdatedAt = now

	result.Card = out
	return result
}

// needsInitialization reports whether the card lacks a usable memory state.
func needsInitialization(card domain.Card) bool {
	return card.State == domain.CardStateNew ||
		!(card.Stability > 0) || !isFinite(card.Stability) ||
		!(card.Difficulty > 0) || !isFinite(card.Difficulty)
}

// elapsedDays is the fractional number of days between the last review and now,
// never negative. A card that was never reviewed has elapsed 0.
func elapsedDays(lastReviewedAt, now time.Time) float64 {
	if lastReviewedAt.IsZero() {
		return 0
	}
	d := now.Sub(lastReviewedAt)
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(24*time.Hour)
}

func minutesToDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}
