package domain

import (
	"fmt"
	"strings"
)

// Rating is the recall quality reported for a review. Callers only ever use the
// symbolic form; the numeric grade is internal to the engine.
type Rating string

// Possible rating values
const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// Ratings lists every valid rating in ascending grade order.
var Ratings = [4]Rating{RatingAgain, RatingHard, RatingGood, RatingEasy}

// ParseRating converts a case-insensitive label into a Rating.
func ParseRating(s string) (Rating, error) {
	r := Rating(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
	return r, nil
}

// IsValid reports whether r is one of the four known ratings.
func (r Rating) IsValid() bool {
	return r.Grade() != 0
}

// Grade maps the rating to its FSRS grade: again=1, hard=2, good=3, easy=4.
// Unknown ratings map to 0.
func (r Rating) Grade() int {
	switch r {
	case RatingAgain:
		return 1
	case RatingHard:
		return 2
	case RatingGood:
		return 3
	case RatingEasy:
		return 4
	default:
		return 0
	}
}

func (r Rating) String() string {
	return string(r)
}
