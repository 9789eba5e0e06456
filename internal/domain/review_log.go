package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CardSnapshot is the scheduling state of a card at one point in time.
type CardSnapshot struct {
	State           CardState `json:"state"`
	Repetitions     int       `json:"repetitions"`
	Lapses          int       `json:"lapses"`
	Stability       float64   `json:"stability"`
	Difficulty      float64   `json:"difficulty"`
	IntervalMinutes float64   `json:"interval_minutes"`
	DueAt           time.Time `json:"due_at"`
}

// ReviewLogEntry is the immutable audit record of one rating action. Entries are
// appended exactly once and never updated or deleted.
type ReviewLogEntry struct {
	ID     uuid.UUID `json:"id"`
	CardID uuid.UUID `json:"card_id"`
	DeckID uuid.UUID `json:"deck_id"`
	Rating Rating    `json:"rating"`

	Before CardSnapshot `json:"before"`
	After  CardSnapshot `json:"after"`

	ElapsedDays    float64 `json:"elapsed_days"`
	Retrievability float64 `json:"retrievability"`

	RequestRetention float64     `json:"request_retention"`
	Profile          ProfileName `json:"profile"`
	WeightsVersion   string      `json:"weights_version"`

	TimeSpentMs int64     `json:"time_spent_ms"`
	ReviewedAt  time.Time `json:"reviewed_at"`
}

// Review log validation errors
var (
	ErrReviewLogCardIDEmpty  = errors.New("review log card ID cannot be empty")
	ErrReviewLogNegativeTime = errors.New("review log time spent cannot be negative")
)

// Validate checks the entry before it is appended.
func (e *ReviewLogEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrInvalidID
	}
	if e.CardID == uuid.Nil {
		return ErrReviewLogCardIDEmpty
	}
	if e.DeckID == uuid.Nil {
		return ErrDeckIDEmpty
	}
	if !e.Rating.IsValid() {
		return ErrInvalidRating
	}
	if !e.Profile.IsValid() {
		return ErrInvalidProfileName
	}
	if e.TimeSpentMs < 0 {
		return ErrReviewLogNegativeTime
	}
	return nil
}
