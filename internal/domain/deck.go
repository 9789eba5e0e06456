package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProfileName identifies one of the built-in weight profiles.
type ProfileName string

// The closed set of scheduling profiles.
const (
	// ProfileStandard schedules at day granularity.
	ProfileStandard ProfileName = "standard"
	// ProfileIntensive schedules at minute granularity.
	ProfileIntensive ProfileName = "intensive"
)

// IsValid reports whether p names a built-in profile.
func (p ProfileName) IsValid() bool {
	return p == ProfileStandard || p == ProfileIntensive
}

// ReviewOrder controls how due review cards are picked.
type ReviewOrder string

// Supported review orders
const (
	ReviewOrderDueDate ReviewOrder = "due_date"
	ReviewOrderRandom  ReviewOrder = "random"
)

// IsValid reports whether o is a supported review order.
func (o ReviewOrder) IsValid() bool {
	return o == ReviewOrderDueDate || o == ReviewOrderRandom
}

// Request retention must lie strictly inside these bounds.
const (
	MinRequestRetention = 0.5
	MaxRequestRetention = 0.995

	// DefaultRequestRetention is used when a deck does not set one.
	DefaultRequestRetention = 0.9
)

// Deck configuration validation errors
var (
	// ErrDeckIDEmpty is returned when the deck ID is nil.
	ErrDeckIDEmpty = errors.New("deck ID cannot be empty")

	// ErrRetentionOutOfRange is returned when request retention is outside (0.5, 0.995).
	ErrRetentionOutOfRange = errors.New("request retention must lie in (0.5, 0.995)")

	// ErrNegativeQuota is returned when a daily quota is negative.
	ErrNegativeQuota = errors.New("daily quota cannot be negative")
)

// DeckSchedulingConfig is the per-deck scheduling policy. Quotas are optional:
// a nil quota means unlimited.
type DeckSchedulingConfig struct {
	DeckID           uuid.UUID   `json:"deck_id"`
	RequestRetention float64     `json:"request_retention"`
	Profile          ProfileName `json:"profile"`
	ReviewOrder      ReviewOrder `json:"review_order"`
	NewCardsPerDay   *int        `json:"new_cards_per_day,omitempty"`
	ReviewsPerDay    *int        `json:"reviews_per_day,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// NewDeckSchedulingConfig returns a validated configuration with default
// retention, the Standard profile and due-date ordering.
func NewDeckSchedulingConfig(deckID uuid.UUID, now time.Time) (*DeckSchedulingConfig, error) {
	cfg := &DeckSchedulingConfig{
		DeckID:           deckID,
		RequestRetention: DefaultRequestRetention,
		Profile:          ProfileStandard,
		ReviewOrder:      ReviewOrderDueDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field of the configuration.
func (c *DeckSchedulingConfig) Validate() error {
	if c.DeckID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if !ValidRequestRetention(c.RequestRetention) {
		return fmt.Errorf("%w: got %v", ErrRetentionOutOfRange, c.RequestRetention)
	}

	if !c.Profile.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidProfileName, c.Profile)
	}

	if !c.ReviewOrder.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidReviewOrder, c.ReviewOrder)
	}

	if (c.NewCardsPerDay != nil && *c.NewCardsPerDay < 0) ||
		(c.ReviewsPerDay != nil && *c.ReviewsPerDay < 0) {
		return ErrNegativeQuota
	}

	return nil
}

// ValidRequestRetention reports whether r lies in the open interval (0.5, 0.995).
func ValidRequestRetention(r float64) bool {
	return r > MinRequestRetention && r < MaxRequestRetention
}

// NewQuotaExhausted reports whether newToday reaches the deck's new-card cap.
func (c *DeckSchedulingConfig) NewQuotaExhausted(newToday int) bool {
	return c.NewCardsPerDay != nil && newToday >= *c.NewCardsPerDay
}

// ReviewQuotaExhausted reports whether reviewsToday reaches the deck's review cap.
func (c *DeckSchedulingConfig) ReviewQuotaExhausted(reviewsToday int) bool {
	return c.ReviewsPerDay != nil && reviewsToday >= *c.ReviewsPerDay
}
