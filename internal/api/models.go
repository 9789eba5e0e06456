package api

import (
	"time"

	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/domain/fsrs"
	"github.com/phrazzld/scry-scheduler/internal/forecast"
)

// CardResponse is the scheduling state of a card.
type CardResponse struct {
	ID              string     `json:"id"`
	DeckID          string     `json:"deck_id"`
	State           string     `json:"state"`
	Stability       float64    `json:"stability"`
	Difficulty      float64    `json:"difficulty"`
	IntervalMinutes float64    `json:"interval_minutes"`
	Repetitions     int        `json:"repetitions"`
	Lapses          int        `json:"lapses"`
	DueAt           time.Time  `json:"due_at"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OutcomeResponse is one branch of a preview.
type OutcomeResponse struct {
	Rating          string       `json:"rating"`
	IntervalMinutes float64      `json:"interval_minutes"`
	DueAt           time.Time    `json:"due_at"`
	ElapsedDays     float64      `json:"elapsed_days"`
	Retrievability  float64      `json:"retrievability"`
	Card            CardResponse `json:"card"`
}

// PreviewResponse holds the outcome of each rating.
type PreviewResponse struct {
	CardID string          `json:"card_id"`
	Again  OutcomeResponse `json:"again"`
	Hard   OutcomeResponse `json:"hard"`
	Good   OutcomeResponse `json:"good"`
	Easy   OutcomeResponse `json:"easy"`
}

// ReviewRequest is the body of POST /api/cards/{id}/review.
type ReviewRequest struct {
	Rating      string `json:"rating"        validate:"required,oneof=again hard good easy"`
	TimeSpentMs int64  `json:"time_spent_ms" validate:"gte=0,lte=86400000"`
}

// DueCardsResponse lists due cards in study order.
type DueCardsResponse struct {
	Count int            `json:"count"`
	Cards []CardResponse `json:"cards"`
}

// TimeToNextResponse tells how long until a card comes due.
type TimeToNextResponse struct {
	HasCards  bool       `json:"has_cards"`
	Seconds   float64    `json:"seconds"`
	NextDueAt *time.Time `json:"next_due_at,omitempty"`
}

// ForecastRequest is the body of POST /api/forecast.
type ForecastRequest struct {
	Cards []forecast.Card `json:"cards" validate:"max=100000"`
	// Days defaults to the configured horizon when zero.
	Days          int    `json:"days"           validate:"gte=0"`
	ReferenceDate string `json:"reference_date" validate:"omitempty,datetime=2006-01-02"`
	// Seed makes the result reproducible. A random seed is used when absent.
	Seed             *uint64                      `json:"seed,omitempty"`
	Profile          string                       `json:"profile"           validate:"omitempty,oneof=standard intensive"`
	RequestRetention float64                      `json:"request_retention" validate:"omitempty,gt=0.5,lt=0.995"`
	Distribution     *forecast.RatingDistribution `json:"distribution,omitempty"`
}

// ForecastResponse is the projected review load per day.
type ForecastResponse struct {
	ReferenceDate string             `json:"reference_date"`
	Seed          uint64             `json:"seed"`
	Days          []forecast.DayLoad `json:"days"`
}

func cardToResponse(c domain.Card) CardResponse {
	resp := CardResponse{
		ID:              c.ID.String(),
		DeckID:          c.DeckID.String(),
		State:           string(c.State),
		Stability:       c.Stability,
		Difficulty:      c.Difficulty,
		IntervalMinutes: c.IntervalMinutes,
		Repetitions:     c.Repetitions,
		Lapses:          c.Lapses,
		DueAt:           c.DueAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.HasBeenReviewed() {
		last := c.LastReviewedAt
		resp.LastReviewedAt = &last
	}
	return resp
}

func outcomeToResponse(o fsrs.Outcome) OutcomeResponse {
	return OutcomeResponse{
		Rating:          string(o.Rating),
		IntervalMinutes: o.Card.IntervalMinutes,
		DueAt:           o.Card.DueAt,
		ElapsedDays:     o.ElapsedDays,
		Retrievability:  o.Retrievability,
		Card:            cardToResponse(o.Card),
	}
}

func previewToResponse(cardID string, p fsrs.Preview) PreviewResponse {
	return PreviewResponse{
		CardID: cardID,
		Again:  outcomeToResponse(p.Again),
		Hard:   outcomeToResponse(p.Hard),
		Good:   outcomeToResponse(p.Good),
		Easy:   outcomeToResponse(p.Easy),
	}
}
