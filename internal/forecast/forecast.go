// Package forecast projects the future review load of a deck.
//
// The simulator replays each card's schedule day by day, drawing a synthetic
// rating from a caller-supplied random source whenever a card comes due and
// asking the FSRS engine for the next due date. Identical inputs and an
// identically seeded source yield identical output.
package forecast

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/domain/fsrs"
	"github.com/phrazzld/scry-scheduler/internal/platform/logger"
	"github.com/phrazzld/scry-scheduler/internal/platform/metrics"
)

// DateLayout is the format of DayLoad.Date.
const DateLayout = "2006-01-02"

// ErrNilRandomSource is returned when Run is called without a random source.
var ErrNilRandomSource = errors.New("forecast: random source is required")

// RandomSource supplies uniform draws in [0, 1). *rand.Rand from math/rand/v2
// satisfies it.
type RandomSource interface {
	Float64() float64
}

// Card is the snapshot of one card fed to the simulator.
type Card struct {
	State      domain.CardState `json:"state"`
	Stability  float64          `json:"stability"`
	Difficulty float64          `json:"difficulty"`
	// Due is an RFC 3339 timestamp or a YYYY-MM-DD date. Anything else is
	// treated as due immediately.
	Due string `json:"due"`
	// LastReviewed uses the same formats as Due and may be empty.
	LastReviewed string `json:"last_reviewed,omitempty"`
}

// DayLoad is the number of reviews falling on one calendar day.
type DayLoad struct {
	Date     string `json:"date"`
	DueCount int    `json:"due_count"`
}

// Options tunes a simulation. The zero value simulates the Standard profile at
// 90% retention with DefaultDistribution.
type Options struct {
	Config       fsrs.Config
	Distribution RatingDistribution
	Engine       fsrs.Engine
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// simCard is the mutable simulation state of one input card.
type simCard struct {
	card domain.Card
	due  time.Time
}

// Run simulates days calendar days starting at the date of referenceDate and
// returns exactly days entries, one per day, in order. An empty card list or a
// non-positive horizon yields an empty result.
//
// New cards have no schedule and are not counted. Overdue cards and cards
// with a malformed due date are reviewed on the first day. A card reviewed
// again on the same simulated day is carried to the next one.
//
// Cancellation is checked between simulated days; on cancellation the context
// error is returned.
func Run(
	ctx context.Context,
	cards []Card,
	days int,
	referenceDate time.Time,
	rng RandomSource,
	opts Options,
) ([]DayLoad, error) {
	if len(cards) == 0 || days <= 0 {
		return []DayLoad{}, nil
	}
	if rng == nil {
		return nil, ErrNilRandomSource
	}

	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	log := logger.FromContextOrDefault(ctx, opts.Logger)
	start := time.Now()

	loc := referenceDate.Location()
	origin := time.Date(referenceDate.Year(), referenceDate.Month(), referenceDate.Day(), 0, 0, 0, 0, loc)

	sims := make([]simCard, 0, len(cards))
	buckets := make([][]int, days)
	for _, c := range cards {
		sim, ok := newSimCard(c, origin, opts.Config)
		if !ok {
			continue
		}
		day := max(dayIndex(origin, sim.due), 0)
		if day < days {
			buckets[day] = append(buckets[day], len(sims))
		}
		sims = append(sims, sim)
	}

	loads := make([]DayLoad, days)
	reviews := 0
	for day := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dayStart := dayAt(origin, day)
		loads[day] = DayLoad{Date: dayStart.Format(DateLayout), DueCount: len(buckets[day])}

		for _, idx := range buckets[day] {
			sim := &sims[idx]

			reviewAt := dayStart
			if sim.due.After(dayStart) && sim.due.Before(dayAt(origin, day+1)) {
				reviewAt = sim.due
			}

			rating := opts.Distribution.Draw(rng.Float64())
			outcome, err := opts.Engine.Update(sim.card, rating, reviewAt, opts.Config)
			if err != nil {
				return nil, err
			}
			reviews++

			sim.card = outcome.Card
			sim.due = outcome.Card.DueAt

			next := max(dayIndex(origin, sim.due), day+1)
			if next < days {
				buckets[next] = append(buckets[next], idx)
			}
		}
		buckets[day] = nil
	}

	elapsed := time.Since(start)
	opts.Metrics.ObserveForecast(elapsed, reviews)
	log.Debug("forecast complete",
		slog.Int("cards", len(sims)),
		slog.Int("days", days),
		slog.Int("simulated_reviews", reviews),
		slog.Duration("duration", elapsed))

	return loads, nil
}

func (o Options) withDefaults() (Options, error) {
	if o.Config.IsZero() {
		o.Config = fsrs.DefaultConfig()
	}
	if o.Distribution.IsZero() {
		o.Distribution = DefaultDistribution()
	}
	if err := o.Distribution.Validate(); err != nil {
		return Options{}, err
	}
	if o.Engine == nil {
		o.Engine = fsrs.NewEngine()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	o.Logger = o.Logger.With(slog.String("component", "forecast"))
	return o, nil
}

// newSimCard converts an input card. New cards are skipped.
func newSimCard(c Card, origin time.Time, cfg fsrs.Config) (simCard, bool) {
	if c.State == domain.CardStateNew {
		return simCard{}, false
	}

	due, ok := parseTime(c.Due, origin.Location())
	if !ok {
		due = origin
	}

	last, ok := parseTime(c.LastReviewed, origin.Location())
	if !ok {
		// Without a last review, assume the card was scheduled at its current
		// stability.
		last = due.Add(-time.Duration(cfg.IntervalMinutes(c.Stability) * float64(time.Minute)))
	}

	return simCard{
		card: domain.Card{
			State:          domain.CardStateReview,
			Stability:      c.Stability,
			Difficulty:     c.Difficulty,
			DueAt:          due,
			LastReviewedAt: last,
		},
		due: due,
	}, true
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", DateLayout}

func parseTime(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dayIndex is the number of calendar days from origin to t in origin's zone.
func dayIndex(origin, t time.Time) int {
	lt := t.In(origin.Location())
	a := time.Date(origin.Year(), origin.Month(), origin.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

func dayAt(origin time.Time, day int) time.Time {
	return time.Date(origin.Year(), origin.Month(), origin.Day()+day, 0, 0, 0, 0, origin.Location())
}

// FromDomain converts stored cards into simulator input.
func FromDomain(cards []domain.Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = Card{
			State:      c.State,
			Stability:  c.Stability,
			Difficulty: c.Difficulty,
			Due:        c.DueAt.Format(time.RFC3339Nano),
		}
		if c.HasBeenReviewed() {
			out[i].LastReviewed = c.LastReviewedAt.Format(time.RFC3339Nano)
		}
	}
	return out
}
