package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/domain/fsrs"
	"github.com/phrazzld/scry-scheduler/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 1))
}

// syntheticDeck builds n review cards spread over the next few weeks, with a
// few overdue and a few unparseable entries mixed in.
func syntheticDeck(n int, seed uint64) []Card {
	r := seeded(seed)
	cards := make([]Card, n)
	for i := range cards {
		stability := 0.5 + r.Float64()*60
		due := reference.Add(time.Duration(r.IntN(60*24)-7*24) * time.Hour)
		cards[i] = Card{
			State:        domain.CardStateReview,
			Stability:    stability,
			Difficulty:   1 + r.Float64()*9,
			Due:          due.Format(time.RFC3339),
			LastReviewed: due.Add(-time.Duration(stability*24) * time.Hour).Format(time.RFC3339),
		}
		if i%97 == 0 {
			cards[i].Due = "not-a-date"
		}
	}
	return cards
}

func TestRunEmptyInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	loads, err := Run(ctx, nil, 30, reference, seeded(1), Options{})
	require.NoError(t, err)
	assert.NotNil(t, loads)
	assert.Empty(t, loads)

	out, err := json.Marshal(loads)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	loads, err = Run(ctx, syntheticDeck(10, 1), 0, reference, seeded(1), Options{})
	require.NoError(t, err)
	assert.Empty(t, loads)

	loads, err = Run(ctx, syntheticDeck(10, 1), -5, reference, seeded(1), Options{})
	require.NoError(t, err)
	assert.Empty(t, loads)
}

func TestRunThousandCards(t *testing.T) {
	t.Parallel()

	cards := syntheticDeck(1000, 3)

	start := time.Now()
	loads, err := Run(context.Background(), cards, 90, reference, seeded(9), Options{})
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.Less(t, elapsed, 2*time.Second)
	require.Len(t, loads, 90)

	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	total := 0
	for i, l := range loads {
		assert.Equal(t, day.AddDate(0, 0, i).Format(DateLayout), l.Date)
		assert.GreaterOrEqual(t, l.DueCount, 0)
		total += l.DueCount
	}
	assert.GreaterOrEqual(t, total, 1000, "every card falls due at least once within the horizon")
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	cards := syntheticDeck(300, 11)
	run := func() []byte {
		loads, err := Run(context.Background(), cards, 365, reference, seeded(5), Options{})
		require.NoError(t, err)
		out, err := json.Marshal(loads)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, run(), run())

	other, err := Run(context.Background(), cards, 365, reference, seeded(6), Options{})
	require.NoError(t, err)
	assert.Len(t, other, 365)
}

func TestRunPlacement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("card is counted on its due day", func(t *testing.T) {
		cards := []Card{{
			State:        domain.CardStateReview,
			Stability:    200,
			Difficulty:   5,
			Due:          "2025-01-20",
			LastReviewed: "2024-08-01",
		}}
		loads, err := Run(ctx, cards, 10, reference, seeded(1), Options{Distribution: RatingDistribution{Good: 1}})
		require.NoError(t, err)

		for i, l := range loads {
			want := 0
			if i == 5 {
				want = 1
			}
			assert.Equal(t, want, l.DueCount, "day %d (%s)", i, l.Date)
		}
	})

	t.Run("overdue and malformed cards land on day zero", func(t *testing.T) {
		cards := []Card{
			{State: domain.CardStateReview, Stability: 300, Difficulty: 5, Due: "2024-12-01T08:00:00Z"},
			{State: domain.CardStateReview, Stability: 300, Difficulty: 5, Due: "31/12/2024"},
			{State: domain.CardStateReview, Stability: 300, Difficulty: 5, Due: ""},
		}
		loads, err := Run(ctx, cards, 3, reference, seeded(1), Options{Distribution: RatingDistribution{Easy: 1}})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 0, 0}, counts(loads))
	})

	t.Run("new cards are not forecast", func(t *testing.T) {
		cards := []Card{
			{State: domain.CardStateNew, Due: "2025-01-15"},
			{State: domain.CardStateReview, Stability: 400, Difficulty: 5, Due: "2025-01-16T10:00:00Z"},
		}
		loads, err := Run(ctx, cards, 3, reference, seeded(1), Options{Distribution: RatingDistribution{Good: 1}})
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 0}, counts(loads))
	})

	t.Run("again every time means a review every day", func(t *testing.T) {
		cards := []Card{{State: domain.CardStateReview, Stability: 3, Difficulty: 6, Due: "2025-01-15T10:00:00Z"}}
		loads, err := Run(ctx, cards, 30, reference, seeded(1), Options{Distribution: RatingDistribution{Again: 1}})
		require.NoError(t, err)
		for i, l := range loads {
			assert.Equal(t, 1, l.DueCount, "day %d", i)
		}
	})

	t.Run("intensive relearning is carried to the next day", func(t *testing.T) {
		cfg, err := fsrs.NewConfig(domain.ProfileIntensive, 0.9)
		require.NoError(t, err)

		cards := []Card{{State: domain.CardStateReview, Stability: 2, Difficulty: 6, Due: "2025-01-15T10:00:00Z"}}
		loads, err := Run(ctx, cards, 5, reference, seeded(1), Options{
			Config:       cfg,
			Distribution: RatingDistribution{Again: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 1, 1, 1, 1}, counts(loads))
	})
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	cards := syntheticDeck(5, 2)

	_, err := Run(context.Background(), cards, 10, reference, nil, Options{})
	assert.ErrorIs(t, err, ErrNilRandomSource)

	_, err = Run(context.Background(), cards, 10, reference, seeded(1), Options{
		Distribution: RatingDistribution{Again: -1},
	})
	assert.ErrorIs(t, err, ErrInvalidDistribution)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, cards, 10, reference, seeded(1), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	cards := []Card{{State: domain.CardStateReview, Stability: 3, Difficulty: 6, Due: "2025-01-15T10:00:00Z"}}

	_, err := Run(context.Background(), cards, 7, reference, seeded(1), Options{
		Distribution: RatingDistribution{Again: 1},
		Metrics:      metrics.New(reg),
	})
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "scry_forecast_simulated_reviews_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "scry_forecast_simulated_reviews_total" {
			assert.Equal(t, 7.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
}

func TestFromDomain(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	last := due.Add(-72 * time.Hour)
	cards := FromDomain([]domain.Card{
		{State: domain.CardStateReview, Stability: 3, Difficulty: 4, DueAt: due, LastReviewedAt: last},
		{State: domain.CardStateNew, DueAt: due},
	})

	require.Len(t, cards, 2)
	assert.Equal(t, Card{
		State:        domain.CardStateReview,
		Stability:    3,
		Difficulty:   4,
		Due:          "2025-02-01T08:00:00Z",
		LastReviewed: "2025-01-29T08:00:00Z",
	}, cards[0])
	assert.Empty(t, cards[1].LastReviewed)
}

func BenchmarkRun(b *testing.B) {
	for _, n := range []int{100, 1000, 5000} {
		cards := syntheticDeck(n, 1)
		b.Run(fmt.Sprintf("cards=%d/days=730", n), func(b *testing.B) {
			for b.Loop() {
				if _, err := Run(context.Background(), cards, 730, reference, seeded(2), Options{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func counts(loads []DayLoad) []int {
	out := make([]int, len(loads))
	for i, l := range loads {
		out[i] = l.DueCount
	}
	return out
}
