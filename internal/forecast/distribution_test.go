package forecast

import (
	"math"
	"testing"

	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRatingDistributionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dist    RatingDistribution
		wantErr bool
	}{
		{"default", DefaultDistribution(), false},
		{"unnormalized weights", RatingDistribution{Again: 1, Hard: 1, Good: 6, Easy: 2}, false},
		{"single rating", RatingDistribution{Good: 1}, false},
		{"all zero", RatingDistribution{}, true},
		{"negative", RatingDistribution{Again: -0.1, Good: 1}, true},
		{"NaN", RatingDistribution{Good: math.NaN()}, true},
		{"infinite", RatingDistribution{Easy: math.Inf(1)}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.dist.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDistribution)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRatingDistributionDraw(t *testing.T) {
	t.Parallel()

	d := DefaultDistribution()

	tests := []struct {
		u    float64
		want domain.Rating
	}{
		{0, domain.RatingAgain},
		{0.0999, domain.RatingAgain},
		{0.10, domain.RatingHard},
		{0.2499, domain.RatingHard},
		{0.25, domain.RatingGood},
		{0.8999, domain.RatingGood},
		{0.90, domain.RatingEasy},
		{0.9999999, domain.RatingEasy},
		{1, domain.RatingEasy},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, d.Draw(tc.u), "u=%v", tc.u)
	}

	onlyHard := RatingDistribution{Hard: 3}
	for _, u := range []float64{0, 0.5, 0.999, 1} {
		assert.Equal(t, domain.RatingHard, onlyHard.Draw(u), "u=%v", u)
	}
}
