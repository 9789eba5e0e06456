package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/phrazzld/scry-scheduler/internal/domain"
)

// ErrInvalidDistribution is returned for a rating split with a negative or
// non-finite weight, or with all four weights zero.
var ErrInvalidDistribution = errors.New("invalid rating distribution")

// RatingDistribution is the share of synthetic ratings drawn for each label.
// Weights are relative: they are normalized by their sum before drawing.
type RatingDistribution struct {
	Again float64 `json:"again"`
	Hard  float64 `json:"hard"`
	Good  float64 `json:"good"`
	Easy  float64 `json:"easy"`
}

// DefaultDistribution is the split used when none is configured.
func DefaultDistribution() RatingDistribution {
	return RatingDistribution{Again: 0.10, Hard: 0.15, Good: 0.65, Easy: 0.10}
}

// IsZero reports whether no weight is set.
func (d RatingDistribution) IsZero() bool {
	return d == RatingDistribution{}
}

// Validate checks that every weight is finite and non-negative and that at
// least one is positive.
func (d RatingDistribution) Validate() error {
	sum := 0.0
	for _, w := range d.weights() {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%w: weight %v", ErrInvalidDistribution, w)
		}
		sum += w
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return fmt.Errorf("%w: weights must sum to a positive number", ErrInvalidDistribution)
	}
	return nil
}

// Draw maps a uniform value u in [0, 1) to a rating. Lower values select the
// lower grades: [0, again) is again, the next hard share is hard, and so on.
// d must be valid.
func (d RatingDistribution) Draw(u float64) domain.Rating {
	w := d.weights()
	sum := w[0] + w[1] + w[2] + w[3]

	threshold := u * sum
	acc := 0.0
	for i, share := range w {
		acc += share
		if threshold < acc {
			return domain.Ratings[i]
		}
	}

	// u rounding up to the full sum; pick the highest rating with weight.
	for i := len(w) - 1; i >= 0; i-- {
		if w[i] > 0 {
			return domain.Ratings[i]
		}
	}
	return domain.RatingGood
}

func (d RatingDistribution) weights() [4]float64 {
	return [4]float64{d.Again, d.Hard, d.Good, d.Easy}
}
