package fsrs

import (
	"fmt"
	"math"

	"github.com/phrazzld/scry-scheduler/internal/domain"
)

// WeightCount is the number of weights in an FSRS-4.5 weight vector.
const WeightCount = 17

const minutesPerDay = 1440.0

// Weights is an immutable FSRS weight vector. Arrays are copied on assignment, so
// a Weights value handed out by the registry cannot be used to alter it.
type Weights [WeightCount]float64

// standardWeights are the FSRS-4.5 default weights, in days.
var standardWeights = Weights{
	0.4872, 1.4003, 3.7145, 13.8206, // w0..w3  initial stability per rating
	5.1618, 1.2298, 0.8975, 0.031, // w4..w7  difficulty
	1.6474, 0.1367, 1.0461, // w8..w10 recall stability
	2.1072, 0.0793, 0.3246, 1.587, // w11..w14 post-lapse stability
	0.2272, 2.8755, // w15 hard penalty, w16 easy bonus
}

// intensiveInitialMinutes are the first-review targets of the Intensive profile
// for again, hard, good and easy.
var intensiveInitialMinutes = [4]float64{1, 6, 10, 60}

// ParseWeights validates a raw weight vector: exactly 17 finite values.
func ParseWeights(values []float64) (Weights, error) {
	var w Weights
	if len(values) != WeightCount {
		return w, fmt.Errorf("%w: expected %d weights, got %d", ErrInvalidWeights, WeightCount, len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Weights{}, fmt.Errorf("%w: w[%d] is not finite", ErrInvalidWeights, i)
		}
		w[i] = v
	}
	return w, nil
}

// WeightProfile is a named bundle of weights and interval bounds. Its fields are
// unexported; the only way to obtain one is through Lookup.
type WeightProfile struct {
	name            domain.ProfileName
	version         string
	weights         Weights
	minMinutes      float64
	maxIntervalDays float64
}

// Name returns the profile name.
func (p WeightProfile) Name() domain.ProfileName { return p.name }

// Version identifies the weight table, recorded in every review log entry.
func (p WeightProfile) Version() string { return p.version }

// Weights returns a copy of the profile's weight vector.
func (p WeightProfile) Weights() Weights { return p.weights }

// MinMinutes is the interval floor in minutes.
func (p WeightProfile) MinMinutes() float64 { return p.minMinutes }

// MaxIntervalDays is the interval ceiling in days.
func (p WeightProfile) MaxIntervalDays() float64 { return p.maxIntervalDays }

// MaxMinutes is the interval ceiling in minutes.
func (p WeightProfile) MaxMinutes() float64 { return p.maxIntervalDays * minutesPerDay }

func (p WeightProfile) valid() bool {
	return p.name.IsValid() && p.minMinutes > 0 && p.maxIntervalDays > 0
}

var registry = map[domain.ProfileName]WeightProfile{
	domain.ProfileStandard:  mustProfile(domain.ProfileStandard, "fsrs-4.5/standard-1", standardWeights[:], minutesPerDay, 36500),
	domain.ProfileIntensive: mustProfile(domain.ProfileIntensive, "fsrs-4.5/intensive-1", intensiveWeights(), 1, 365),
}

// intensiveWeights shares w4..w16 with Standard and replaces the initial
// stabilities with minute targets expressed in days.
func intensiveWeights() []float64 {
	w := standardWeights
	for i, minutes := range intensiveInitialMinutes {
		w[i] = minutes / minutesPerDay
	}
	return w[:]
}

func mustProfile(name domain.ProfileName, version string, weights []float64, minMinutes, maxDays float64) WeightProfile {
	w, err := ParseWeights(weights)
	if err != nil {
		// ALLOW-PANIC: built-in tables are validated at package initialization
		panic(fmt.Sprintf("fsrs: built-in profile %q: %v", name, err))
	}
	return WeightProfile{
		name:            name,
		version:         version,
		weights:         w,
		minMinutes:      minMinutes,
		maxIntervalDays: maxDays,
	}
}

// Lookup returns the built-in profile with the given name.
func Lookup(name domain.ProfileName) (WeightProfile, error) {
	p, ok := registry[name]
	if !ok {
		return WeightProfile{}, fmt.Errorf("%w: %q", ErrInvalidProfile, name)
	}
	return p, nil
}

// ValidateProfile fails with ErrInvalidProfile for unknown names.
func ValidateProfile(name domain.ProfileName) error {
	_, err := Lookup(name)
	return err
}

// WeightsFor returns the weight vector of the named profile.
func WeightsFor(name domain.ProfileName) (Weights, error) {
	p, err := Lookup(name)
	if err != nil {
		return Weights{}, err
	}
	return p.weights, nil
}

// MinMinutes returns the interval floor of the named profile.
func MinMinutes(name domain.ProfileName) (float64, error) {
	p, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	return p.minMinutes, nil
}

// MaxIntervalDays returns the interval ceiling of the named profile.
func MaxIntervalDays(name domain.ProfileName) (float64, error) {
	p, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	return p.maxIntervalDays, nil
}
