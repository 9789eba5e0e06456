package fsrs

import (
	"fmt"
	"math"

	"github.com/phrazzld/scry-scheduler/internal/domain"
)

// Config is the immutable scheduling context of one engine call: the weight
// profile and the request retention. It is validated once, at construction, and
// then passed explicitly to every Update and Preview.
type Config struct {
	profile          WeightProfile
	requestRetention float64
}

// NewConfig validates the profile name and request retention.
func NewConfig(profile domain.ProfileName, requestRetention float64) (Config, error) {
	p, err := Lookup(profile)
	if err != nil {
		return Config{}, err
	}

	if !domain.ValidRequestRetention(requestRetention) {
		return Config{}, fmt.Errorf("%w: got %v", ErrInvalidRetention, requestRetention)
	}

	return Config{profile: p, requestRetention: requestRetention}, nil
}

// ConfigForDeck builds a Config from a deck's scheduling settings.
func ConfigForDeck(deck *domain.DeckSchedulingConfig) (Config, error) {
	if deck == nil {
		return Config{}, ErrInvalidConfig
	}
	return NewConfig(deck.Profile, deck.RequestRetention)
}

// DefaultConfig is the Standard profile at 90% request retention.
func DefaultConfig() Config {
	cfg, err := NewConfig(domain.ProfileStandard, domain.DefaultRequestRetention)
	if err != nil {
		// ALLOW-PANIC: built-in defaults are always valid
		panic(err)
	}
	return cfg
}

// Profile returns the active weight profile.
func (c Config) Profile() WeightProfile { return c.profile }

// RequestRetention returns the target recall probability.
func (c Config) RequestRetention() float64 { return c.requestRetention }

// IsZero reports whether c is the zero Config, which no engine call accepts.
func (c Config) IsZero() bool { return !c.valid() }

func (c Config) valid() bool {
	return c.profile.valid()
}

// IntervalMinutes derives the next interval from a stability:
//
//	k = ln(requestRetention) / ln(0.9)
//	interval = stability * k * 1440, clamped to [minMinutes, maxIntervalDays*1440]
//
// A non-finite result or an invalid retention yields the profile floor.
func (c Config) IntervalMinutes(stability float64) float64 {
	floor := c.profile.minMinutes
	if !domain.ValidRequestRetention(c.requestRetention) {
		return floor
	}

	k := math.Log(c.requestRetention) / math.Log(0.9)
	minutes := stability * k * minutesPerDay
	if !isFinite(minutes) {
		return floor
	}

	return clamp(minutes, floor, c.profile.MaxMinutes())
}
