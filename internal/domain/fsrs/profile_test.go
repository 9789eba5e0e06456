package fsrs

import (
	"math"
	"testing"

	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	t.Run("standard", func(t *testing.T) {
		p, err := Lookup(domain.ProfileStandard)
		require.NoError(t, err)
		assert.Equal(t, domain.ProfileStandard, p.Name())
		assert.Equal(t, 1440.0, p.MinMinutes())
		assert.Equal(t, 36500.0, p.MaxIntervalDays())
		assert.Equal(t, 36500.0*1440, p.MaxMinutes())
		assert.NotEmpty(t, p.Version())
		assert.Equal(t, standardWeights, p.Weights())
	})

	t.Run("intensive", func(t *testing.T) {
		p, err := Lookup(domain.ProfileIntensive)
		require.NoError(t, err)
		assert.Equal(t, 1.0, p.MinMinutes())
		assert.Equal(t, 365.0, p.MaxIntervalDays())

		w := p.Weights()
		for i, minutes := range []float64{1, 6, 10, 60} {
			assert.InDelta(t, minutes/1440, w[i], 1e-12, "w[%d]", i)
		}
		for i := 4; i < WeightCount; i++ {
			assert.Equal(t, standardWeights[i], w[i], "w[%d] is shared with standard", i)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := Lookup("turbo")
		assert.ErrorIs(t, err, ErrInvalidProfile)
		assert.ErrorIs(t, ValidateProfile(""), ErrInvalidProfile)
	})

	t.Run("versions differ", func(t *testing.T) {
		std, _ := Lookup(domain.ProfileStandard)
		intensive, _ := Lookup(domain.ProfileIntensive)
		assert.NotEqual(t, std.Version(), intensive.Version())
	})
}

func TestWeightsAreImmutable(t *testing.T) {
	t.Parallel()

	w, err := WeightsFor(domain.ProfileStandard)
	require.NoError(t, err)
	w[0] = 999

	again, err := WeightsFor(domain.ProfileStandard)
	require.NoError(t, err)
	assert.Equal(t, 0.4872, again[0])
}

func TestProfileHelpers(t *testing.T) {
	t.Parallel()

	minutes, err := MinMinutes(domain.ProfileIntensive)
	require.NoError(t, err)
	assert.Equal(t, 1.0, minutes)

	days, err := MaxIntervalDays(domain.ProfileStandard)
	require.NoError(t, err)
	assert.Equal(t, 36500.0, days)

	_, err = MinMinutes("nope")
	assert.ErrorIs(t, err, ErrInvalidProfile)
	_, err = MaxIntervalDays("nope")
	assert.ErrorIs(t, err, ErrInvalidProfile)
	_, err = WeightsFor("nope")
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestParseWeights(t *testing.T) {
	t.Parallel()

	valid := standardWeights[:]

	tests := []struct {
		name    string
		values  []float64
		wantErr bool
	}{
		{"seventeen finite values", valid, false},
		{"too few", valid[:16], true},
		{"too many", append(append([]float64{}, valid...), 1), true},
		{"empty", nil, true},
		{"NaN entry", withValue(valid, 3, math.NaN()), true},
		{"infinite entry", withValue(valid, 9, math.Inf(1)), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, err := ParseWeights(tc.values)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWeights)
				assert.Equal(t, Weights{}, w)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, standardWeights, w)
		})
	}
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(domain.ProfileIntensive, 0.85)
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileIntensive, cfg.Profile().Name())
	assert.Equal(t, 0.85, cfg.RequestRetention())

	for _, r := range []float64{0.5, 0.995, 0, 1, -0.9, math.NaN(), math.Inf(1)} {
		_, err := NewConfig(domain.ProfileStandard, r)
		assert.ErrorIs(t, err, ErrInvalidRetention, "retention %v", r)
	}

	_, err = NewConfig("custom", 0.9)
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = ConfigForDeck(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	deck := &domain.DeckSchedulingConfig{Profile: domain.ProfileStandard, RequestRetention: 0.93}
	cfg, err = ConfigForDeck(deck)
	require.NoError(t, err)
	assert.Equal(t, 0.93, cfg.RequestRetention())

	assert.Equal(t, domain.ProfileStandard, DefaultConfig().Profile().Name())
}

func withValue(values []float64, i int, v float64) []float64 {
	out := append([]float64{}, values...)
	out[i] = v
	return out
}
