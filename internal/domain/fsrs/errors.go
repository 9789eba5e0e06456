package fsrs

import "errors"

// Construction-time errors. Per-review numeric anomalies never produce errors;
// they are recovered with documented fallbacks.
var (
	// ErrInvalidProfile is returned for profile names outside the built-in set.
	ErrInvalidProfile = errors.New("invalid scheduling profile")

	// ErrInvalidRetention is returned when request retention is outside (0.5, 0.995).
	ErrInvalidRetention = errors.New("request retention must lie in (0.5, 0.995)")

	// ErrInvalidWeights is returned for weight vectors that are not 17 finite values.
	ErrInvalidWeights = errors.New("invalid weight vector")

	// ErrInvalidRating is returned when a rating is not again, hard, good or easy.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidConfig is returned when an engine call receives a zero Config.
	ErrInvalidConfig = errors.New("engine config was not constructed with NewConfig")
)
