package fsrs

import "math"

const (
	// initStabilityFallback replaces a non-finite initial stability.
	initStabilityFallback = 0.01
	// reviewStabilityFloor is the lower bound of the fallback for a failed review update.
	reviewStabilityFloor = 0.1
	// initDifficultyFallback replaces a non-finite initial difficulty.
	initDifficultyFallback = 5.0
	// maxStability keeps stability bounded over long review histories.
	maxStability = 36500.0

	minDifficulty = 1.0
	maxDifficulty = 10.0
)

// ForgettingCurve returns the probability of recall after elapsedDays for a card
// of the given stability:
//
//	R(t, S) = (1 + t / (9 * S))^-1
//
// It is 1 at t = 0 and strictly decreasing in t. Non-positive stability or any
// non-finite input yields 0.
func ForgettingCurve(elapsedDays, stability float64) float64 {
	if !(stability > 0) || !isFinite(stability) || !isFinite(elapsedDays) {
		return 0
	}
	if elapsedDays < 0 {
		elapsedDays = 0
	}

	r := 1 / (1 + elapsedDays/(9*stability))
	if !isFinite(r) {
		return 0
	}
	return r
}

// initialStability is S0(G) = w[G-1].
func initialStability(w Weights, grade int) float64 {
	s := w[grade-1]
	if !isFinite(s) || s <= 0 {
		return initStabilityFallback
	}
	return math.Min(s, maxStability)
}

// initialDifficulty is D0(G) = w4 - w5 * (G - 3), clamped to [1, 10].
func initialDifficulty(w Weights, grade int) float64 {
	d := w[4] - w[5]*float64(grade-3)
	if !isFinite(d) {
		return initDifficultyFallback
	}
	return clamp(d, minDifficulty, maxDifficulty)
}

// nextDifficulty applies mean reversion towards w4:
//
//	D' = w7 * w4 + (1 - w7) * (D - w6 * (G - 3)), clamped to [1, 10]
func nextDifficulty(w Weights, d float64, grade int) float64 {
	next := w[7]*w[4] + (1-w[7])*(d-w[6]*float64(grade-3))
	if isFinite(next) {
		return clamp(next, minDifficulty, maxDifficulty)
	}
	if isFinite(d) {
		return clamp(d, minDifficulty, maxDifficulty)
	}
	return initDifficultyFallback
}

// recallStability is the stability after a successful recall (hard, good, easy):
//
//	S' = S * (1 + e^w8 * (11 - D') * S^-w9 * (e^((1-R)*w10) - 1) * hardPenalty * easyBonus)
//
// Every factor is checked; the second return value is false when any of them is
// not finite.
func recallStability(w Weights, s, d, r float64, grade int) (float64, bool) {
	hardPenalty := 1.0
	if grade == 2 {
		hardPenalty = w[15]
	}
	easyBonus := 1.0
	if grade == 4 {
		easyBonus = w[16]
	}

	factors := [...]float64{
		math.Exp(w[8]),
		11 - d,
		math.Pow(s, -w[9]),
		math.Exp((1-r)*w[10]) - 1,
		hardPenalty,
		easyBonus,
	}

	growth := 1.0
	for _, f := range factors {
		if !isFinite(f) {
			return 0, false
		}
		growth *= f
	}

	next := s * (1 + growth)
	if !isFinite(next) || next <= 0 {
		return 0, false
	}
	return math.Min(next, maxStability), true
}

// forgetStability is the stability after a lapse, never above the prior value:
//
//	S' = min(S, w11 * D'^-w12 * ((S+1)^w13 - 1) * e^((1-R)*w14))
func forgetStability(w Weights, s, d, r float64) (float64, bool) {
	factors := [...]float64{
		w[11],
		math.Pow(d, -w[12]),
		math.Pow(s+1, w[13]) - 1,
		math.Exp((1 - r) * w[14]),
	}

	next := 1.0
	for _, f := range factors {
		if !isFinite(f) {
			return 0, false
		}
		next *= f
	}

	if !isFinite(next) || next <= 0 {
		return 0, false
	}
	return math.Min(next, math.Min(s, maxStability)), true
}

// stabilityFallback is used when a review update produces a non-finite value.
func stabilityFallback(s float64) float64 {
	if !isFinite(s) {
		return reviewStabilityFloor
	}
	return clamp(s, reviewStabilityFloor, maxStability)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
