// Package anticheat classifies how plausible a card completion is, based only
// on how long the user took relative to the card's expected duration.
package anticheat

import "time"

// Tier is the plausibility classification of a completion.
type Tier string

const (
	TierRejected Tier = "rejected" // physically implausible, scores nothing
	TierReduced  Tier = "reduced"  // rushed but possible, partial credit
	TierFull     Tier = "full"     // at or beyond the expected duration
)

// DefaultRejectRatio rejects completions faster than a third of the card's
// expected duration.
const DefaultRejectRatio = 1.0 / 3.0

// Result is the outcome of classifying one completion. Produced once per
// session and immutable afterward.
type Result struct {
	Tier     Tier          `json:"tier"`
	Elapsed  time.Duration `json:"elapsed"`
	Expected time.Duration `json:"expected"`
}

// Validator holds the tier thresholds. It is a pure classifier: no state, no
// randomness, no side effects.
type Validator struct {
	rejectRatio float64
}

// New creates a validator with the given reject ratio. Ratios outside (0,1)
// fall back to the default.
func New(rejectRatio float64) *Validator {
	if rejectRatio <= 0 || rejectRatio >= 1 {
		rejectRatio = DefaultRejectRatio
	}
	return &Validator{rejectRatio: rejectRatio}
}

// Classify grades elapsed against the expected minimum plausible duration:
//
//	elapsed <  expected*rejectRatio -> rejected
//	elapsed <  expected             -> reduced
//	elapsed >= expected             -> full
//
// There is no upper bound: arbitrarily slow completions are still full credit.
func (v *Validator) Classify(elapsed, expected time.Duration) Result {
	res := Result{Elapsed: elapsed, Expected: expected}

	rejectBelow := time.Duration(float64(expected) * v.rejectRatio)
	switch {
	case elapsed < rejectBelow:
		res.Tier = TierRejected
	case elapsed < expected:
		res.Tier = TierReduced
	default:
		res.Tier = TierFull
	}
	return res
}
