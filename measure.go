package main

import (
	"math"
	"math/rand"
)

// probEpsilon guards renormalization after measuring a branch whose
// probability has collapsed to ~0 through floating error. Below this
// the denominator is clamped rather than surfaced as an error.
const probEpsilon = 1e-12

// Measure samples the target qubit per the Born rule and collapses the
// state in place: amplitudes inconsistent with the outcome are zeroed
// and the survivors renormalized. The caller supplies the random
// source so every trial owns a private, independently seeded stream.
func (s *StateVector) Measure(target int, rng *rand.Rand) int {
	n := len(s.Amplitudes)
	bit := 1 << target

	prob1 := 0.0
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			prob1 += probOf(s.Amplitudes[i])
		}
	}

	outcome := 0
	probOutcome := 1 - prob1
	if rng.Float64() < prob1 {
		outcome = 1
		probOutcome = prob1
	}

	if probOutcome < probEpsilon {
		probOutcome = probEpsilon
	}
	norm := complex(math.Sqrt(probOutcome), 0)

	for i := 0; i < n; i++ {
		bitSet := i&bit != 0
		if bitSet == (outcome == 1) {
			s.Amplitudes[i] /= norm
		} else {
			s.Amplitudes[i] = 0
		}
	}

	return outcome
}
