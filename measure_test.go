package main

import (
	"math"
	"math/rand"
	"testing"
)

func TestMeasureBasisState(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// |0⟩ always measures 0, |1⟩ always measures 1.
	for trial := 0; trial < 50; trial++ {
		s := newStateVector(1)
		if got := s.Measure(0, rng); got != 0 {
			t.Fatalf("measure |0⟩ = %d, want 0", got)
		}

		s = newStateVector(1)
		s.applySingle(0, matX)
		if got := s.Measure(0, rng); got != 1 {
			t.Fatalf("measure |1⟩ = %d, want 1", got)
		}
	}
}

func TestMeasureCollapses(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	s := newStateVector(1)
	s.applySingle(0, matH)
	outcome := s.Measure(0, rng)

	// Post-measurement state is the pure basis state of the outcome.
	if !ampClose(s.Amplitudes[outcome], 1) {
		t.Errorf("amp[%d] = %v after measuring %d, want 1", outcome, s.Amplitudes[outcome], outcome)
	}
	if !ampClose(s.Amplitudes[1-outcome], 0) {
		t.Errorf("amp[%d] = %v, want 0", 1-outcome, s.Amplitudes[1-outcome])
	}
	if math.Abs(s.norm()-1) > ampEps {
		t.Errorf("norm = %v, want 1", s.norm())
	}

	// Re-measuring is deterministic.
	for i := 0; i < 20; i++ {
		if got := s.Measure(0, rng); got != outcome {
			t.Fatalf("re-measure = %d, want %d", got, outcome)
		}
	}
}

func TestMeasureEntangledPair(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	// Measuring one half of a Bell pair pins the other half.
	for trial := 0; trial < 100; trial++ {
		s := newStateVector(2)
		s.applySingle(0, matH)
		s.applyControlled(0, 1, matX)

		first := s.Measure(0, rng)
		second := s.Measure(1, rng)
		if first != second {
			t.Fatalf("Bell pair measured %d,%d, want equal", first, second)
		}
	}
}

func TestMeasureFrequencies(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	ones := 0
	const trials = 20000
	for i := 0; i < trials; i++ {
		s := newStateVector(1)
		s.applySingle(0, matH)
		ones += s.Measure(0, rng)
	}

	frac := float64(ones) / trials
	if math.Abs(frac-0.5) > 0.02 {
		t.Errorf("|1⟩ frequency = %v, want 0.5±0.02", frac)
	}
}

func TestMeasureBiasedState(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	// RY(π/3) gives P(1) = sin²(π/6) = 0.25.
	ones := 0
	const trials = 20000
	for i := 0; i < trials; i++ {
		s := newStateVector(1)
		s.applySingle(0, ryMatrix(math.Pi/3))
		ones += s.Measure(0, rng)
	}

	frac := float64(ones) / trials
	if math.Abs(frac-0.25) > 0.02 {
		t.Errorf("|1⟩ frequency = %v, want 0.25±0.02", frac)
	}
}
