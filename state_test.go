package main

import (
	"math"
	"math/cmplx"
	"testing"
)

const ampEps = 1e-10

func ampClose(a, b complex128) bool {
	return cmplx.Abs(a-b) < ampEps
}

func TestNewStateVector(t *testing.T) {
	s := newStateVector(3)
	if len(s.Amplitudes) != 8 {
		t.Fatalf("len = %d, want 8", len(s.Amplitudes))
	}
	if !ampClose(s.Amplitudes[0], 1) {
		t.Errorf("amp[0] = %v, want 1", s.Amplitudes[0])
	}
	for i := 1; i < 8; i++ {
		if !ampClose(s.Amplitudes[i], 0) {
			t.Errorf("amp[%d] = %v, want 0", i, s.Amplitudes[i])
		}
	}
}

func TestApplySingleHadamard(t *testing.T) {
	s := newStateVector(1)
	s.applySingle(0, matH)

	want := complex(1/math.Sqrt2, 0)
	if !ampClose(s.Amplitudes[0], want) || !ampClose(s.Amplitudes[1], want) {
		t.Errorf("H|0⟩ = %v, want equal superposition", s.Amplitudes)
	}

	// H is self-inverse.
	s.applySingle(0, matH)
	if !ampClose(s.Amplitudes[0], 1) || !ampClose(s.Amplitudes[1], 0) {
		t.Errorf("HH|0⟩ = %v, want |0⟩", s.Amplitudes)
	}
}

func TestApplySingleOnWiderRegister(t *testing.T) {
	// X on qubit 1 of a 3-qubit register: |000⟩ → |010⟩, index 2.
	s := newStateVector(3)
	s.applySingle(1, matX)
	if !ampClose(s.Amplitudes[2], 1) {
		t.Errorf("amp[2] = %v, want 1", s.Amplitudes[2])
	}
	if math.Abs(s.norm()-1) > ampEps {
		t.Errorf("norm = %v, want 1", s.norm())
	}
}

func TestApplyControlled(t *testing.T) {
	// Control clear: CX must be a no-op.
	s := newStateVector(2)
	s.applyControlled(0, 1, matX)
	if !ampClose(s.Amplitudes[0], 1) {
		t.Errorf("CX on |00⟩ changed state: %v", s.Amplitudes)
	}

	// Control set: |10⟩ (qubit 0 = 1, index 1) → |11⟩ (index 3).
	s = newStateVector(2)
	s.applySingle(0, matX)
	s.applyControlled(0, 1, matX)
	if !ampClose(s.Amplitudes[3], 1) {
		t.Errorf("CX on q0=1: amp = %v, want amp[3] = 1", s.Amplitudes)
	}
}

func TestApplyMultiControlled(t *testing.T) {
	tests := []struct {
		name    string
		prep    []int // qubits to flip to |1⟩ first
		wantIdx int
	}{
		{"no controls set", nil, 0},
		{"one control set", []int{0}, 1},
		{"both controls set", []int{0, 1}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStateVector(3)
			for _, q := range tt.prep {
				s.applySingle(q, matX)
			}
			s.applyMultiControlled([]int{0, 1}, 2, matX)
			if !ampClose(s.Amplitudes[tt.wantIdx], 1) {
				t.Errorf("amp = %v, want amp[%d] = 1", s.Amplitudes, tt.wantIdx)
			}
		})
	}
}

func TestApplySwap(t *testing.T) {
	// |10⟩ (index 1) swaps to |01⟩ (index 2).
	s := newStateVector(2)
	s.applySingle(0, matX)
	s.applySwap(0, 1)
	if !ampClose(s.Amplitudes[2], 1) {
		t.Errorf("SWAP: amp = %v, want amp[2] = 1", s.Amplitudes)
	}

	// Swap preserves superposition amplitudes exactly.
	s = newStateVector(2)
	s.applySingle(0, matH)
	before := s.Clone()
	s.applySwap(0, 1)
	if !ampClose(s.Amplitudes[2], before.Amplitudes[1]) {
		t.Errorf("swap moved amp[1] to %v, want %v", s.Amplitudes[2], before.Amplitudes[1])
	}

	// Self-inverse.
	s.applySwap(0, 1)
	for i := range s.Amplitudes {
		if !ampClose(s.Amplitudes[i], before.Amplitudes[i]) {
			t.Errorf("double swap changed amp[%d]: %v != %v", i, s.Amplitudes[i], before.Amplitudes[i])
		}
	}
}

func TestReset(t *testing.T) {
	// Reset of a definite |1⟩ lands exactly in |0⟩.
	s := newStateVector(1)
	s.applySingle(0, matX)
	s.reset(0)
	if !ampClose(s.Amplitudes[0], 1) || !ampClose(s.Amplitudes[1], 0) {
		t.Errorf("reset |1⟩ = %v, want |0⟩", s.Amplitudes)
	}

	// Reset of a superposition keeps the |0⟩ branch, renormalized.
	s = newStateVector(2)
	s.applySingle(0, matH)
	s.applyControlled(0, 1, matX) // Bell pair
	s.reset(0)
	if math.Abs(s.norm()-1) > ampEps {
		t.Errorf("norm after reset = %v, want 1", s.norm())
	}
	if !ampClose(s.Amplitudes[0], 1) {
		t.Errorf("reset Bell q0 = %v, want |00⟩", s.Amplitudes)
	}
}

func TestQubitProbabilities(t *testing.T) {
	s := newStateVector(2)
	s.applySingle(0, matH)

	probs := s.QubitProbabilities()
	if math.Abs(probs[0].Prob1-0.5) > ampEps {
		t.Errorf("q0 Prob1 = %v, want 0.5", probs[0].Prob1)
	}
	if math.Abs(probs[1].Prob0-1) > ampEps {
		t.Errorf("q1 Prob0 = %v, want 1", probs[1].Prob0)
	}
}

func TestPhaseOf(t *testing.T) {
	// S|1⟩ = i|1⟩: phase π/2 on the |1⟩ amplitude.
	s := newStateVector(1)
	s.applySingle(0, matX)
	s.applySingle(0, matS)
	if math.Abs(s.phaseOf(1)-math.Pi/2) > ampEps {
		t.Errorf("phaseOf(1) = %v, want π/2", s.phaseOf(1))
	}
	if math.Abs(s.phaseOf(0)) > ampEps {
		t.Errorf("phaseOf(0) = %v, want 0", s.phaseOf(0))
	}
}

func TestRawAmplitudes(t *testing.T) {
	s := newStateVector(1)
	s.applySingle(0, matSX)

	raw := s.rawAmplitudes()
	if len(raw.Real) != 2 || len(raw.Imag) != 2 {
		t.Fatalf("raw buffer lengths %d/%d, want 2/2", len(raw.Real), len(raw.Imag))
	}
	for i, amp := range s.Amplitudes {
		if raw.Real[i] != real(amp) || raw.Imag[i] != imag(amp) {
			t.Errorf("raw[%d] = (%v,%v), want (%v,%v)", i, raw.Real[i], raw.Imag[i], real(amp), imag(amp))
		}
	}
}
