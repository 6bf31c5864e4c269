package main

import (
	"math"
	"math/cmplx"
)

// StateVector holds the complex amplitudes of an n-qubit register.
// Index i encodes the computational basis state whose bit q is the
// value of qubit q. One trial owns one StateVector for its lifetime;
// nothing here is safe for concurrent use.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// newStateVector returns the |00…0⟩ state on numQubits qubits.
func newStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// Clone returns a deep copy of the state.
func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// applySingle applies a 2x2 unitary to the target qubit. Each
// amplitude pair (i, i|bit) is visited once via its bit==0
// representative, so the full 2^n×2^n operator is never built.
func (s *StateVector) applySingle(target int, m matrix) {
	n := len(s.Amplitudes)
	bit := 1 << target
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = m[0][0]*a0 + m[0][1]*a1
			s.Amplitudes[j] = m[1][0]*a0 + m[1][1]*a1
		}
	}
}

// applyControlled applies m to the target qubit only where the control
// bit is set. Amplitudes with the control bit clear are untouched.
func (s *StateVector) applyControlled(control, target int, m matrix) {
	n := len(s.Amplitudes)
	cBit := 1 << control
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = m[0][0]*a0 + m[0][1]*a1
			s.Amplitudes[j] = m[1][0]*a0 + m[1][1]*a1
		}
	}
}

// applyMultiControlled applies m to the target qubit only where every
// control bit is set.
func (s *StateVector) applyMultiControlled(controls []int, target int, m matrix) {
	cMask := 0
	for _, c := range controls {
		cMask |= 1 << c
	}
	n := len(s.Amplitudes)
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&cMask == cMask && i&tBit == 0 {
			j := i | tBit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = m[0][0]*a0 + m[0][1]*a1
			s.Amplitudes[j] = m[1][0]*a0 + m[1][1]*a1
		}
	}
}

// applySwap exchanges the amplitudes of every index pair differing only
// in bits a and b. Requiring bit a set and bit b clear visits each pair
// exactly once.
func (s *StateVector) applySwap(a, b int) {
	n := len(s.Amplitudes)
	aBit := 1 << a
	bBit := 1 << b
	for i := 0; i < n; i++ {
		if i&aBit != 0 && i&bBit == 0 {
			j := (i &^ aBit) | bBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// reset forces the target qubit to |0⟩ without sampling: the |0⟩ branch
// is kept and renormalized. When the |0⟩ branch carries no probability
// the |1⟩ branch is mapped onto it instead, which is exact rather than
// a division by a vanishing norm.
func (s *StateVector) reset(target int) {
	n := len(s.Amplitudes)
	bit := 1 << target

	prob0 := 0.0
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			prob0 += probOf(s.Amplitudes[i])
		}
	}

	if prob0 < probEpsilon {
		// Qubit is (numerically) in |1⟩: move that branch down.
		for i := 0; i < n; i++ {
			if i&bit == 0 {
				s.Amplitudes[i] = s.Amplitudes[i|bit]
				s.Amplitudes[i|bit] = 0
			}
		}
		return
	}

	norm := complex(math.Sqrt(prob0), 0)
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			s.Amplitudes[i] /= norm
		} else {
			s.Amplitudes[i] = 0
		}
	}
}

// probOf returns |amp|².
func probOf(amp complex128) float64 {
	return real(amp)*real(amp) + imag(amp)*imag(amp)
}

// norm returns Σ|amp|², which is 1 for any valid state up to floating
// error.
func (s *StateVector) norm() float64 {
	total := 0.0
	for _, amp := range s.Amplitudes {
		total += probOf(amp)
	}
	return total
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the marginal |0⟩/|1⟩ probability of every
// qubit, computed analytically from the amplitudes.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, amp := range s.Amplitudes {
		p := probOf(amp)
		for q := 0; q < s.NumQubits; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// RawAmplitudes is the measurement-free result of a circuit: the final
// statevector split into parallel real and imaginary buffers.
type RawAmplitudes struct {
	Real []float64
	Imag []float64
}

// rawAmplitudes splits the amplitude buffer into parallel float slices.
func (s *StateVector) rawAmplitudes() *RawAmplitudes {
	raw := &RawAmplitudes{
		Real: make([]float64, len(s.Amplitudes)),
		Imag: make([]float64, len(s.Amplitudes)),
	}
	for i, amp := range s.Amplitudes {
		raw.Real[i] = real(amp)
		raw.Imag[i] = imag(amp)
	}
	return raw
}

// phaseOf returns the argument of the amplitude at basis state i.
func (s *StateVector) phaseOf(i int) float64 {
	return cmplx.Phase(s.Amplitudes[i])
}
