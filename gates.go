package main

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// matrix is a 2x2 complex unitary acting on a single qubit.
type matrix [2][2]complex128

// ErrUnknownGate is returned when a gate identifier cannot be resolved.
// Unknown gates are a hard validation error; they never fall back to identity.
var ErrUnknownGate = errors.New("unknown gate")

var invSqrt2 = complex(1/math.Sqrt2, 0)

// Fixed single-qubit matrices.
var (
	matI = matrix{{1, 0}, {0, 1}}
	matX = matrix{{0, 1}, {1, 0}}
	matY = matrix{{0, -1i}, {1i, 0}}
	matZ = matrix{{1, 0}, {0, -1}}
	matH = matrix{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}
	matS = matrix{{1, 0}, {0, 1i}}
	matT = matrix{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}

	// √X: squares to Pauli-X.
	matSX = matrix{
		{complex(0.5, 0.5), complex(0.5, -0.5)},
		{complex(0.5, -0.5), complex(0.5, 0.5)},
	}
)

// dagger returns the conjugate transpose of m.
func (m matrix) dagger() matrix {
	return matrix{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

// rxMatrix builds RX(θ) = [[cos(θ/2), -i·sin(θ/2)], [-i·sin(θ/2), cos(θ/2)]].
func rxMatrix(theta float64) matrix {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return matrix{{c, js}, {js, c}}
}

// ryMatrix builds RY(θ) = [[cos(θ/2), -sin(θ/2)], [sin(θ/2), cos(θ/2)]].
func ryMatrix(theta float64) matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return matrix{{c, -s}, {s, c}}
}

// rzMatrix builds RZ(θ) = diag(e^{-iθ/2}, e^{iθ/2}).
func rzMatrix(theta float64) matrix {
	p := cmplx.Exp(complex(0, theta/2))
	return matrix{{cmplx.Conj(p), 0}, {0, p}}
}

// phaseMatrix builds P(φ) = diag(1, e^{iφ}).
func phaseMatrix(phi float64) matrix {
	return matrix{{1, 0}, {0, cmplx.Exp(complex(0, phi))}}
}

// u2Matrix builds U2(φ,λ) = (1/√2)·[[1, -e^{iλ}], [e^{iφ}, e^{i(φ+λ)}]].
func u2Matrix(phi, lambda float64) matrix {
	el := cmplx.Exp(complex(0, lambda))
	ep := cmplx.Exp(complex(0, phi))
	return matrix{
		{invSqrt2, -invSqrt2 * el},
		{invSqrt2 * ep, invSqrt2 * ep * el},
	}
}

// u3Matrix builds the universal single-qubit gate U3(θ,φ,λ).
// θ controls population transfer; φ and λ are the relative phases of
// the two basis outcomes.
func u3Matrix(theta, phi, lambda float64) matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	el := cmplx.Exp(complex(0, lambda))
	ep := cmplx.Exp(complex(0, phi))
	return matrix{
		{c, -el * s},
		{ep * s, ep * el * c},
	}
}

// param returns params[i], or 0 when absent. Rotation gates placed
// without an angle behave as rotations by zero, matching the editor's
// default parameter.
func param(params []float64, i int) float64 {
	if i < len(params) {
		return params[i]
	}
	return 0
}

// gateMatrix resolves a single-qubit gate identifier to its 2x2 matrix.
// Controlled identifiers (CX, CRZ, ...) are resolved by baseGateType
// before reaching here.
func gateMatrix(gateType string, dagger bool, params []float64) (matrix, error) {
	var m matrix
	switch gateType {
	case "I", "ID":
		m = matI
	case "X":
		m = matX
	case "Y":
		m = matY
	case "Z":
		m = matZ
	case "H":
		m = matH
	case "S":
		m = matS
	case "T":
		m = matT
	case "SX":
		m = matSX
	case "RX":
		m = rxMatrix(param(params, 0))
	case "RY":
		m = ryMatrix(param(params, 0))
	case "RZ":
		m = rzMatrix(param(params, 0))
	case "P", "U1":
		m = phaseMatrix(param(params, 0))
	case "U2":
		m = u2Matrix(param(params, 0), param(params, 1))
	case "U3", "U":
		m = u3Matrix(param(params, 0), param(params, 1), param(params, 2))
	default:
		return matrix{}, fmt.Errorf("%w: %q", ErrUnknownGate, gateType)
	}
	if dagger {
		m = m.dagger()
	}
	return m, nil
}

// baseGateType maps a controlled-gate identifier to the single-qubit
// gate applied on its target, or "" if the identifier is not a
// controlled gate.
func baseGateType(gateType string) string {
	switch gateType {
	case "CX", "CNOT", "CCX", "TOFFOLI":
		return "X"
	case "CZ":
		return "Z"
	case "CH":
		return "H"
	case "CRX":
		return "RX"
	case "CRY":
		return "RY"
	case "CRZ":
		return "RZ"
	case "CP", "CU1":
		return "P"
	}
	return ""
}

// isControlledGate reports whether the identifier names a two-qubit
// controlled gate.
func isControlledGate(gateType string) bool {
	return baseGateType(gateType) != "" && gateType != "CCX" && gateType != "TOFFOLI"
}
