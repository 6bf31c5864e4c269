package main

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

const matEps = 1e-10

func matClose(a, b matrix) bool {
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			if cmplx.Abs(a[r][c]-b[r][c]) > matEps {
				return false
			}
		}
	}
	return true
}

func matMul(a, b matrix) matrix {
	var out matrix
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			out[r][c] = a[r][0]*b[0][c] + a[r][1]*b[1][c]
		}
	}
	return out
}

func TestGateMatrixUnitary(t *testing.T) {
	tests := []struct {
		gateType string
		params   []float64
	}{
		{"I", nil},
		{"X", nil},
		{"Y", nil},
		{"Z", nil},
		{"H", nil},
		{"S", nil},
		{"T", nil},
		{"SX", nil},
		{"RX", []float64{math.Pi / 3}},
		{"RY", []float64{1.234}},
		{"RZ", []float64{-math.Pi / 7}},
		{"P", []float64{math.Pi / 5}},
		{"U2", []float64{0.3, -1.1}},
		{"U3", []float64{math.Pi / 2, 0.4, 2.2}},
	}

	for _, tt := range tests {
		t.Run(tt.gateType, func(t *testing.T) {
			m, err := gateMatrix(tt.gateType, false, tt.params)
			if err != nil {
				t.Fatalf("gateMatrix(%s): %v", tt.gateType, err)
			}
			if got := matMul(m, m.dagger()); !matClose(got, matI) {
				t.Errorf("%s: m·m† = %v, want identity", tt.gateType, got)
			}
		})
	}
}

func TestGateMatrixUnknown(t *testing.T) {
	for _, gateType := range []string{"", "Q", "FOO", "XX"} {
		if _, err := gateMatrix(gateType, false, nil); !errors.Is(err, ErrUnknownGate) {
			t.Errorf("gateMatrix(%q) err = %v, want ErrUnknownGate", gateType, err)
		}
	}
}

func TestRotationSpecialValues(t *testing.T) {
	// RX(π) = -iX, RY(π) flips |0⟩ to |1⟩, RZ(2π) = -I.
	rx := rxMatrix(math.Pi)
	if cmplx.Abs(rx[0][1]-complex(0, -1)) > matEps || cmplx.Abs(rx[0][0]) > matEps {
		t.Errorf("RX(pi) = %v, want -iX", rx)
	}

	ry := ryMatrix(math.Pi)
	if cmplx.Abs(ry[1][0]-1) > matEps || cmplx.Abs(ry[0][0]) > matEps {
		t.Errorf("RY(pi) = %v, want [[0,-1],[1,0]]", ry)
	}

	rz := rzMatrix(2 * math.Pi)
	if cmplx.Abs(rz[0][0]+1) > matEps || cmplx.Abs(rz[1][1]+1) > matEps {
		t.Errorf("RZ(2pi) = %v, want -I", rz)
	}

	// RX(0) is the identity: unset params default to zero angles.
	m, err := gateMatrix("RX", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !matClose(m, matI) {
		t.Errorf("RX with no params = %v, want identity", m)
	}
}

func TestDaggerRoundTrip(t *testing.T) {
	for _, gateType := range []string{"S", "T", "SX", "H"} {
		m, err := gateMatrix(gateType, false, nil)
		if err != nil {
			t.Fatal(err)
		}
		mdg, err := gateMatrix(gateType, true, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got := matMul(m, mdg); !matClose(got, matI) {
			t.Errorf("%s·%s† = %v, want identity", gateType, gateType, got)
		}
	}
}

func TestSXSquaresToX(t *testing.T) {
	if got := matMul(matSX, matSX); !matClose(got, matX) {
		t.Errorf("SX² = %v, want X", got)
	}
}

func TestIsParameterizedGate(t *testing.T) {
	tests := []struct {
		gateType string
		want     bool
	}{
		{"RX", true},
		{"RZ", true},
		{"P", true},
		{"U3", true},
		{"CRX", true},
		{"CU1", true},
		{"H", false},
		{"X", false},
		{"SWAP", false},
		{"MEASURE", false},
	}
	for _, tt := range tests {
		if got := isParameterizedGate(tt.gateType); got != tt.want {
			t.Errorf("isParameterizedGate(%s) = %v, want %v", tt.gateType, got, tt.want)
		}
	}
}

func TestBaseGateType(t *testing.T) {
	tests := []struct {
		gateType string
		want     string
	}{
		{"CX", "X"},
		{"CNOT", "X"},
		{"CCX", "X"},
		{"TOFFOLI", "X"},
		{"CZ", "Z"},
		{"CH", "H"},
		{"CRX", "RX"},
		{"CRY", "RY"},
		{"CRZ", "RZ"},
		{"CP", "P"},
		{"CU1", "P"},
		{"X", ""},
		{"SWAP", ""},
		{"MEASURE", ""},
	}
	for _, tt := range tests {
		if got := baseGateType(tt.gateType); got != tt.want {
			t.Errorf("baseGateType(%s) = %q, want %q", tt.gateType, got, tt.want)
		}
	}
}
