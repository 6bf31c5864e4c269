package main

import (
	"errors"
	"testing"
)

func TestCanPlaceAt(t *testing.T) {
	c := &Circuit{NumQubits: 3}
	c.AddGate("CX", 2, 0, 0) // occupies q0 and q2 at step 0

	tests := []struct {
		name   string
		step   int
		qubits []int
		want   bool
	}{
		{"free qubit same step", 0, []int{1}, true},
		{"occupied target", 0, []int{2}, false},
		{"occupied control", 0, []int{0}, false},
		{"spanning occupied", 0, []int{1, 2}, false},
		{"different step", 1, []int{0, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.CanPlaceAt(tt.step, tt.qubits); got != tt.want {
				t.Errorf("CanPlaceAt(%d, %v) = %v, want %v", tt.step, tt.qubits, got, tt.want)
			}
		})
	}
}

func TestRemoveGateAt(t *testing.T) {
	c := &Circuit{NumQubits: 2}
	c.AddGate("H", 0, 0)
	c.AddGate("CX", 1, 1, 0)

	// Removing via the control qubit removes the whole gate.
	c.RemoveGateAt(1, 0)
	if len(c.Gates) != 1 || c.Gates[0].Type != "H" {
		t.Errorf("gates = %+v, want only H", c.Gates)
	}

	c.RemoveGateAt(0, 1) // nothing there
	if len(c.Gates) != 1 {
		t.Errorf("removed a gate from an empty cell")
	}
}

func TestRemoveGatesOnQubit(t *testing.T) {
	c := &Circuit{NumQubits: 3}
	c.AddGate("H", 0, 0)
	c.AddGate("X", 2, 0)
	c.AddMultiControlGate("CCX", 0, 1, []int{1, 2})

	c.RemoveGatesOnQubit(2)
	if len(c.Gates) != 1 || c.Gates[0].Type != "H" {
		t.Errorf("gates = %+v, want only H on q0", c.Gates)
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := &Circuit{NumQubits: 2}
	c.AddParameterizedGate("RX", 0, 0, []float64{1.5})

	clone := c.Clone()
	clone.Gates[0].Params[0] = 9.9
	if c.Gates[0].Params[0] != 1.5 {
		t.Error("clone shares Params backing array with original")
	}
}

func TestValidateDuplicateControls(t *testing.T) {
	c := &Circuit{NumQubits: 3}
	c.AddMultiControlGate("CCX", 2, 0, []int{0, 0})
	if err := c.Validate(); !errors.Is(err, ErrDuplicateQubit) {
		t.Errorf("err = %v, want ErrDuplicateQubit", err)
	}
}

func TestValidateControlOnPlainGate(t *testing.T) {
	// "x q[0], q[1];" parses as an X carrying a control, which has no
	// defined dispatch; it must fail validation, not mid-trial.
	var c Circuit
	if err := c.ParseQASM("qreg q[2];\nx q[0], q[1];\n"); err != nil {
		t.Fatal(err)
	}
	if len(c.Gates) != 1 || c.Gates[0].Type != "X" || c.Gates[0].Control != 0 {
		t.Fatalf("gates = %+v, want X with control 0", c.Gates)
	}
	if err := c.Validate(); !errors.Is(err, ErrUnexpectedControl) {
		t.Errorf("err = %v, want ErrUnexpectedControl", err)
	}

	// Same for a plain gate given a control set.
	c = Circuit{NumQubits: 3}
	c.AddMultiControlGate("H", 2, 0, []int{0, 1})
	if err := c.Validate(); !errors.Is(err, ErrUnexpectedControl) {
		t.Errorf("err = %v, want ErrUnexpectedControl", err)
	}
}

func TestValidateBarrier(t *testing.T) {
	c := &Circuit{NumQubits: 2}
	c.AddBarrier(0)
	if err := c.Validate(); err != nil {
		t.Errorf("barrier-only circuit invalid: %v", err)
	}
}

func TestGetCellInfo(t *testing.T) {
	c := &Circuit{NumQubits: 3}
	c.AddGate("CX", 2, 0, 0)

	info := c.getCellInfo(0, 0)
	if !info.isControl {
		t.Error("q0 should be a control cell")
	}
	info = c.getCellInfo(0, 2)
	if !info.isTarget {
		t.Error("q2 should be a target cell")
	}
	info = c.getCellInfo(0, 1)
	if !info.passThrough {
		t.Error("q1 should be a pass-through cell")
	}
	if !info.vertAbove || !info.vertBelow {
		t.Error("q1 should carry the vertical wire")
	}
}
