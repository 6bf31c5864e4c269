package main

import (
	"errors"
	"fmt"
	"slices"
)

// maxSimQubits bounds circuit width: the amplitude buffer is
// 2^NumQubits complex128s, so 15 qubits tops out at half a megabyte
// per trial.
const maxSimQubits = 15

// Validation errors, detected before any trial runs.
var (
	ErrQubitOutOfRange   = errors.New("qubit index out of range")
	ErrDuplicateQubit    = errors.New("duplicate qubit role")
	ErrMissingControl    = errors.New("controlled gate missing control qubit")
	ErrUnexpectedControl = errors.New("gate does not take a control qubit")
	ErrBadQubitCount     = errors.New("qubit count out of range")
)

// Gate represents one operation placed on the circuit.
type Gate struct {
	Type     string
	Target   int
	Control  int   // -1 if not a controlled gate
	Controls []int // control set for multi-controlled gates (CCX)
	Step     int   // position in the circuit timeline
	Params   []float64
	IsDagger bool
}

// Circuit is an editable quantum circuit: the immutable input to a
// simulation run once handed to the executor.
type Circuit struct {
	NumQubits int
	Gates     []Gate
	MaxSteps  int
}

func (c *Circuit) bumpSteps(step int) {
	if step >= c.MaxSteps {
		c.MaxSteps = step + 1
	}
}

// AddGate appends a gate, with an optional single control qubit.
func (c *Circuit) AddGate(gateType string, target, step int, control ...int) {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	c.Gates = append(c.Gates, Gate{
		Type:    gateType,
		Target:  target,
		Control: ctrl,
		Step:    step,
	})
	c.bumpSteps(step)
}

// AddParameterizedGate appends a gate carrying angle parameters.
func (c *Circuit) AddParameterizedGate(gateType string, target, step int, params []float64, control ...int) {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	c.Gates = append(c.Gates, Gate{
		Type:    gateType,
		Target:  target,
		Control: ctrl,
		Step:    step,
		Params:  params,
	})
	c.bumpSteps(step)
}

// AddMultiControlGate appends a gate with two or more control qubits.
func (c *Circuit) AddMultiControlGate(gateType string, target, step int, controls []int) {
	c.Gates = append(c.Gates, Gate{
		Type:     gateType,
		Target:   target,
		Control:  -1,
		Controls: controls,
		Step:     step,
	})
	c.bumpSteps(step)
}

// AddDaggerGate appends the adjoint form of a gate.
func (c *Circuit) AddDaggerGate(gateType string, target, step int) {
	c.Gates = append(c.Gates, Gate{
		Type:     gateType,
		Target:   target,
		Control:  -1,
		Step:     step,
		IsDagger: true,
	})
	c.bumpSteps(step)
}

// AddReset appends a reset-to-|0⟩ operation.
func (c *Circuit) AddReset(target, step int) {
	c.Gates = append(c.Gates, Gate{
		Type:    "RESET",
		Target:  target,
		Control: -1,
		Step:    step,
	})
	c.bumpSteps(step)
}

// AddBarrier appends a barrier spanning all qubits at the given step.
// Barriers are visual timeline markers; the executor ignores them.
func (c *Circuit) AddBarrier(step int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		return g.Step == step && g.Type == "BARRIER"
	})
	c.Gates = append(c.Gates, Gate{
		Type:    "BARRIER",
		Target:  -1,
		Control: -1,
		Step:    step,
	})
	c.bumpSteps(step)
}

// references reports whether the gate touches the given qubit.
func (g Gate) references(qubit int) bool {
	if g.Target == qubit || g.Control == qubit {
		return true
	}
	return slices.Contains(g.Controls, qubit)
}

// qubits returns every qubit index the gate touches.
func (g Gate) qubits() []int {
	qs := []int{g.Target}
	if g.Control >= 0 {
		qs = append(qs, g.Control)
	}
	qs = append(qs, g.Controls...)
	return qs
}

// CanPlaceAt reports whether the listed qubits are all free at the
// given step. Barriers occupy no qubits.
func (c *Circuit) CanPlaceAt(step int, qubits []int) bool {
	for _, g := range c.Gates {
		if g.Step != step || g.Type == "BARRIER" {
			continue
		}
		for _, q := range qubits {
			if g.references(q) {
				return false
			}
		}
	}
	return true
}

// RemoveGateAt removes any gate at the given step touching the given
// qubit, and any barrier at that step.
func (c *Circuit) RemoveGateAt(step, qubit int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		if g.Step == step && g.Type == "BARRIER" {
			return true
		}
		return g.Step == step && g.references(qubit)
	})
}

// RemoveGatesOnQubit removes all gates touching the given qubit.
func (c *Circuit) RemoveGatesOnQubit(qubit int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		return g.references(qubit)
	})
}

// GetGateAt returns the gate at the given step and qubit, or nil.
func (c *Circuit) GetGateAt(step, qubit int) *Gate {
	for i := range c.Gates {
		g := &c.Gates[i]
		if g.Step == step && g.references(qubit) {
			return g
		}
	}
	return nil
}

// Clone returns a deep copy of the circuit.
func (c *Circuit) Clone() *Circuit {
	gates := make([]Gate, len(c.Gates))
	copy(gates, c.Gates)
	for i := range gates {
		gates[i].Controls = slices.Clone(gates[i].Controls)
		gates[i].Params = slices.Clone(gates[i].Params)
	}
	return &Circuit{NumQubits: c.NumQubits, Gates: gates, MaxSteps: c.MaxSteps}
}

// validateGate checks one gate against the circuit width: indices in
// range, no qubit in two roles, and a resolvable gate identifier.
func validateGate(g Gate, numQubits int) error {
	switch g.Type {
	case "BARRIER":
		return nil
	case "MEASURE", "RESET", "SWAP":
	default:
		base := g.Type
		if bt := baseGateType(g.Type); bt != "" {
			base = bt
		}
		if _, err := gateMatrix(base, g.IsDagger, g.Params); err != nil {
			return err
		}
	}

	// A control on a gate whose identifier is not a controlled form
	// (e.g. "x q[0], q[1];" in QASM) has no defined dispatch; reject it
	// here rather than mid-trial.
	if (g.Control >= 0 || len(g.Controls) > 0) &&
		g.Type != "SWAP" && baseGateType(g.Type) == "" {
		return fmt.Errorf("%w: %s", ErrUnexpectedControl, g.Type)
	}

	if (isControlledGate(g.Type) || g.Type == "SWAP") && g.Control < 0 {
		return fmt.Errorf("%w: %s", ErrMissingControl, g.Type)
	}
	if (g.Type == "CCX" || g.Type == "TOFFOLI") && len(g.Controls) == 0 && g.Control < 0 {
		return fmt.Errorf("%w: %s", ErrMissingControl, g.Type)
	}

	if g.Target < 0 || g.Target >= numQubits {
		return fmt.Errorf("%w: target %d", ErrQubitOutOfRange, g.Target)
	}
	if g.Control >= numQubits {
		return fmt.Errorf("%w: control %d", ErrQubitOutOfRange, g.Control)
	}
	if g.Control >= 0 && g.Control == g.Target {
		return fmt.Errorf("%w: control equals target %d", ErrDuplicateQubit, g.Target)
	}
	seen := map[int]bool{g.Target: true}
	if g.Control >= 0 {
		seen[g.Control] = true
	}
	for _, ctrl := range g.Controls {
		if ctrl < 0 || ctrl >= numQubits {
			return fmt.Errorf("%w: control %d", ErrQubitOutOfRange, ctrl)
		}
		if seen[ctrl] {
			return fmt.Errorf("%w: qubit %d used twice", ErrDuplicateQubit, ctrl)
		}
		seen[ctrl] = true
	}
	return nil
}

// Validate checks the whole circuit before any trial runs. An invalid
// circuit aborts execution outright; there is no partial-failure mode.
func (c *Circuit) Validate() error {
	if c.NumQubits < 1 || c.NumQubits > maxSimQubits {
		return fmt.Errorf("%w: %d qubits (limit %d)", ErrBadQubitCount, c.NumQubits, maxSimQubits)
	}
	for i, g := range c.Gates {
		if err := validateGate(g, c.NumQubits); err != nil {
			return fmt.Errorf("gate %d (%s at step %d): %w", i, g.Type, g.Step, err)
		}
	}
	return nil
}

// ──────────────────────────── Grid cell lookup ────────────────────────────

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	gate        *Gate
	isControl   bool
	isTarget    bool
	vertAbove   bool
	vertBelow   bool
	passThrough bool
	isBarrier   bool
}

// getCellInfo returns rendering information for the cell at (step, qubit).
func (c *Circuit) getCellInfo(step, qubit int) cellInfo {
	var info cellInfo

	gate := c.GetGateAt(step, qubit)
	if gate != nil {
		info.gate = gate
		info.isControl = gate.Control == qubit || slices.Contains(gate.Controls, qubit)
		info.isTarget = gate.Target == qubit && (gate.Control >= 0 || len(gate.Controls) > 0)
	}

	for i := range c.Gates {
		if c.Gates[i].Step == step && c.Gates[i].Type == "BARRIER" {
			info.isBarrier = true
			if info.gate == nil {
				info.gate = &c.Gates[i]
			}
			break
		}
	}

	// Vertical wire segments for multi-qubit gates spanning this qubit.
	for _, g := range c.Gates {
		if g.Step != step || g.Type == "BARRIER" {
			continue
		}
		qs := g.qubits()
		if len(qs) < 2 {
			continue
		}
		minQ, maxQ := slices.Min(qs), slices.Max(qs)
		if qubit >= minQ && qubit <= maxQ {
			if qubit > minQ {
				info.vertAbove = true
			}
			if qubit < maxQ {
				info.vertBelow = true
			}
			if qubit > minQ && qubit < maxQ && info.gate == nil {
				info.passThrough = true
			}
		}
	}

	return info
}
