package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	singleGateParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `(?:\s*,\s*` + paramPattern + `)*)\s*\)\s+q\[(\d+)\];?$`)
	twoQubitRegex        = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	twoQubitParamRegex   = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `)\s*\)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	threeQubitRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\],\s*q\[(\d+)\];?$`)
	measureRegex         = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*(\w+)\[(\d+)\];?$`)
	resetRegex           = regexp.MustCompile(`^reset\s+q\[(\d+)\];?$`)
	qregRegex            = regexp.MustCompile(`qreg\s+(\w+)\[(\d+)\]`)
	barrierRegex         = regexp.MustCompile(`^barrier\s+`)
)

// ToQASM generates OPENQASM 2.0 output from the circuit.
func (c *Circuit) ToQASM() string {
	maxQubit := -1
	maxMeasureQubit := -1
	for _, g := range c.Gates {
		maxQubit = max(maxQubit, g.Target, g.Control)
		for _, ctrl := range g.Controls {
			maxQubit = max(maxQubit, ctrl)
		}
		if g.Type == "MEASURE" {
			maxMeasureQubit = max(maxMeasureQubit, g.Target)
		}
	}

	numQubits := max(maxQubit+1, c.NumQubits, 1)
	numCbits := max(maxMeasureQubit+1, 1)

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", numQubits)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", numCbits)

	for step := range c.MaxSteps {
		for _, g := range c.Gates {
			if g.Step != step {
				continue
			}
			writeGateQASM(&sb, g, numQubits)
		}
	}

	return sb.String()
}

// writeGateQASM emits one gate as a QASM statement.
func writeGateQASM(sb *strings.Builder, g Gate, numQubits int) {
	name := strings.ToLower(g.Type)

	switch {
	case g.Type == "BARRIER":
		qubits := make([]string, numQubits)
		for q := range numQubits {
			qubits[q] = fmt.Sprintf("q[%d]", q)
		}
		fmt.Fprintf(sb, "barrier %s;\n", strings.Join(qubits, ", "))

	case g.Type == "RESET":
		fmt.Fprintf(sb, "reset q[%d];\n", g.Target)

	case g.Type == "MEASURE":
		fmt.Fprintf(sb, "measure q[%d] -> c[%d];\n", g.Target, g.Target)

	case len(g.Controls) > 0:
		controls := g.Controls
		if g.Control >= 0 {
			controls = append([]int{g.Control}, g.Controls...)
		}
		// Toffoli is the only multi-controlled form QASM 2.0 names; a
		// control set that degenerated to one qubit is still a plain cx.
		if len(controls) >= 2 {
			fmt.Fprintf(sb, "ccx q[%d], q[%d], q[%d];\n", controls[0], controls[1], g.Target)
		} else {
			fmt.Fprintf(sb, "cx q[%d], q[%d];\n", controls[0], g.Target)
		}

	case g.Control >= 0:
		if len(g.Params) > 0 {
			fmt.Fprintf(sb, "%s(%s) q[%d], q[%d];\n", name, formatParam(g.Params[0]), g.Control, g.Target)
		} else {
			fmt.Fprintf(sb, "%s q[%d], q[%d];\n", name, g.Control, g.Target)
		}

	case len(g.Params) > 0:
		parts := make([]string, len(g.Params))
		for i, p := range g.Params {
			parts[i] = formatParam(p)
		}
		fmt.Fprintf(sb, "%s(%s) q[%d];\n", name, strings.Join(parts, ", "), g.Target)

	case g.IsDagger:
		fmt.Fprintf(sb, "%sdg q[%d];\n", name, g.Target)

	default:
		fmt.Fprintf(sb, "%s q[%d];\n", name, g.Target)
	}
}

// ParseQASM parses QASM text and rebuilds the circuit from it. Each
// recognized statement advances the step counter by one; unrecognized
// lines are skipped.
func (c *Circuit) ParseQASM(qasm string) error {
	c.Gates = nil
	c.MaxSteps = 0
	step := 0

	for _, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") ||
			strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}
		if strings.HasPrefix(line, "qreg") {
			if matches := qregRegex.FindStringSubmatch(line); len(matches) > 2 {
				n, _ := strconv.Atoi(matches[2])
				c.NumQubits = n
			}
			continue
		}
		if strings.HasPrefix(line, "creg") {
			continue
		}
		if barrierRegex.MatchString(line) {
			c.AddBarrier(step)
			step++
			continue
		}

		if matches := measureRegex.FindStringSubmatch(line); matches != nil {
			target, _ := strconv.Atoi(matches[1])
			c.AddGate("MEASURE", target, step)
			step++
			continue
		}

		if matches := resetRegex.FindStringSubmatch(line); matches != nil {
			target, _ := strconv.Atoi(matches[1])
			c.AddReset(target, step)
			step++
			continue
		}

		// Two-qubit gates: cx, cz, swap, ch
		if matches := twoQubitRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			control, _ := strconv.Atoi(matches[2])
			target, _ := strconv.Atoi(matches[3])
			c.AddGate(gateType, target, step, control)
			step++
			continue
		}

		// Two-qubit parameterized gates: crx, cry, crz, cu1, cp
		if matches := twoQubitParamRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			param, _ := parseParamExpr(matches[2])
			control, _ := strconv.Atoi(matches[3])
			target, _ := strconv.Atoi(matches[4])
			c.AddParameterizedGate(gateType, target, step, []float64{param}, control)
			step++
			continue
		}

		// Single-qubit parameterized gates: rx, ry, rz, p, u1, u2, u3
		if matches := singleGateParamRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			target, _ := strconv.Atoi(matches[3])

			var params []float64
			for _, pStr := range strings.Split(matches[2], ",") {
				if p, ok := parseParamExpr(strings.TrimSpace(pStr)); ok {
					params = append(params, p)
				}
			}

			c.AddParameterizedGate(gateType, target, step, params)
			step++
			continue
		}

		// Three-qubit gates: ccx / toffoli
		if matches := threeQubitRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			ctrl1, _ := strconv.Atoi(matches[2])
			ctrl2, _ := strconv.Atoi(matches[3])
			target, _ := strconv.Atoi(matches[4])
			if gateType == "CCX" || gateType == "TOFFOLI" {
				c.AddMultiControlGate("CCX", target, step, []int{ctrl1, ctrl2})
			}
			step++
			continue
		}

		// Single-qubit gates, including dagger forms (sdg, tdg, sxdg)
		if matches := singleGateRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			target, _ := strconv.Atoi(matches[2])

			if base, ok := strings.CutSuffix(gateType, "DG"); ok && base != "" {
				c.AddDaggerGate(base, target, step)
			} else {
				c.AddGate(gateType, target, step)
			}
			step++
			continue
		}
	}

	return nil
}
