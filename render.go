package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var ansiRegex = regexp.MustCompile("\x1b\\[[0-9;]*m")

// visibleLen returns the rune count of s with ANSI sequences stripped.
func visibleLen(s string) int {
	return len([]rune(ansiRegex.ReplaceAllString(s, "")))
}

// padCenter centers s within width columns of plain spaces.
func padCenter(s string, width int) string {
	gap := width - visibleLen(s)
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

// gateBox renders a boxed gate label like ┤ H ├, keeping gateBoxW wide.
func gateBox(label string, style lipgloss.Style) string {
	inner := padCenter(label, gateNameW)
	return style.Render("┤" + inner + "├")
}

// ──────────────────────────── Circuit panel ────────────────────────────

// renderCircuitPanel draws the circuit grid with one wire row plus one
// connector row per qubit.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(" Circuit"))
	if m.running {
		sb.WriteString(activeGateStyle.Render("  ⟳ running"))
	}
	sb.WriteString("\n\n")

	visSteps := max((width-labelW-4)/cellW, 1)
	start := m.viewStartStep
	if m.cursorStep >= start+visSteps {
		start = m.cursorStep - visSteps + 1
	}
	if m.cursorStep < start {
		start = m.cursorStep
	}

	// Step numbers header.
	sb.WriteString(strings.Repeat(" ", labelW))
	for s := start; s < start+visSteps; s++ {
		num := fmt.Sprintf("%d", s)
		if s == m.cursorStep {
			num = cursorBoxStyle.Render(num)
		} else {
			num = dimStyle.Render(num)
		}
		sb.WriteString(padCenter(num, cellW))
	}
	sb.WriteString("\n")

	for q := 0; q < m.circuit.NumQubits; q++ {
		label := qubitLabelStyle.Render(fmt.Sprintf("q%d |0⟩", q))
		sb.WriteString(label)
		sb.WriteString(strings.Repeat(" ", max(labelW-visibleLen(label), 0)))

		for s := start; s < start+visSteps; s++ {
			sb.WriteString(m.renderCell(s, q))
		}
		sb.WriteString("\n")

		// Connector row carrying vertical wires between qubit rows.
		if q < m.circuit.NumQubits-1 {
			sb.WriteString(strings.Repeat(" ", labelW))
			for s := start; s < start+visSteps; s++ {
				info := m.circuit.getCellInfo(s, q)
				if info.vertBelow || info.isBarrier {
					sb.WriteString(padCenter(dimStyle.Render("│"), cellW))
				} else {
					sb.WriteString(strings.Repeat(" ", cellW))
				}
			}
			sb.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		sb.WriteString("\n")
		if strings.HasPrefix(m.statusMsg, "Invalid") || strings.HasPrefix(m.statusMsg, "Cannot") {
			sb.WriteString(errStyle.Render(m.statusMsg))
		} else {
			sb.WriteString(dimStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderCell draws one grid cell: gate box, control dot, target symbol,
// barrier, or bare wire, centered in a cellW column.
func (m Model) renderCell(step, qubit int) string {
	info := m.circuit.getCellInfo(step, qubit)
	atCursor := step == m.cursorStep && qubit == m.cursorQubit
	selecting := m.focus == focusSelectTarget || m.focus == focusSelectControls
	atTarget := selecting && step == m.cursorStep && qubit == m.targetQubit

	wire := dimStyle.Render("─")

	var symbol string
	switch {
	case atTarget:
		symbol = targetSelectStyle.Render("[?]")

	case info.isBarrier && info.gate != nil && info.gate.Type == "BARRIER" && !info.isControl && !info.isTarget:
		symbol = dimStyle.Render("┃")

	case info.gate == nil && info.passThrough:
		symbol = dimStyle.Render("│")

	case info.gate == nil:
		if atCursor && m.focus == focusCircuit {
			symbol = cursorBoxStyle.Render("┤" + strings.Repeat(" ", gateBoxW-2) + "├")
		} else {
			symbol = wire
		}

	case info.isControl:
		symbol = gateStyle.Render("●")

	case info.gate.Type == "SWAP":
		symbol = gateStyle.Render("×")

	case info.isTarget && baseGateType(info.gate.Type) == "X" && len(info.gate.Params) == 0:
		symbol = gateStyle.Render("⊕")

	default:
		label := gateLabel(info.gate)
		style := gateStyle
		if atCursor && m.focus == focusCircuit {
			style = cursorBoxStyle
		}
		symbol = gateBox(label, style)
	}

	if atCursor && m.focus == focusCircuit && info.gate != nil {
		symbol = cursorBoxStyle.Render("[") + symbol + cursorBoxStyle.Render("]")
	}

	pad := cellW - visibleLen(symbol)
	left := pad / 2
	return dimRepeat(left) + symbol + dimRepeat(pad-left)
}

// dimRepeat renders n dim wire characters.
func dimRepeat(n int) string {
	if n <= 0 {
		return ""
	}
	return dimStyle.Render(strings.Repeat("─", n))
}

// gateLabel returns the short display name for a gate.
func gateLabel(g *Gate) string {
	name := g.Type
	if target := baseGateType(g.Type); target != "" && (g.Control >= 0 || len(g.Controls) > 0) {
		name = target
	}
	if g.IsDagger {
		name += "†"
	}
	switch name {
	case "MEASURE":
		return "M"
	case "RESET":
		return "|0⟩"
	case "SX":
		return "√X"
	}
	if isParameterizedGate(g.Type) && len(name) <= 2 {
		return name + "θ"
	}
	return name
}

// ──────────────────────────── Side panel ────────────────────────────

// renderSidePanel stacks the QASM editor above the results pane.
func (m Model) renderSidePanel(width, height int) string {
	var sb strings.Builder

	if m.focus == focusQASM {
		sb.WriteString(titleStyle.Render(" QASM ✎"))
	} else {
		sb.WriteString(titleStyle.Render(" QASM"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.qasmEditor.View())
	sb.WriteString("\n\n")

	switch {
	case m.showState && m.stateView != nil:
		sb.WriteString(m.renderStatePane(width - 6))
	case m.result != nil:
		sb.WriteString(m.renderHistogram(width - 6))
	default:
		sb.WriteString(m.renderProbabilities(width - 6))
	}

	return sidePanelStyle.Width(width).Height(height).Render(sb.String())
}

// renderHistogram draws the shot-count histogram, most frequent first.
func (m Model) renderHistogram(width int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", titleStyle.Render(fmt.Sprintf(" Results (%d shots)", m.result.Shots)))

	outcomes := make([]string, 0, len(m.result.Counts))
	maxCount := 0
	for outcome, n := range m.result.Counts {
		outcomes = append(outcomes, outcome)
		maxCount = max(maxCount, n)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		ci, cj := m.result.Counts[outcomes[i]], m.result.Counts[outcomes[j]]
		if ci != cj {
			return ci > cj
		}
		return outcomes[i] < outcomes[j]
	})

	barW := max(width-len(m.circuit.Gates)-18, 8)
	shown := 0
	for _, outcome := range outcomes {
		if shown >= 12 {
			fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf(" …%d more", len(outcomes)-shown)))
			break
		}
		n := m.result.Counts[outcome]
		frac := float64(n) / float64(m.result.Shots)
		bar := strings.Repeat("█", max(int(float64(barW)*float64(n)/float64(maxCount)), 1))
		fmt.Fprintf(&sb, " %s %s %s\n",
			histLabelStyle.Render(outcome),
			histBarStyle.Render(bar),
			dimStyle.Render(fmt.Sprintf("%d (%.1f%%)", n, frac*100)))
		shown++
	}
	return sb.String()
}

// renderStatePane draws the nonzero amplitudes with magnitude and phase.
func (m Model) renderStatePane(width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(" Statevector"))
	sb.WriteString("\n")

	shown := 0
	for i, amp := range m.stateView.Amplitudes {
		mag := cmplx.Abs(amp)
		if mag < 1e-9 {
			continue
		}
		if shown >= 12 {
			sb.WriteString(dimStyle.Render(" …\n"))
			break
		}
		label := basisLabel(i, m.stateView.NumQubits)
		phase := m.stateView.phaseOf(i)
		fmt.Fprintf(&sb, " %s %s %s\n",
			histLabelStyle.Render(label),
			fmt.Sprintf("%+.4f%+.4fi", real(amp), imag(amp)),
			ampPhaseStyle.Render(fmt.Sprintf("p=%.3f φ=%s", mag*mag, formatParam(phase))))
		shown++
	}
	return sb.String()
}

// basisLabel renders basis index i as a ket string, qubit 0 leftmost.
func basisLabel(i, numQubits int) string {
	bits := make([]byte, numQubits)
	for q := 0; q < numQubits; q++ {
		bits[q] = '0' + byte((i>>q)&1)
	}
	return "|" + string(bits) + "⟩"
}

// renderProbabilities draws per-qubit |1⟩ probabilities for the
// measurement-free state, recomputed live from the circuit.
func (m Model) renderProbabilities(width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(" Probabilities"))
	sb.WriteString("\n")

	s, err := simulate(&m.circuit)
	if err != nil {
		sb.WriteString(errStyle.Render(" " + err.Error()))
		sb.WriteString("\n")
		return sb.String()
	}

	barW := max(width-16, 6)
	for q, p := range s.QubitProbabilities() {
		filled := int(math.Round(p.Prob1 * float64(barW)))
		bar := histBarStyle.Render(strings.Repeat("█", filled)) +
			dimStyle.Render(strings.Repeat("░", barW-filled))
		fmt.Fprintf(&sb, " %s %s %s\n",
			qubitLabelStyle.Render(fmt.Sprintf("q%d", q)),
			bar,
			dimStyle.Render(fmt.Sprintf("%5.1f%%", p.Prob1*100)))
	}
	return sb.String()
}

// ──────────────────────────── Controls panel ────────────────────────────

func (m Model) renderControlsPanel(width, height int) string {
	var keys []string
	switch m.focus {
	case focusQASM:
		keys = []string{"Tab circuit", "Type to edit"}
	case focusSelectTarget:
		keys = []string{"↑↓ pick target", "⏎ place", "Esc cancel"}
	case focusSelectControls:
		keys = []string{"↑↓ pick control", "⏎ next", "Esc cancel"}
	default:
		keys = []string{
			"←↑↓→ move", "a add", "⌫ del", "r run", "s shots", "v state",
			"+/- qubits", "Tab qasm", "^S save", "^R clear", "q quit",
		}
	}

	var sb strings.Builder
	for i, k := range keys {
		parts := strings.SplitN(k, " ", 2)
		sb.WriteString(activeGateStyle.Render(parts[0]))
		if len(parts) > 1 {
			sb.WriteString(dimStyle.Render(" " + parts[1]))
		}
		if i < len(keys)-1 {
			sb.WriteString(dimStyle.Render("  │  "))
		}
	}
	fmt.Fprintf(&sb, "\n%s", dimStyle.Render(fmt.Sprintf(" shots: %d", m.shots)))

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt splices the popup's lines into the base frame at column x,
// row y, preserving ANSI styling on both sides of the splice.
func overlayAt(base, popup string, x, y int) string {
	baseLines := strings.Split(base, "\n")
	popupLines := strings.Split(popup, "\n")

	for i, pl := range popupLines {
		row := y + i
		if row >= len(baseLines) {
			break
		}
		baseLines[row] = spliceLineAt(baseLines[row], pl, x)
	}
	return strings.Join(baseLines, "\n")
}

// spliceLineAt overwrites line content starting at visible column x
// with the overlay text, keeping what lies beyond the overlay's width.
func spliceLineAt(line, overlay string, x int) string {
	overlayW := visibleLen(overlay)
	plain := ansiRegex.ReplaceAllString(line, "")
	runes := []rune(plain)

	var left string
	if x <= len(runes) {
		left = string(runes[:x])
	} else {
		left = plain + strings.Repeat(" ", x-len(runes))
	}

	var right string
	if x+overlayW < len(runes) {
		right = string(runes[x+overlayW:])
	}

	return left + overlay + right
}
