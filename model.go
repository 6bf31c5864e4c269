package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
	focusSelectTarget
	focusSelectControls
	focusInputParam
	focusInputShots
)

const defaultShots = 1024

// runDoneMsg carries the outcome of an async shot run.
type runDoneMsg struct {
	result *ExecutionResult
	err    error
}

// Model represents the TUI application state.
type Model struct {
	circuit       Circuit
	cursorQubit   int
	cursorStep    int
	viewStartStep int
	width         int
	height        int
	qasmEditor    textarea.Model
	focus         focus
	lastQASM      string
	statusMsg     string

	// Menu state
	menuCat  int
	menuItem int

	// Target-selection state (for multi-qubit gates)
	pendingGate   string
	targetQubit   int
	paramInput    string
	controlQubits []int

	// Simulation state
	shots      int
	shotsInput string
	running    bool
	cancelRun  context.CancelFunc
	result     *ExecutionResult
	showState  bool
	stateView  *StateVector
}

func initialModel() Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		circuit: Circuit{NumQubits: 4},
		focus:   focusCircuit,
		shots:   defaultShots,
	}
	m.qasmEditor = ta
	m.syncQASM()
	return m
}

// syncQASM refreshes the QASM editor pane from the circuit.
func (m *Model) syncQASM() {
	qasm := m.circuit.ToQASM()
	m.qasmEditor.SetValue(qasm)
	m.lastQASM = qasm
}

// parseQASMInput rebuilds the circuit when the editor content changed.
func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm != m.lastQASM {
		var c Circuit
		c.ParseQASM(qasm)
		if c.NumQubits < 1 {
			c.NumQubits = m.circuit.NumQubits
		}
		m.circuit = c
		m.lastQASM = qasm
		m.invalidateResults()
	}
}

// invalidateResults drops stale run output after any circuit edit.
func (m *Model) invalidateResults() {
	m.result = nil
	m.stateView = nil
	m.showState = false
}

// placeGate places a gate at the cursor position. targetQ is the
// target qubit for multi-qubit gates (-1 for single-qubit). Returns
// false if the placement conflicts with an existing gate.
func (m *Model) placeGate(gateType string, targetQ int) bool {
	var qubitsNeeded []int
	switch gateType {
	case "CX", "CZ", "SWAP", "CH", "CRX", "CRY", "CRZ", "CU1":
		qubitsNeeded = []int{m.cursorQubit, targetQ}
	case "CCX":
		qubitsNeeded = append([]int{m.cursorQubit, targetQ}, m.controlQubits...)
	case "BARRIER":
		qubitsNeeded = nil
	default:
		qubitsNeeded = []int{m.cursorQubit}
	}

	if len(qubitsNeeded) > 0 && !m.circuit.CanPlaceAt(m.cursorStep, qubitsNeeded) {
		m.statusMsg = "Cannot place: qubit already used by another gate at this step"
		m.clearPending()
		return false
	}

	switch gateType {
	case "CX", "CZ", "SWAP", "CH", "CRX", "CRY", "CRZ", "CU1":
		if params := parseParams(m.paramInput); len(params) > 0 {
			m.circuit.AddParameterizedGate(gateType, targetQ, m.cursorStep, params, m.cursorQubit)
		} else {
			m.circuit.AddGate(gateType, targetQ, m.cursorStep, m.cursorQubit)
		}
	case "CCX":
		controls := append([]int{m.cursorQubit}, m.controlQubits...)
		m.circuit.AddMultiControlGate("CCX", targetQ, m.cursorStep, controls)
	case "MEASURE":
		m.circuit.AddGate("MEASURE", m.cursorQubit, m.cursorStep)
	case "RESET":
		m.circuit.AddReset(m.cursorQubit, m.cursorStep)
	case "BARRIER":
		m.circuit.AddBarrier(m.cursorStep)
	case "RX", "RY", "RZ", "P", "U1":
		params := parseParams(m.paramInput)
		if params == nil {
			params = []float64{0}
		}
		m.circuit.AddParameterizedGate(gateType, m.cursorQubit, m.cursorStep, params[:1])
	case "U2":
		params := parseParams(m.paramInput)
		for len(params) < 2 {
			params = append(params, 0)
		}
		m.circuit.AddParameterizedGate(gateType, m.cursorQubit, m.cursorStep, params[:2])
	case "U3":
		params := parseParams(m.paramInput)
		for len(params) < 3 {
			params = append(params, 0)
		}
		m.circuit.AddParameterizedGate(gateType, m.cursorQubit, m.cursorStep, params[:3])
	case "SDG", "TDG", "SXDG":
		m.circuit.AddDaggerGate(strings.TrimSuffix(gateType, "DG"), m.cursorQubit, m.cursorStep)
	default:
		m.circuit.AddGate(gateType, m.cursorQubit, m.cursorStep)
	}

	m.clearPending()
	m.invalidateResults()
	m.cursorStep++
	m.circuit.MaxSteps = max(m.circuit.MaxSteps, m.cursorStep)
	m.syncQASM()
	return true
}

func (m *Model) clearPending() {
	m.paramInput = ""
	m.controlQubits = nil
	m.pendingGate = ""
}

// startRun launches the shot executor off the UI goroutine.
func (m *Model) startRun() tea.Cmd {
	if m.running {
		m.statusMsg = "Already running"
		return nil
	}
	if err := m.circuit.Validate(); err != nil {
		m.statusMsg = "Invalid circuit: " + err.Error()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRun = cancel
	m.running = true
	m.statusMsg = fmt.Sprintf("Running %d shots…", m.shots)

	circuit := m.circuit.Clone()
	shots := m.shots
	return func() tea.Msg {
		res, err := Execute(ctx, circuit, shots)
		return runDoneMsg{result: res, err: err}
	}
}

// showStatevector computes the measurement-free amplitudes for display.
func (m *Model) showStatevector() {
	s, err := simulate(&m.circuit)
	if err != nil {
		m.statusMsg = "Invalid circuit: " + err.Error()
		return
	}
	m.stateView = s
	m.showState = true
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		editorH := max(msg.Height-18, 4)
		m.qasmEditor.SetHeight(editorH)

	case runDoneMsg:
		m.running = false
		if m.cancelRun != nil {
			m.cancelRun()
			m.cancelRun = nil
		}
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
		} else {
			m.result = msg.result
			m.statusMsg = fmt.Sprintf("Done: %d shots in %s", msg.result.Shots, msg.result.Elapsed.Round(time.Millisecond))
		}

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			if m.cancelRun != nil {
				m.cancelRun()
			}
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				if m.cancelRun != nil {
					m.cancelRun()
				}
				return m, tea.Quit
			case "esc":
				if m.running && m.cancelRun != nil {
					m.cancelRun()
					m.statusMsg = "Cancelling…"
				}
			case "tab":
				m.focus = focusQASM
				m.qasmEditor.Focus()
			case "ctrl+r":
				m.circuit.Gates = nil
				m.circuit.MaxSteps = 0
				m.viewStartStep = 0
				m.invalidateResults()
				m.syncQASM()
			case "ctrl+s":
				qasm := m.circuit.ToQASM()
				if err := os.WriteFile("circuit.qasm", []byte(qasm), 0644); err != nil {
					m.statusMsg = fmt.Sprintf("Save error: %v", err)
				} else {
					m.statusMsg = "Saved circuit.qasm"
				}
			case "r":
				if cmd := m.startRun(); cmd != nil {
					cmds = append(cmds, cmd)
				}
			case "s":
				m.shotsInput = ""
				m.focus = focusInputShots
			case "v":
				if m.showState {
					m.showState = false
				} else {
					m.showStatevector()
				}
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.circuit.NumQubits-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.cursorStep > 0 {
					m.cursorStep--
					if m.cursorStep < m.viewStartStep {
						m.viewStartStep = m.cursorStep
					}
				}
			case "right", "l":
				m.cursorStep++
				m.circuit.MaxSteps = max(m.circuit.MaxSteps, m.cursorStep)
			case "+", "=":
				if m.circuit.NumQubits < maxSimQubits {
					m.circuit.NumQubits++
					m.invalidateResults()
					m.syncQASM()
				}
			case "-":
				if m.circuit.NumQubits > 1 {
					m.circuit.NumQubits--
					m.cursorQubit = min(m.cursorQubit, m.circuit.NumQubits-1)
					m.circuit.RemoveGatesOnQubit(m.circuit.NumQubits)
					m.invalidateResults()
					m.syncQASM()
				}
			case "a":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "backspace", "delete":
				m.circuit.RemoveGateAt(m.cursorStep, m.cursorQubit)
				m.invalidateResults()
				m.syncQASM()
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(gateMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := gateMenu[m.menuCat].items[m.menuItem]
				m.pendingGate = item.gateType

				if item.needsParams {
					m.paramInput = ""
					m.focus = focusInputParam
					break
				}
				if item.gateType == "CCX" {
					if m.circuit.NumQubits < 3 {
						break
					}
					m.controlQubits = nil
					m.focus = focusSelectControls
					m.targetQubit = m.nextFreeQubit()
					break
				}
				if item.needsTarget {
					if m.circuit.NumQubits < 2 {
						break
					}
					m.focus = focusSelectTarget
					m.targetQubit = m.nextFreeQubit()
				} else {
					if m.placeGate(item.gateType, -1) {
						m.focus = focusCircuit
					}
				}
			}

		case focusSelectTarget:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.clearPending()
			case "up", "k":
				m.moveTargetCursor(-1)
			case "down", "j":
				m.moveTargetCursor(+1)
			case "enter":
				if m.placeGate(m.pendingGate, m.targetQubit) {
					m.focus = focusCircuit
				}
			}

		case focusSelectControls:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.clearPending()
			case "up", "k":
				m.moveTargetCursor(-1)
			case "down", "j":
				m.moveTargetCursor(+1)
			case "enter":
				m.controlQubits = append(m.controlQubits, m.targetQubit)
				m.focus = focusSelectTarget
				m.targetQubit = m.nextFreeQubit()
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.clearPending()
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				if m.paramInput != "" && parseParams(m.paramInput) == nil {
					m.statusMsg = "Invalid parameter — use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
					break
				}
				item := gateMenu[m.menuCat].items[m.menuItem]
				if item.needsTarget {
					if m.circuit.NumQubits < 2 {
						break
					}
					m.focus = focusSelectTarget
					m.targetQubit = m.nextFreeQubit()
				} else {
					if m.placeGate(m.pendingGate, -1) {
						m.focus = focusCircuit
					}
				}
			default:
				if len(key) == 1 && strings.ContainsAny(key, "0123456789.,-+eEpi*/") {
					m.paramInput += key
				}
			}

		case focusInputShots:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.shotsInput = ""
			case "backspace":
				if len(m.shotsInput) > 0 {
					m.shotsInput = m.shotsInput[:len(m.shotsInput)-1]
				}
			case "enter":
				if n, err := strconv.Atoi(m.shotsInput); err == nil && n > 0 {
					m.shots = n
					m.statusMsg = fmt.Sprintf("Shots set to %d", n)
				} else if m.shotsInput != "" {
					m.statusMsg = "Shot count must be a positive integer"
				}
				m.shotsInput = ""
				m.focus = focusCircuit
			default:
				if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
					m.shotsInput += key
				}
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// nextFreeQubit picks the first qubit usable as a target: not the
// cursor qubit and not already chosen as a control.
func (m *Model) nextFreeQubit() int {
	for q := 0; q < m.circuit.NumQubits; q++ {
		if q != m.cursorQubit && !slices.Contains(m.controlQubits, q) {
			return q
		}
	}
	return m.cursorQubit
}

// moveTargetCursor steps the target-selection cursor past occupied roles.
func (m *Model) moveTargetCursor(dir int) {
	for next := m.targetQubit + dir; next >= 0 && next < m.circuit.NumQubits; next += dir {
		if next != m.cursorQubit && !slices.Contains(m.controlQubits, next) {
			m.targetQubit = next
			return
		}
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sideWidth := m.width / 3
	circuitWidth := m.width - sideWidth - 4
	controlsHeight := 6
	mainHeight := max(m.height-controlsHeight-2, 6)

	circuitPanel := m.renderCircuitPanel(circuitWidth, mainHeight)
	sidePanel := m.renderSidePanel(sideWidth, mainHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, sidePanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	if m.focus == focusMenu {
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	}
	if m.focus == focusInputParam {
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}
	if m.focus == focusInputShots {
		frame = overlayAt(frame, m.renderShotsInput(), 2, 2)
	}

	return frame
}

// renderParamInput renders the parameter input overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enter Parameter"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Value: %s_", m.paramInput)
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57"))
	return menuBorderStyle.Render(sb.String())
}

// renderShotsInput renders the shot-count prompt overlay.
func (m Model) renderShotsInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Shot Count"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Shots: %s_", m.shotsInput)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s", dimStyle.Render(fmt.Sprintf("Current: %d", m.shots)))
	return menuBorderStyle.Render(sb.String())
}
