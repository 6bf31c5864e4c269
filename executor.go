package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"slices"
	"sync"
	"time"
)

// ErrCancelled is returned when the context is cancelled between
// trials. Execution never hands back a partial histogram as if it
// were complete.
var ErrCancelled = errors.New("execution cancelled")

// ExecutionResult aggregates all trials of one Execute call.
// Counts values always sum to Shots.
type ExecutionResult struct {
	Counts  map[string]int
	Shots   int
	Elapsed time.Duration
}

// Bitstring convention, used everywhere amplitudes meet classical
// outcome strings: character q of a result string is the measured
// value of qubit q, so qubit 0 is the leftmost character. This matches
// the basis-state encoding where bit q of an amplitude index is the
// value of qubit q.

// bitstring renders per-qubit outcomes as a classical result string.
func bitstring(bits []int) string {
	out := make([]byte, len(bits))
	for q, b := range bits {
		out[q] = '0' + byte(b)
	}
	return string(out)
}

// sortedGates returns the circuit's gates ordered for execution:
// stable-sorted by step, with input order breaking ties among gates
// sharing a step. The tie-break is deterministic so equal-step gates
// on disjoint qubits always replay identically.
func sortedGates(c *Circuit) []Gate {
	gates := slices.Clone(c.Gates)
	slices.SortStableFunc(gates, func(a, b Gate) int {
		return a.Step - b.Step
	})
	return gates
}

// applyUnitary dispatches one non-measurement gate onto the state.
// Validation has already run, so matrix resolution failing here means
// the circuit was mutated after validation.
func applyUnitary(s *StateVector, g Gate) error {
	switch {
	case g.Type == "SWAP":
		s.applySwap(g.Control, g.Target)

	case len(g.Controls) > 0:
		m, err := gateMatrix(baseGateType(g.Type), g.IsDagger, g.Params)
		if err != nil {
			return err
		}
		controls := g.Controls
		if g.Control >= 0 {
			controls = append([]int{g.Control}, controls...)
		}
		s.applyMultiControlled(controls, g.Target, m)

	case g.Control >= 0:
		m, err := gateMatrix(baseGateType(g.Type), g.IsDagger, g.Params)
		if err != nil {
			return err
		}
		s.applyControlled(g.Control, g.Target, m)

	default:
		m, err := gateMatrix(g.Type, g.IsDagger, g.Params)
		if err != nil {
			return err
		}
		s.applySingle(g.Target, m)
	}
	return nil
}

// runTrial executes one shot: a fresh statevector, every gate in step
// order, then a forced measurement of any qubit the circuit left
// unmeasured, so each trial yields one complete classical bitstring.
func runTrial(c *Circuit, gates []Gate, rng *rand.Rand) (string, error) {
	s := newStateVector(c.NumQubits)
	bits := make([]int, c.NumQubits)
	measured := make([]bool, c.NumQubits)

	for _, g := range gates {
		switch g.Type {
		case "BARRIER":
			// timeline marker only
		case "MEASURE":
			bits[g.Target] = s.Measure(g.Target, rng)
			measured[g.Target] = true
		case "RESET":
			// Reset is measure-then-flip; the sampled branch decides
			// whether an X is needed to land in |0⟩.
			if s.Measure(g.Target, rng) == 1 {
				s.applySingle(g.Target, matX)
			}
			measured[g.Target] = false
			bits[g.Target] = 0
		default:
			if err := applyUnitary(s, g); err != nil {
				return "", err
			}
		}
	}

	for q := 0; q < c.NumQubits; q++ {
		if !measured[q] {
			bits[q] = s.Measure(q, rng)
		}
	}

	return bitstring(bits), nil
}

// Execute runs the circuit for the given number of shots and returns
// the aggregated measurement histogram.
//
// Trials are embarrassingly parallel: each owns a private statevector
// and rand source, so shots fan out across one worker per CPU and the
// partial count maps are merged once at the end. Cancellation is
// cooperative — workers check ctx between trials, never mid-trial,
// since a single trial touches at most 2^NumQubits amplitudes.
func Execute(ctx context.Context, c *Circuit, shots int) (*ExecutionResult, error) {
	if shots < 1 {
		return nil, fmt.Errorf("shots must be positive, got %d", shots)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	gates := sortedGates(c)

	workers := runtime.GOMAXPROCS(0)
	if workers > shots {
		workers = shots
	}

	type partial struct {
		counts map[string]int
		done   int
		err    error
	}

	results := make(chan partial, workers)
	baseSeed := time.Now().UnixNano()
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		n := shots / workers
		if w < shots%workers {
			n++
		}
		wg.Add(1)
		go func(n int, seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			counts := make(map[string]int)
			p := partial{counts: counts}
			for i := 0; i < n; i++ {
				if ctx.Err() != nil {
					break
				}
				outcome, err := runTrial(c, gates, rng)
				if err != nil {
					p.err = err
					break
				}
				counts[outcome]++
				p.done++
			}
			results <- p
		}(n, baseSeed+int64(w)*7919)
	}

	wg.Wait()
	close(results)

	merged := make(map[string]int)
	total := 0
	for p := range results {
		if p.err != nil {
			return nil, p.err
		}
		for outcome, n := range p.counts {
			merged[outcome] += n
		}
		total += p.done
	}

	// Cancellation that lands after every trial already finished is not
	// a failure; the histogram is complete.
	if err := ctx.Err(); err != nil && total < shots {
		return nil, fmt.Errorf("%w after %d of %d trials: %v", ErrCancelled, total, shots, err)
	}

	return &ExecutionResult{
		Counts:  merged,
		Shots:   total,
		Elapsed: time.Since(start),
	}, nil
}

// Statevector runs the circuit without any measurement and returns the
// final amplitudes. MEASURE operations are skipped and RESET applies a
// deterministic projection, so this path draws no randomness at all:
// repeated calls on the same circuit are bit-identical.
func Statevector(c *Circuit) (*RawAmplitudes, error) {
	s, err := simulate(c)
	if err != nil {
		return nil, err
	}
	return s.rawAmplitudes(), nil
}

// simulate runs the measurement-free path and returns the live
// StateVector, for the editor's probability and amplitude panes.
func simulate(c *Circuit) (*StateVector, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s := newStateVector(c.NumQubits)
	for _, g := range sortedGates(c) {
		switch g.Type {
		case "BARRIER", "MEASURE":
		case "RESET":
			s.reset(g.Target)
		default:
			if err := applyUnitary(s, g); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}
