package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

func main() {
	runFile := flag.String("run", "", "run a QASM file headless instead of opening the editor")
	shots := flag.Int("shots", defaultShots, "number of shots for headless runs")
	stateOnly := flag.Bool("statevector", false, "print final amplitudes instead of sampling shots")
	flag.Parse()

	if *runFile != "" {
		if err := runHeadless(*runFile, *shots, *stateOnly); err != nil {
			log.Fatal("run failed", "file", *runFile, "err", err)
		}
		return
	}

	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal("editor error", "err", err)
	}
}

// runHeadless executes a QASM file without the TUI and prints the
// histogram (or the final statevector) to stdout. Ctrl-C cancels the
// run between trials.
func runHeadless(path string, shots int, stateOnly bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var c Circuit
	if err := c.ParseQASM(string(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	log.Info("parsed circuit", "file", path, "qubits", c.NumQubits, "gates", len(c.Gates))

	if stateOnly {
		s, err := simulate(&c)
		if err != nil {
			return err
		}
		for i, amp := range s.Amplitudes {
			if probOf(amp) < probEpsilon {
				continue
			}
			fmt.Printf("%s  %+.6f%+.6fi  p=%.6f\n",
				basisLabel(i, s.NumQubits), real(amp), imag(amp), probOf(amp))
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := Execute(ctx, &c, shots)
	if err != nil {
		return err
	}
	log.Info("run complete", "shots", res.Shots, "elapsed", res.Elapsed)

	outcomes := make([]string, 0, len(res.Counts))
	for outcome := range res.Counts {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)
	for _, outcome := range outcomes {
		n := res.Counts[outcome]
		fmt.Printf("%s  %6d  %6.2f%%\n", outcome, n, 100*float64(n)/float64(res.Shots))
	}
	return nil
}
