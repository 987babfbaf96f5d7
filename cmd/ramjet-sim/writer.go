package main

import (
	"os"
	"sync"

	"golang.org/x/term"

	"ramjet-sim/internal/config"
	"ramjet-sim/internal/scenario"
	"ramjet-sim/internal/sim"
	"ramjet-sim/internal/telemetry"
)

// outputWriter is implemented by every sink the CLI builds.
type outputWriter interface {
	sim.TrajectoryWriter
	sim.EventWriter
	sim.SummaryWriter
}

// newWriters sets up the output sinks based on flags, config and env vars.
// It returns the writer and a cleanup function to close any resources.
func newWriters(cfg *config.SimulationConfig, scn *scenario.Scenario, printOnly bool, logFile string) (outputWriter, func(), error) {
	cleanup := func() {}

	base, err := baseWriter(cfg, scn, printOnly)
	if err != nil {
		return nil, nil, err
	}
	if logFile == "" {
		return base, cleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".events", logFile+".summary")
	if err != nil {
		return nil, nil, err
	}
	mw := sim.NewMultiWriter(
		[]sim.TrajectoryWriter{base, fw},
		[]sim.EventWriter{base, fw},
		[]sim.SummaryWriter{base, fw},
	)
	cleanup = func() { fw.Close() }
	return mw, cleanup, nil
}

// baseWriter picks GreptimeDB when an endpoint is configured, otherwise
// STDOUT: colorized on a terminal, JSON lines when piped.
func baseWriter(cfg *config.SimulationConfig, scn *scenario.Scenario, printOnly bool) (outputWriter, error) {
	if printOnly || cfg == nil || cfg.Greptime.Endpoint == "" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return sim.NewColorStdoutWriter(scn), nil
		}
		return sim.NewJSONStdoutWriter(), nil
	}
	g := cfg.Greptime
	w, err := sim.NewGreptimeDBWriter(g.Endpoint, g.Database, g.TrajectoryTable, g.EventTable, g.SummaryTable)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// lockedWriter serialises writes from concurrent sweep runs.
type lockedWriter struct {
	mu sync.Mutex
	w  outputWriter
}

func (l *lockedWriter) Write(row telemetry.TrajectoryRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(row)
}

// WriteBatch keeps one run's rows together and preserves batching downstream.
func (l *lockedWriter) WriteBatch(rows []telemetry.TrajectoryRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bw, ok := l.w.(interface {
		WriteBatch([]telemetry.TrajectoryRow) error
	}); ok {
		return bw.WriteBatch(rows)
	}
	for _, r := range rows {
		if err := l.w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func (l *lockedWriter) WriteEvent(e telemetry.EventRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.WriteEvent(e)
}

func (l *lockedWriter) WriteSummary(r telemetry.SummaryRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.WriteSummary(r)
}
