package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"ramjet-sim/internal/config"
	"ramjet-sim/internal/sim"
	"ramjet-sim/internal/telemetry"
)

func TestNewWritersPrintOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Greptime.Endpoint = "localhost:4001"
	w, cleanup, err := newWriters(cfg, nil, true, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, cleanup, err := newWriters(config.Default(), nil, false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWritersLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.jsonl")
	w, cleanup, err := newWriters(nil, nil, true, path)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*sim.MultiWriter); !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", w)
	}
	if err := w.Write(telemetry.TrajectoryRow{RunID: "r1", Timestamp: time.Now()}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.WriteEvent(telemetry.EventRow{RunID: "r1", Kind: telemetry.EventPhaseChange}); err != nil {
		t.Fatalf("write event failed: %v", err)
	}
	if err := w.WriteSummary(telemetry.SummaryRow{RunID: "r1"}); err != nil {
		t.Fatalf("write summary failed: %v", err)
	}
	for _, p := range []string{path, path + ".events", path + ".summary"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if info.Size() == 0 {
			t.Fatalf("expected %s to be non-empty", p)
		}
	}
}

type countingWriter struct {
	rows, batches int
}

func (c *countingWriter) Write(telemetry.TrajectoryRow) error { c.rows++; return nil }
func (c *countingWriter) WriteBatch(r []telemetry.TrajectoryRow) error {
	c.batches++
	c.rows += len(r)
	return nil
}
func (c *countingWriter) WriteEvent(telemetry.EventRow) error     { return nil }
func (c *countingWriter) WriteSummary(telemetry.SummaryRow) error { return nil }

func TestLockedWriterConcurrent(t *testing.T) {
	cw := &countingWriter{}
	lw := &lockedWriter{w: cw}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = lw.WriteBatch(make([]telemetry.TrajectoryRow, 10))
			_ = lw.Write(telemetry.TrajectoryRow{})
		}()
	}
	wg.Wait()
	if cw.rows != 88 || cw.batches != 8 {
		t.Fatalf("rows %d batches %d", cw.rows, cw.batches)
	}
}

func TestSweepSettingsFlagsOverrideConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "sweep"}
	f := cmd.Flags()
	f.StringVar(&sweepParam, "param", "", "")
	f.Float64SliceVar(&sweepValues, "values", nil, "")
	f.Float64Var(&sweepFrom, "from", 0, "")
	f.Float64Var(&sweepTo, "to", 0, "")
	f.IntVar(&sweepCount, "count", 0, "")
	f.IntVar(&sweepWorkers, "workers", 0, "")
	if err := f.Parse([]string{"--from", "3", "--to", "5", "--count", "3"}); err != nil {
		t.Fatal(err)
	}

	sw := sweepSettings(cmd, &config.Sweep{Parameter: "nav_gain", Values: []float64{1, 2}, Workers: 2})
	if sw.Parameter != "nav_gain" || sw.Workers != 2 {
		t.Fatalf("config values lost: %+v", sw)
	}
	if got := sw.Points(); len(got) != 3 || got[0] != 3 || got[2] != 5 {
		t.Fatalf("range flags should replace config values, got %v", got)
	}
}

func TestPresetsCommand(t *testing.T) {
	var buf strings.Builder
	presetsCmd.SetOut(&buf)
	defer presetsCmd.SetOut(nil)
	if err := presetsCmd.RunE(presetsCmd, nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ramjet", "ballistic", "ballistic-fast"} {
		if !strings.Contains(buf.String(), name) {
			t.Fatalf("missing preset %s in %q", name, buf.String())
		}
	}

	buf.Reset()
	if err := presetsCmd.RunE(presetsCmd, []string{"ramjet"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "nav_gain: 4") {
		t.Fatalf("preset YAML missing guidance: %q", buf.String())
	}
	if err := presetsCmd.RunE(presetsCmd, []string{"nope"}); err == nil {
		t.Fatal("expected unknown preset error")
	}
}
