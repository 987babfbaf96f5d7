package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ramjet-sim/internal/scenario"
)

const schemaPath = "../../schemas/simulation.cue"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simulation.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	t.Setenv("RUN_LABEL", "")
	path := writeConfig(t, `
aero_table: data/custom.csv
preset: ramjet
scenario:
  target:
    altitude_m: 500
  guidance:
    nav_gain: 3
output:
  sample_stride: 5
`)
	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.AeroTable != "data/custom.csv" || cfg.Output.SampleStride != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	s, err := cfg.Scenario()
	if err != nil {
		t.Fatalf("Scenario: %v", err)
	}
	if s.Target.Altitude != 500 || s.Guidance.NavGain != 3 {
		t.Fatalf("overrides not applied: %+v", s)
	}
	if s.Launch.Speed != 680 {
		t.Fatalf("preset value lost: %v", s.Launch.Speed)
	}
	if cfg.Greptime.Database != "public" {
		t.Fatalf("default database %q", cfg.Greptime.Database)
	}
}

func TestLoadConfig_SchemaRejects(t *testing.T) {
	cases := map[string]string{
		"negative speed": "scenario:\n  launch:\n    speed_mps: -5\n",
		"coarse dt":      "scenario:\n  sim:\n    dt_s: 0.5\n",
		"unknown preset": "preset: mortar\n",
		"bad sweep":      "sweep:\n  parameter: wind\n",
		"huge max time":  "scenario:\n  sim:\n    max_time_s: 100000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body), schemaPath); err == nil {
				t.Fatal("expected schema validation error")
			}
		})
	}
}

func TestLoadConfig_ScenarioValidation(t *testing.T) {
	// passes the schema but leaves no dry mass
	path := writeConfig(t, "scenario:\n  airframe:\n    fuel_kg: 60\n")
	_, err := Load(path, schemaPath)
	if !errors.Is(err, scenario.ErrInvalidScenario) {
		t.Fatalf("expected ErrInvalidScenario, got %v", err)
	}

	// schema-valid dt and max time that together exceed the step limit
	path = writeConfig(t, "scenario:\n  sim:\n    dt_s: 0.000001\n    max_time_s: 100\n")
	if _, err := Load(path, schemaPath); !errors.Is(err, scenario.ErrInvalidScenario) {
		t.Fatalf("expected step limit error, got %v", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "greptime:4001")
	t.Setenv("GREPTIMEDB_TABLE", "trajectories")
	t.Setenv("RUN_LABEL", "night-shot")
	cfg, err := Load(writeConfig(t, "preset: ballistic\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Greptime.Endpoint != "greptime:4001" || cfg.Greptime.TrajectoryTable != "trajectories" {
		t.Fatalf("env not applied: %+v", cfg.Greptime)
	}
	s, err := cfg.Scenario()
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "night-shot" || s.Ramjet.Enabled {
		t.Fatalf("unexpected scenario %s ramjet=%v", s.Name, s.Ramjet.Enabled)
	}
}

func TestSweepPoints(t *testing.T) {
	path := writeConfig(t, `
preset: ballistic
sweep:
  parameter: launch_speed
  from: 600
  to: 1200
  count: 4
  workers: 2
`)
	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatal(err)
	}
	pts := cfg.Sweep.Points()
	want := []float64{600, 800, 1000, 1200}
	if len(pts) != len(want) {
		t.Fatalf("points %v", pts)
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Fatalf("points %v want %v", pts, want)
		}
	}
	explicit := Sweep{Values: []float64{1, 2}, From: 5, To: 6, Count: 3}
	if got := explicit.Points(); len(got) != 2 || got[0] != 1 {
		t.Fatalf("explicit values should win: %v", got)
	}
}

func TestExampleConfigs(t *testing.T) {
	for _, f := range []string{"simulation.yaml", "sweep.yaml"} {
		if _, err := Load(filepath.Join("../../config", f), schemaPath); err != nil {
			t.Errorf("%s: %v", f, err)
		}
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("RUN_LABEL", "")
	cfg := Default()
	s, err := cfg.Scenario()
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != scenario.PresetRamjet {
		t.Fatalf("default preset %s", s.Name)
	}
}
