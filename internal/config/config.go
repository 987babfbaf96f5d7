// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"ramjet-sim/internal/scenario"
	"ramjet-sim/internal/sim"
)

// Sweep describes a parallel trade study over one scenario parameter.
// Values wins over the From/To/Count range when both are given.
type Sweep struct {
	Parameter string    `yaml:"parameter"`
	Values    []float64 `yaml:"values,omitempty"`
	From      float64   `yaml:"from,omitempty"`
	To        float64   `yaml:"to,omitempty"`
	Count     int       `yaml:"count,omitempty"`
	Workers   int       `yaml:"workers,omitempty"`
}

// Points returns the parameter values to run.
func (s Sweep) Points() []float64 {
	if len(s.Values) > 0 {
		return s.Values
	}
	return sim.Values(s.From, s.To, s.Count)
}

// Output controls where run data goes.
type Output struct {
	LogFile      string `yaml:"log_file,omitempty"`
	SampleStride int    `yaml:"sample_stride,omitempty"`
	MetricsFile  string `yaml:"metrics_file,omitempty"`
	RunLabel     string `yaml:"run_label,omitempty"`
}

// Greptime configures the time-series sink.
type Greptime struct {
	Endpoint        string `yaml:"endpoint,omitempty"`
	Database        string `yaml:"database,omitempty"`
	TrajectoryTable string `yaml:"trajectory_table,omitempty"`
	EventTable      string `yaml:"event_table,omitempty"`
	SummaryTable    string `yaml:"summary_table,omitempty"`
}

// SimulationConfig is the root configuration: the aerodynamic data, the
// scenario (a preset plus overrides) and the output sinks.
type SimulationConfig struct {
	AeroTable string    `yaml:"aero_table"`
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"scenario"`
	Sweep     *Sweep    `yaml:"sweep,omitempty"`
	Output    Output    `yaml:"output"`
	Greptime  Greptime  `yaml:"greptime"`
}

// Default returns the configuration used when no file is given.
func Default() *SimulationConfig {
	cfg := &SimulationConfig{}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

// Load loads YAML config and validates it against a CUE schema. An empty
// schema path skips schema validation.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if _, err := cfg.Scenario(); err != nil {
		return nil, err
	}

	slog.Debug("loaded configuration", "path", configPath, "preset", cfg.Preset, "aero_table", cfg.AeroTable)
	return &cfg, nil
}

func (c *SimulationConfig) applyDefaults() {
	if c.Preset == "" {
		c.Preset = scenario.PresetRamjet
	}
	if c.AeroTable == "" {
		c.AeroTable = "data/aerodynamics.csv"
	}
	if c.Output.SampleStride <= 0 {
		c.Output.SampleStride = 1
	}
	if c.Greptime.Database == "" {
		c.Greptime.Database = "public"
	}
}

// applyEnv lets deployment environment variables override file settings.
func (c *SimulationConfig) applyEnv() {
	if v := os.Getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		c.Greptime.Endpoint = v
	}
	if v := os.Getenv("GREPTIMEDB_TABLE"); v != "" {
		c.Greptime.TrajectoryTable = v
	}
	if v := os.Getenv("RUN_LABEL"); v != "" {
		c.Output.RunLabel = v
	}
}

// Scenario resolves the preset and applies the scenario overrides.
func (c *SimulationConfig) Scenario() (scenario.Scenario, error) {
	base, ok := scenario.Preset(c.Preset)
	if !ok {
		return scenario.Scenario{}, fmt.Errorf("%w: unknown preset %q (have %v)", scenario.ErrInvalidScenario, c.Preset, scenario.Names())
	}
	s, err := base.Override(&c.Overrides)
	if err != nil {
		return scenario.Scenario{}, err
	}
	if c.Output.RunLabel != "" {
		s.Name = c.Output.RunLabel
	}
	if err := s.Validate(); err != nil {
		return scenario.Scenario{}, err
	}
	return s, nil
}
