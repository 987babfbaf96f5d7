package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"ramjet-sim/internal/aero"
	"ramjet-sim/internal/config"
	"ramjet-sim/internal/logging"
	"ramjet-sim/internal/observability"
	"ramjet-sim/internal/sim"
)

var (
	sweepPreset       string
	sweepParam        string
	sweepValues       []float64
	sweepFrom         float64
	sweepTo           float64
	sweepCount        int
	sweepWorkers      int
	sweepMetricsFile  string
	sweepLogFile      string
	sweepPrintOnly    bool
	sweepTrajectories bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a parallel trade study over one scenario parameter",
	Long:  "sweep runs the scenario once per parameter value on a bounded worker pool and reports per-run summaries and aggregate miss statistics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logging.FromContext(ctx)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if sweepPreset != "" {
			cfg.Preset = sweepPreset
		}
		sw := sweepSettings(cmd, cfg.Sweep)
		if sw.Parameter == "" {
			return fmt.Errorf("sweep parameter required (--param or sweep.parameter in config)")
		}
		values := sw.Points()
		if len(values) == 0 {
			return fmt.Errorf("sweep over %s has no values", sw.Parameter)
		}
		if sweepLogFile != "" {
			cfg.Output.LogFile = sweepLogFile
		}
		if sweepMetricsFile != "" {
			cfg.Output.MetricsFile = sweepMetricsFile
		}

		base, err := cfg.Scenario()
		if err != nil {
			return err
		}
		table, err := aero.Load(cfg.AeroTable)
		if err != nil {
			return err
		}
		out, cleanup, err := newWriters(cfg, &base, sweepPrintOnly, cfg.Output.LogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		reg := prometheus.NewRegistry()
		metrics, err := observability.NewCollector(reg)
		if err != nil {
			return err
		}

		start := time.Now().UTC()
		opts := []sim.Option{sim.WithStartTime(start), sim.WithMetrics(metrics)}
		if sweepTrajectories {
			lw := &lockedWriter{w: out}
			opts = append(opts, sim.WithTrajectoryWriter(lw, cfg.Output.SampleStride), sim.WithEventWriter(lw))
		}
		res, err := sim.Sweep(ctx, base, table, sw.Parameter, values, sw.Workers, opts...)
		if err != nil {
			return err
		}
		if err := sim.WriteSummaries(out, res.SummaryRows(start)); err != nil {
			return fmt.Errorf("write summaries: %w", err)
		}
		if cfg.Output.MetricsFile != "" {
			if err := metrics.WriteTextfile(cfg.Output.MetricsFile); err != nil {
				return err
			}
			log.Info("metrics written", "path", cfg.Output.MetricsFile)
		}
		if res.Stats.Aborted > 0 {
			return fmt.Errorf("%d of %d runs aborted", res.Stats.Aborted, res.Stats.Runs)
		}
		return nil
	},
}

// sweepSettings merges command-line flags over the config file's sweep block.
func sweepSettings(cmd *cobra.Command, fromCfg *config.Sweep) config.Sweep {
	var sw config.Sweep
	if fromCfg != nil {
		sw = *fromCfg
	}
	f := cmd.Flags()
	if f.Changed("param") {
		sw.Parameter = sweepParam
	}
	if f.Changed("values") {
		sw.Values = sweepValues
	}
	if f.Changed("from") || f.Changed("to") || f.Changed("count") {
		sw.Values = nil
		sw.From, sw.To, sw.Count = sweepFrom, sweepTo, sweepCount
	}
	if f.Changed("workers") {
		sw.Workers = sweepWorkers
	}
	return sw
}

func init() {
	f := sweepCmd.Flags()
	f.StringVar(&sweepPreset, "preset", "", "Built-in base scenario (overrides config preset)")
	f.StringVar(&sweepParam, "param", "", "Parameter to sweep (launch_speed, launch_angle_deg, nav_gain, target_range, activation_range, boost_duration)")
	f.Float64SliceVar(&sweepValues, "values", nil, "Explicit parameter values")
	f.Float64Var(&sweepFrom, "from", 0, "First value of an evenly spaced range")
	f.Float64Var(&sweepTo, "to", 0, "Last value of an evenly spaced range")
	f.IntVar(&sweepCount, "count", 0, "Number of values in the range")
	f.IntVar(&sweepWorkers, "workers", 0, "Concurrent runs (default GOMAXPROCS)")
	f.StringVar(&sweepMetricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	f.StringVar(&sweepLogFile, "log-file", "", "Path to export summary (and optional trajectory) logs (JSONL)")
	f.BoolVar(&sweepPrintOnly, "print-only", false, "Print to STDOUT even when a GreptimeDB endpoint is configured")
	f.BoolVar(&sweepTrajectories, "trajectories", false, "Also emit every run's sampled trajectory and events")
}
