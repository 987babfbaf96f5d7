package main

import (
	"time"

	"github.com/spf13/cobra"

	"ramjet-sim/internal/aero"
	"ramjet-sim/internal/logging"
	"ramjet-sim/internal/sim"
)

var (
	simPreset    string
	simPrintOnly bool
	simLogFile   string
	simStride    int
	simTUI       bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one scenario to impact or timeout",
	Long:  "simulate integrates a single scenario, emits the sampled trajectory and boundary events, and prints the run summary.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logging.FromContext(ctx)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if simPreset != "" {
			cfg.Preset = simPreset
		}
		if simLogFile != "" {
			cfg.Output.LogFile = simLogFile
		}
		if simStride > 0 {
			cfg.Output.SampleStride = simStride
		}
		scn, err := cfg.Scenario()
		if err != nil {
			return err
		}
		table, err := aero.Load(cfg.AeroTable)
		if err != nil {
			return err
		}

		var out outputWriter
		cleanup := func() {}
		var tui *sim.TUIWriter
		if simTUI {
			tui = sim.NewTUIWriter(&scn)
			out = tui
		} else {
			out, cleanup, err = newWriters(cfg, &scn, simPrintOnly, cfg.Output.LogFile)
			if err != nil {
				return err
			}
		}
		defer cleanup()

		start := time.Now().UTC()
		eng, err := sim.NewEngine(scn, table,
			sim.WithStartTime(start),
			sim.WithTrajectoryWriter(out, cfg.Output.SampleStride),
			sim.WithEventWriter(out),
		)
		if err != nil {
			return err
		}
		log.Info("simulation started", "run_id", eng.RunID(), "scenario", scn.Name, "aero_table", cfg.AeroTable)
		res, runErr := eng.Run(ctx)
		if res != nil {
			if err := out.WriteSummary(res.Summary(start)); err != nil {
				log.Warn("write summary", "err", err)
			}
		}
		if tui != nil {
			tui.Wait()
		}
		return runErr
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simPreset, "preset", "", "Built-in scenario to run (overrides config preset)")
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print to STDOUT even when a GreptimeDB endpoint is configured")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export trajectory/event/summary logs (JSONL)")
	simulateCmd.Flags().IntVar(&simStride, "stride", 0, "Emit every n-th integration step (default from config)")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Show the run in the interactive viewer")
}
