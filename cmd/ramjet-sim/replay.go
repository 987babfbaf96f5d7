package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ramjet-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayTUI       bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a trajectory log file",
	Long:  "replay feeds trajectory rows from a JSONL log back into GreptimeDB, STDOUT or the interactive viewer, paced by simulated time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		if replayTUI {
			tui := sim.NewTUIWriter(nil)
			if err := sim.ReplayLogFile(replayInput, tui, replaySpeed); err != nil {
				tui.Close()
				return err
			}
			tui.Wait()
			return nil
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		writer, cleanup, err := newWriters(cfg, nil, replayPrintOnly, "")
		if err != nil {
			return err
		}
		defer cleanup()
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to trajectory log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 for no pacing)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayTUI, "tui", false, "Replay into the interactive viewer")
	replayCmd.MarkFlagRequired("input")
}
