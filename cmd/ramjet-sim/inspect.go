package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ramjet-sim/internal/scenario"
	"ramjet-sim/internal/sim"
)

var (
	inspectPreset string
	inspectFile   string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <trajectory.jsonl>",
	Short: "Browse a recorded run in the interactive viewer",
	Long:  "inspect loads a trajectory log, plus its .events and .summary companions when present, into the terminal viewer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("inspect needs an interactive terminal; use replay to print a log")
		}
		path := args[0]
		rows, err := sim.LoadTrajectory(path)
		if err != nil {
			return err
		}
		events, err := sim.LoadEvents(path + ".events")
		if err := optional(err); err != nil {
			return err
		}
		summaries, err := sim.LoadSummaries(path + ".summary")
		if err := optional(err); err != nil {
			return err
		}

		var scn *scenario.Scenario
		switch {
		case inspectFile != "":
			if scn, err = scenario.Load(inspectFile); err != nil {
				return err
			}
		case inspectPreset != "":
			s, ok := scenario.Preset(inspectPreset)
			if !ok {
				return fmt.Errorf("unknown preset %q (have %v)", inspectPreset, scenario.Names())
			}
			scn = &s
		}

		tui := sim.NewTUIWriter(scn)
		_ = tui.WriteBatch(rows)
		_ = tui.WriteEvents(events)
		for _, s := range summaries {
			_ = tui.WriteSummary(s)
		}
		tui.Wait()
		return nil
	},
}

// optional treats a missing companion log as empty.
func optional(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func init() {
	inspectCmd.Flags().StringVar(&inspectPreset, "preset", "", "Built-in scenario the log was recorded with, for the header and target marker")
	inspectCmd.Flags().StringVar(&inspectFile, "scenario", "", "Scenario YAML the log was recorded with")
}
