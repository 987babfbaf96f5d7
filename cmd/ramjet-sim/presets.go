package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ramjet-sim/internal/scenario"
)

var presetsYAML bool

var presetsCmd = &cobra.Command{
	Use:   "presets [name]",
	Short: "List built-in scenarios",
	Long:  "presets lists the built-in scenarios, or prints one as YAML to use as the base of a scenario file.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			s, ok := scenario.Preset(args[0])
			if !ok {
				return fmt.Errorf("unknown preset %q (have %v)", args[0], scenario.Names())
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(s); err != nil {
				return err
			}
			return enc.Close()
		}
		if presetsYAML {
			return yaml.NewEncoder(out).Encode(scenario.BuiltIn())
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLAUNCH\tTARGET\tGUIDED\tDESCRIPTION")
		for _, name := range scenario.Names() {
			s, _ := scenario.Preset(name)
			fmt.Fprintf(tw, "%s\t%.0f m/s @ %.0f m\t%.0f m\t%t\t%s\n", name, s.Launch.Speed, s.Launch.Altitude, s.Target.Range, s.Guidance.Enabled, s.Description)
		}
		return tw.Flush()
	},
}

func init() {
	presetsCmd.Flags().BoolVar(&presetsYAML, "yaml", false, "Print every preset as YAML")
}
