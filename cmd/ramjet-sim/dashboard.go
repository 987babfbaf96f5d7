package main

import (
	"github.com/spf13/cobra"

	"ramjet-sim/internal/dashboard"
	"ramjet-sim/internal/logging"
)

var dashboardOut string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render the Grafana dashboard for the GreptimeDB tables",
	Long:  "dashboard renders Grafana dashboard JSON querying the trajectory, event and summary tables. GREPTIMEDB_DATASOURCE_UID must be set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tables := dashboard.DefaultTables()
		if t := cfg.Greptime.TrajectoryTable; t != "" {
			tables.Trajectory = t
		}
		if t := cfg.Greptime.EventTable; t != "" {
			tables.Events = t
		}
		if t := cfg.Greptime.SummaryTable; t != "" {
			tables.Summary = t
		}
		if err := dashboard.Render(dashboardOut, tables); err != nil {
			return err
		}
		logging.FromContext(cmd.Context()).Info("dashboard rendered", "dir", dashboardOut)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "build", "Output directory for rendered dashboards")
}
