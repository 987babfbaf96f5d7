// ColorStdoutWriter prints human-friendly, colorized trajectory output to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"

	"ramjet-sim/internal/flight"
	"ramjet-sim/internal/scenario"
	"ramjet-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

var phaseColors = map[string]string{
	flight.Launch.String():         colorGray,
	flight.Boost.String():          colorYellow,
	flight.RamjetCruise.String():   colorBlue,
	flight.TerminalGuided.String(): colorMagenta,
	flight.Impacted.String():       colorGreen,
	flight.Missed.String():         colorRed,
}

// ColorStdoutWriter prints trajectory rows using ANSI colors.
type ColorStdoutWriter struct {
	scn  *scenario.Scenario
	out  io.Writer
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
// scn may be nil to skip the configuration overview.
func NewColorStdoutWriter(scn *scenario.Scenario) *ColorStdoutWriter {
	return &ColorStdoutWriter{scn: scn, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.scn == nil {
		return
	}
	s := w.scn
	fmt.Fprintf(w.out, "Scenario %s%s%s:\n", colorCyan, s.Name, colorReset)
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Launch (x, h):\t%.0f m, %.0f m\n", s.Launch.Downrange, s.Launch.Altitude)
	fmt.Fprintf(tw, "Launch speed:\t%.1f m/s @ %.1f deg\n", s.Launch.Speed, s.Launch.AngleDeg)
	fmt.Fprintf(tw, "Mass / fuel:\t%.1f kg / %.1f kg\n", s.Airframe.Mass, s.Airframe.Fuel)
	fmt.Fprintf(tw, "Target (x, h):\t%.0f m, %.0f m\n", s.Target.Range, s.Target.Altitude)
	fmt.Fprintf(tw, "Booster:\t%.0f N for %.2f s\n", s.Booster.Thrust, s.Booster.Duration)
	fmt.Fprintf(tw, "Ramjet:\t%t (Mach %.2f-%.2f, %.0f N)\n", s.Ramjet.Enabled, s.Ramjet.MinMach, s.Ramjet.MaxMach, s.Ramjet.SeaLevelThrust)
	fmt.Fprintf(tw, "Guidance:\t%t (N=%.1f, activation %.0f m)\n", s.Guidance.Enabled, s.Guidance.NavGain, s.Guidance.ActivationRange)
	fmt.Fprintf(tw, "Time step:\t%g s (max %g s)\n", s.Sim.TimeStep, s.Sim.MaxTime)
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single trajectory row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.TrajectoryRow) error {
	w.once.Do(w.printOverview)
	pc, ok := phaseColors[row.Phase]
	if !ok {
		pc = colorReset
	}
	fmt.Fprintf(w.out, "%s[t=%7.2fs]%s ", colorGray, row.SimTime, colorReset)
	fmt.Fprintf(w.out, "%s%-15s%s ", pc, row.Phase, colorReset)
	fmt.Fprintf(w.out, "%sx=%8.1f%s ", colorGreen, row.Downrange, colorReset)
	fmt.Fprintf(w.out, "%sh=%7.1f%s ", colorYellow, row.Altitude, colorReset)
	fmt.Fprintf(w.out, "%sM=%4.2f%s ", colorCyan, row.Mach, colorReset)
	fmt.Fprintf(w.out, "%sgamma=%6.2f%s ", colorBlue, row.GammaDeg, colorReset)
	fmt.Fprintf(w.out, "%sthrust=%6.0f%s ", colorMagenta, row.Thrust, colorReset)
	fmt.Fprintf(w.out, "range=%8.1f", row.Range)
	if row.Saturated {
		fmt.Fprintf(w.out, " %ssat%s", colorRed, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteBatch outputs multiple trajectory rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.TrajectoryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent prints a boundary event.
func (w *ColorStdoutWriter) WriteEvent(e telemetry.EventRow) error {
	w.once.Do(w.printOverview)
	col := colorYellow
	if e.Kind == telemetry.EventPhaseChange {
		col = colorCyan
	}
	fmt.Fprintf(w.out, "%s[t=%7.2fs]%s %s%s%s phase=%s", colorGray, e.SimTime, colorReset, col, e.Kind, colorReset, e.Phase)
	if e.Detail != "" {
		fmt.Fprintf(w.out, " from=%s", e.Detail)
	}
	fmt.Fprintf(w.out, " value=%.2f\n", e.Value)
	return nil
}

// WriteEvents prints multiple boundary events.
func (w *ColorStdoutWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, e := range rows {
		_ = w.WriteEvent(e)
	}
	return nil
}

// WriteSummary prints a run summary table.
func (w *ColorStdoutWriter) WriteSummary(r telemetry.SummaryRow) error {
	w.once.Do(w.printOverview)
	verdict := colorRed + "MISS" + colorReset
	if r.Hit {
		verdict = colorGreen + "HIT" + colorReset
	}
	fmt.Fprintf(w.out, "\nRun %s: %s\n", r.RunID, verdict)
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	if r.Parameter != "" {
		fmt.Fprintf(tw, "%s:\t%g\n", r.Parameter, r.ParameterValue)
	}
	fmt.Fprintf(tw, "Final phase:\t%s\n", r.FinalPhase)
	fmt.Fprintf(tw, "Miss distance:\t%.2f m\n", r.MissDistance)
	fmt.Fprintf(tw, "Closest approach:\t%.2f m\n", r.ClosestApproach)
	fmt.Fprintf(tw, "Impact point:\t(%.1f, %.1f) m\n", r.ImpactX, r.ImpactAltitude)
	fmt.Fprintf(tw, "Flight time:\t%.2f s (%d steps)\n", r.FlightTime, r.Steps)
	fmt.Fprintf(tw, "Max Mach:\t%.2f\n", r.MaxMach)
	fmt.Fprintf(tw, "Saturated steps:\t%d\n", r.Saturations)
	if r.Error != "" {
		fmt.Fprintf(tw, "Error:\t%s%s%s\n", colorRed, r.Error, colorReset)
	}
	return tw.Flush()
}

// WriteSummaries prints multiple run summaries.
func (w *ColorStdoutWriter) WriteSummaries(rows []telemetry.SummaryRow) error {
	for _, r := range rows {
		if err := w.WriteSummary(r); err != nil {
			return err
		}
	}
	return nil
}
