package sim

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"ramjet-sim/internal/dynamics"
	"ramjet-sim/internal/flight"
	"ramjet-sim/internal/propulsion"
	"ramjet-sim/internal/telemetry"
)

// Sample is one recorded integration step.
type Sample struct {
	Step       int
	State      flight.State
	Phase      flight.Phase // phase after this step's transitions
	Mach       float64
	Thrust     float64
	Drag       float64
	Propulsion propulsion.Status
	Command    flight.Command
	Range      float64 // slant range to the target
}

// BoundaryEvent is a non-fatal boundary condition reached during a run.
type BoundaryEvent struct {
	Step   int
	Time   float64
	Kind   string
	Phase  flight.Phase
	Detail string
	Value  float64
}

// Result is the complete outcome of one run. Trajectory is append-only and
// starts with the launch state.
type Result struct {
	RunID            string
	Scenario         string
	Trajectory       []Sample
	FinalPhase       flight.Phase
	MissDistance     float64 // horizontal distance to the target at ground crossing or timeout
	ClosestApproach  float64 // minimum separation over all trajectory segments
	Hit              bool
	ImpactPoint      r2.Vec
	FlightTime       float64
	Steps            int
	SaturationEvents int // ticks on which the guidance command was clipped
	MaxMach          float64
	Events           []BoundaryEvent
}

// Final returns the last recorded state.
func (r *Result) Final() flight.State {
	return r.Trajectory[len(r.Trajectory)-1].State
}

// Outcome is a short label for metrics and summaries.
func (r *Result) Outcome() string {
	switch {
	case r.Hit:
		return "hit"
	case r.FinalPhase == flight.Impacted:
		return "impacted"
	case r.FinalPhase == flight.Missed:
		return "timeout"
	default:
		return "aborted"
	}
}

func (r *Result) finish(prev, last flight.State, phase flight.Phase, tgt flight.Target, tolerance float64, steps int) {
	r.FinalPhase = phase
	r.Steps = steps
	r.FlightTime = last.Time
	switch phase {
	case flight.Impacted:
		p := dynamics.GroundCrossing(prev, last)
		tc := last.Time
		if h0, h1 := prev.Altitude(), last.Altitude(); h0 > 0 && h0 != h1 {
			tc = prev.Time + h0/(h0-h1)*(last.Time-prev.Time)
		}
		r.ImpactPoint = p
		r.MissDistance = math.Abs(p.X - tgt.At(tc).X)
	default:
		r.ImpactPoint = last.Position
		r.MissDistance = math.Abs(last.Position.X - tgt.At(last.Time).X)
	}
	r.Hit = r.ClosestApproach <= tolerance
}

// segmentDistance is the minimum separation between the target and the
// straight segment flown from prev to next, both taken relative to the
// target so a moving target is handled exactly.
func segmentDistance(prev, next flight.State, tgt flight.Target) float64 {
	a := r2.Sub(prev.Position, tgt.At(prev.Time))
	b := r2.Sub(next.Position, tgt.At(next.Time))
	d := r2.Sub(b, a)
	u := 0.0
	if den := r2.Dot(d, d); den > 0 {
		u = math.Max(0, math.Min(1, -r2.Dot(a, d)/den))
	}
	return r2.Norm(r2.Add(a, r2.Scale(u, d)))
}

func simClock(start time.Time, t float64) time.Time {
	return start.Add(time.Duration(t * float64(time.Second)))
}

// Row converts a sample to a telemetry row stamped relative to start.
func (s Sample) Row(runID, scenario string, start time.Time) telemetry.TrajectoryRow {
	return telemetry.TrajectoryRow{
		RunID:      runID,
		Scenario:   scenario,
		Step:       s.Step,
		SimTime:    s.State.Time,
		Downrange:  s.State.Position.X,
		Altitude:   s.State.Position.Y,
		Speed:      s.State.Speed,
		Mach:       s.Mach,
		GammaDeg:   s.State.Gamma * 180 / math.Pi,
		Mass:       s.State.Mass,
		Fuel:       s.State.Fuel,
		Thrust:     s.Thrust,
		Drag:       s.Drag,
		LiftAccel:  s.Command.NormalAccel,
		Demand:     s.Command.Demand,
		Saturated:  s.Command.Saturated,
		Range:      s.Range,
		Phase:      s.Phase.String(),
		Propulsion: string(s.Propulsion),
		Timestamp:  simClock(start, s.State.Time),
	}
}

// TrajectoryRows returns every stride-th sample as telemetry rows. The final
// sample is always included.
func (r *Result) TrajectoryRows(start time.Time, stride int) []telemetry.TrajectoryRow {
	if stride < 1 {
		stride = 1
	}
	rows := make([]telemetry.TrajectoryRow, 0, len(r.Trajectory)/stride+1)
	last := len(r.Trajectory) - 1
	for i, s := range r.Trajectory {
		if i%stride == 0 || i == last {
			rows = append(rows, s.Row(r.RunID, r.Scenario, start))
		}
	}
	return rows
}

// EventRows converts the boundary events to telemetry rows.
func (r *Result) EventRows(start time.Time) []telemetry.EventRow {
	rows := make([]telemetry.EventRow, 0, len(r.Events))
	for _, e := range r.Events {
		rows = append(rows, telemetry.EventRow{
			RunID:     r.RunID,
			Scenario:  r.Scenario,
			Kind:      e.Kind,
			Step:      e.Step,
			SimTime:   e.Time,
			Phase:     e.Phase.String(),
			Detail:    e.Detail,
			Value:     e.Value,
			Timestamp: simClock(start, e.Time),
		})
	}
	return rows
}

// Summary returns the scalar outcome as a telemetry row.
func (r *Result) Summary(start time.Time) telemetry.SummaryRow {
	return telemetry.SummaryRow{
		RunID:           r.RunID,
		Scenario:        r.Scenario,
		FinalPhase:      r.FinalPhase.String(),
		MissDistance:    r.MissDistance,
		ClosestApproach: r.ClosestApproach,
		Hit:             r.Hit,
		ImpactX:         r.ImpactPoint.X,
		ImpactAltitude:  r.ImpactPoint.Y,
		FlightTime:      r.FlightTime,
		Steps:           r.Steps,
		Saturations:     r.SaturationEvents,
		MaxMach:         r.MaxMach,
		Timestamp:       simClock(start, r.FlightTime),
	}
}

// RunError aborts a run on a numerical defect.
type RunError struct {
	Step  int
	Phase flight.Phase
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run aborted at step %d (%s): %v", e.Step, e.Phase, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
