// Simulation driver: one deterministic run from launch to a terminal phase
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/spatial/r2"

	"ramjet-sim/internal/aero"
	"ramjet-sim/internal/dynamics"
	"ramjet-sim/internal/flight"
	"ramjet-sim/internal/guidance"
	"ramjet-sim/internal/logging"
	"ramjet-sim/internal/observability"
	"ramjet-sim/internal/propulsion"
	"ramjet-sim/internal/scenario"
	"ramjet-sim/internal/telemetry"
)

// ErrNoTable is returned when an engine is built without aerodynamic data.
var ErrNoTable = errors.New("sim: aerodynamic table required")

// Engine runs one scenario against a shared, read-only aerodynamic table.
// Engines hold no state between runs.
type Engine struct {
	scn     scenario.Scenario
	table   *aero.Table
	runID   string
	start   time.Time
	stride  int
	traj    TrajectoryWriter
	events  EventWriter
	tracer  trace.Tracer
	metrics *observability.Collector
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunID sets the run identifier; a random UUID is used otherwise.
func WithRunID(id string) Option { return func(e *Engine) { e.runID = id } }

// WithStartTime sets the wall-clock time that sim time zero maps to in output rows.
func WithStartTime(t time.Time) Option { return func(e *Engine) { e.start = t } }

// WithTrajectoryWriter emits every stride-th sample once the run completes.
func WithTrajectoryWriter(w TrajectoryWriter, stride int) Option {
	return func(e *Engine) { e.traj, e.stride = w, stride }
}

// WithEventWriter emits boundary events once the run completes.
func WithEventWriter(w EventWriter) Option { return func(e *Engine) { e.events = w } }

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option { return func(e *Engine) { e.tracer = t } }

// WithMetrics records run outcomes.
func WithMetrics(c *observability.Collector) Option { return func(e *Engine) { e.metrics = c } }

// NewEngine validates the scenario and builds an engine.
func NewEngine(s scenario.Scenario, table *aero.Table, opts ...Option) (*Engine, error) {
	if table == nil {
		return nil, ErrNoTable
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		scn:    s,
		table:  table,
		stride: 1,
		start:  time.Now().UTC(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("ramjet-sim/internal/sim")
	}
	return e, nil
}

// RunID returns the identifier stamped on every output row.
func (e *Engine) RunID() string { return e.runID }

// Scenario returns the scenario the engine runs.
func (e *Engine) Scenario() scenario.Scenario { return e.scn }

// Run integrates the scenario to a terminal phase. The loop itself performs
// no I/O; configured writers receive output after it finishes. On a
// numerical defect the partial result is returned with a *RunError.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "sim.Run", trace.WithAttributes(
		attribute.String("run.id", e.runID),
		attribute.String("scenario", e.scn.Name),
	))
	defer span.End()
	log := logging.FromContext(ctx).With("run_id", e.runID, "scenario", e.scn.Name)

	res, runErr := e.integrate(log)

	span.SetAttributes(
		attribute.String("final_phase", res.FinalPhase.String()),
		attribute.Int("steps", res.Steps),
		attribute.Float64("miss_distance_m", res.MissDistance),
		attribute.Bool("hit", res.Hit),
	)
	outcome := res.Outcome()
	if runErr != nil {
		outcome = "aborted"
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		log.Error("run aborted", "err", runErr)
	} else {
		log.Info("run complete",
			"final_phase", res.FinalPhase.String(),
			"miss_distance_m", res.MissDistance,
			"closest_approach_m", res.ClosestApproach,
			"hit", res.Hit,
			"flight_time_s", res.FlightTime,
			"steps", res.Steps,
		)
	}
	e.metrics.ObserveRun(e.scn.Name, outcome, res.MissDistance, res.FlightTime, res.SaturationEvents)

	if err := e.emit(res); err != nil {
		log.Warn("write run output", "err", err)
		if runErr == nil {
			return res, err
		}
	}
	return res, runErr
}

func (e *Engine) emit(res *Result) error {
	if e.traj != nil {
		if err := writeTrajectory(e.traj, res.TrajectoryRows(e.start, e.stride)); err != nil {
			return fmt.Errorf("write trajectory: %w", err)
		}
	}
	if e.events != nil && len(res.Events) > 0 {
		if err := writeEvents(e.events, res.EventRows(e.start)); err != nil {
			return fmt.Errorf("write events: %w", err)
		}
	}
	return nil
}

// integrate is the hot loop: lookup, thrust, guidance, step, record, transition.
func (e *Engine) integrate(log *slog.Logger) (*Result, error) {
	s := e.scn
	env := s.Environment()
	atm := s.Atmosphere
	prop := s.Propulsion()
	law := s.Law()
	tgt := s.TargetState()
	dt := s.Sim.TimeStep
	m := newMachine(s)

	state := s.InitialState()
	res := &Result{
		RunID:      e.runID,
		Scenario:   s.Name,
		FinalPhase: m.phase,
		Trajectory: make([]Sample, 0, min(max(m.maxSteps+1, 1), 1<<15)),
	}
	launchMach := atm.Mach(state.Speed, state.Altitude())
	res.Trajectory = append(res.Trajectory, Sample{
		State:      state,
		Phase:      m.phase,
		Mach:       launchMach,
		Propulsion: propulsion.StatusOff,
		Range:      slantRange(state, tgt),
	})
	res.MaxMach = launchMach
	res.ClosestApproach = slantRange(state, tgt)

	lastStatus := propulsion.StatusOff
	saturated := false
	for step := 1; ; step++ {
		phase := m.phase
		h := state.Altitude()
		mach := atm.Mach(state.Speed, h)
		coeffs := e.table.Lookup(mach)
		thrust := prop.Thrust(mach, h, phase, state.Time, state.Fuel)
		if thrust.Status == propulsion.StatusBoost {
			thrust = thrust.Scale(prop.Booster.BurnFraction(state.Time, dt))
		}
		q := atm.DynamicPressure(state.Speed, h)
		limit := guidance.MaxLiftAccel(q, env.RefArea, coeffs.Cl, law.MaxAngleOfAttack, state.Mass)
		cmd := e.command(law, phase, state, tgt, env.Gravity, limit)
		cl := guidance.LiftCoefficient(cmd.NormalAccel, q, env.RefArea, state.Mass)
		forces := dynamics.ComputeForces(env, state, coeffs.Cd, cl, thrust)

		next, err := dynamics.Step(state, forces, dt)
		if err != nil {
			res.FinalPhase = phase
			res.Steps = step - 1
			res.FlightTime = state.Time
			res.ImpactPoint = state.Position
			return res, &RunError{Step: step, Phase: phase, Err: err}
		}
		res.ClosestApproach = math.Min(res.ClosestApproach, segmentDistance(state, next, tgt))

		if thrust.Status != lastStatus {
			if kind := statusEvent(thrust.Status); kind != "" {
				res.addEvent(log, BoundaryEvent{Step: step, Time: state.Time, Kind: kind, Phase: phase, Detail: string(lastStatus), Value: mach})
			}
			lastStatus = thrust.Status
		}
		if cmd.Saturated {
			res.SaturationEvents++
			if !saturated {
				res.addEvent(log, BoundaryEvent{Step: step, Time: state.Time, Kind: telemetry.EventSaturation, Phase: phase, Value: cmd.Demand})
			}
		}
		saturated = cmd.Saturated

		rng := slantRange(next, tgt)
		newPhase, changed := m.advance(tick{step: step, state: next, rng: rng, propulsion: thrust.Status})
		if changed {
			res.addEvent(log, BoundaryEvent{Step: step, Time: next.Time, Kind: telemetry.EventPhaseChange, Phase: newPhase, Detail: phase.String(), Value: rng})
		}

		nextMach := atm.Mach(next.Speed, next.Altitude())
		res.MaxMach = math.Max(res.MaxMach, nextMach)
		res.Trajectory = append(res.Trajectory, Sample{
			Step:       step,
			State:      next,
			Phase:      newPhase,
			Mach:       nextMach,
			Thrust:     forces.Thrust,
			Drag:       forces.Drag,
			Propulsion: thrust.Status,
			Command:    cmd,
			Range:      rng,
		})

		prev := state
		state = next
		if newPhase.Terminal() {
			res.finish(prev, state, newPhase, tgt, s.Guidance.HitTolerance, step)
			return res, nil
		}
	}
}

// command selects the lateral acceleration for the phase. Cruise holds the
// flight path against gravity; the terminal phase flies proportional
// navigation. With guidance disabled the airframe flies at zero lift.
func (e *Engine) command(law guidance.Law, phase flight.Phase, s flight.State, tgt flight.Target, g, limit float64) flight.Command {
	if !e.scn.Guidance.Enabled {
		return flight.Command{}
	}
	switch phase {
	case flight.RamjetCruise:
		return law.HoldCommand(s, g, limit)
	case flight.TerminalGuided:
		return law.Guide(s, tgt.At(s.Time), tgt.Velocity, g, limit)
	default:
		return flight.Command{}
	}
}

func (r *Result) addEvent(log *slog.Logger, ev BoundaryEvent) {
	r.Events = append(r.Events, ev)
	level := slog.LevelInfo
	switch ev.Kind {
	case telemetry.EventFlameout, telemetry.EventFuelExhausted, telemetry.EventOverspeed:
		level = slog.LevelWarn
	}
	log.Log(context.Background(), level, "boundary event",
		"kind", ev.Kind,
		"step", ev.Step,
		"t", ev.Time,
		"phase", ev.Phase.String(),
		"detail", ev.Detail,
		"value", ev.Value,
	)
}

func statusEvent(s propulsion.Status) string {
	switch s {
	case propulsion.StatusFlameout:
		return telemetry.EventFlameout
	case propulsion.StatusOverspeed:
		return telemetry.EventOverspeed
	case propulsion.StatusFuelExhausted:
		return telemetry.EventFuelExhausted
	}
	return ""
}

func slantRange(s flight.State, tgt flight.Target) float64 {
	return r2.Norm(r2.Sub(tgt.At(s.Time), s.Position))
}
