package sim

import (
	"ramjet-sim/internal/flight"
	"ramjet-sim/internal/propulsion"
	"ramjet-sim/internal/scenario"
)

// machine owns the current flight phase and the predicates that advance it.
type machine struct {
	phase        flight.Phase
	guided       bool
	boostTime    float64
	actRange     float64
	actAltitude  float64
	grace        float64
	dt           float64
	maxSteps     int
	flameoutFrom float64 // sim time the current flameout began, <0 when lit
}

func newMachine(s scenario.Scenario) *machine {
	return &machine{
		phase:        flight.Launch,
		guided:       s.Guidance.Enabled,
		boostTime:    s.Booster.Duration,
		actRange:     s.Guidance.ActivationRange,
		actAltitude:  s.Guidance.ActivationAltitude,
		grace:        s.Sim.FlameoutGrace,
		dt:           s.Sim.TimeStep,
		maxSteps:     s.Sim.MaxSteps(),
		flameoutFrom: -1,
	}
}

// tick is what the machine needs to know about the step just integrated.
type tick struct {
	step       int
	state      flight.State
	rng        float64
	propulsion propulsion.Status
}

// advance evaluates transitions in priority order: ground impact, then the
// time bound, then at most one phase advance. It returns the new phase and
// whether it changed.
func (m *machine) advance(t tick) (flight.Phase, bool) {
	if m.phase.Terminal() {
		return m.phase, false
	}
	m.trackFlameout(t)

	next := m.phase
	switch {
	case t.state.Altitude() <= 0:
		next = flight.Impacted
	case t.step >= m.maxSteps:
		next = flight.Missed
	default:
		next = m.phaseAdvance(t)
	}
	if next == m.phase || !m.phase.CanTransition(next) {
		return m.phase, false
	}
	m.phase = next
	return next, true
}

func (m *machine) phaseAdvance(t tick) flight.Phase {
	switch m.phase {
	case flight.Launch:
		return flight.Boost
	case flight.Boost:
		if t.state.Time >= m.boostTime {
			return flight.RamjetCruise
		}
	case flight.RamjetCruise:
		if m.activate(t) {
			return flight.TerminalGuided
		}
	}
	return m.phase
}

// activate reports whether terminal guidance should take over. An unguided
// round stays in cruise until it lands or times out.
func (m *machine) activate(t tick) bool {
	if !m.guided {
		return false
	}
	if m.actRange > 0 && t.rng <= m.actRange {
		return true
	}
	if m.actAltitude > 0 && t.state.Altitude() <= m.actAltitude {
		return true
	}
	return m.flameoutFrom >= 0 && t.state.Time-m.flameoutFrom >= m.grace
}

func (m *machine) trackFlameout(t tick) {
	if m.phase != flight.RamjetCruise || t.propulsion != propulsion.StatusFlameout {
		m.flameoutFrom = -1
		return
	}
	if m.flameoutFrom < 0 {
		// the flameout started at the beginning of the step just taken
		m.flameoutFrom = t.state.Time - m.dt
	}
}
