// Point-mass plus flight-path-angle integrator
package dynamics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"ramjet-sim/internal/aero"
	"ramjet-sim/internal/flight"
	"ramjet-sim/internal/propulsion"
)

const (
	// DefaultTimeStep is the reference integration step.
	DefaultTimeStep = 0.01
	// MaxTimeStep bounds dt so a boost or flameout transient at ~100 m/s^2
	// changes Mach by well under 0.02 per step.
	MaxTimeStep = 0.05
)

var (
	// ErrNonPhysicalState marks NaN, non-positive mass or reversed velocity.
	ErrNonPhysicalState = errors.New("dynamics: non-physical state")
	// ErrInvalidTimeStep is returned by ValidateTimeStep.
	ErrInvalidTimeStep = errors.New("dynamics: invalid time step")
)

// StateError reports the offending quantity of a non-physical state.
type StateError struct {
	Field string
	Value float64
	State flight.State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%v: %s = %g at t=%.3fs (x=%.1f m, h=%.1f m)",
		ErrNonPhysicalState, e.Field, e.Value, e.State.Time, e.State.Position.X, e.State.Position.Y)
}

func (e *StateError) Unwrap() error { return ErrNonPhysicalState }

// Environment holds the constant physical setting of a run.
type Environment struct {
	Gravity    float64 // m/s^2, acts straight down
	RefArea    float64 // m^2
	Atmosphere aero.Atmosphere
}

// Forces are the instantaneous force magnitudes acting on the projectile.
// Drag opposes the velocity, lift is normal to it (positive nose-up) and
// thrust acts along the body axis, taken as aligned with the velocity.
type Forces struct {
	Gravity  float64 // m/s^2
	Drag     float64 // N
	Lift     float64 // N
	Thrust   float64 // N
	MassFlow float64 // kg/s leaving the vehicle
	FuelFlow float64 // kg/s drawn from the ramjet fuel reservoir
}

// ComputeForces evaluates forces at the current state. cl is the lift
// coefficient actually flown this tick.
func ComputeForces(env Environment, s flight.State, cd, cl float64, thrust propulsion.Output) Forces {
	qS := env.Atmosphere.DynamicPressure(s.Speed, s.Altitude()) * env.RefArea
	f := Forces{
		Gravity:  env.Gravity,
		Drag:     qS * cd,
		Lift:     qS * cl,
		Thrust:   thrust.Force,
		MassFlow: thrust.MassFlow,
	}
	if thrust.Status == propulsion.StatusSustain {
		f.FuelFlow = thrust.MassFlow
	}
	return f
}

// Accelerations returns the tangential and normal accelerations for s under f.
func Accelerations(s flight.State, f Forces) (tangential, normal float64) {
	sin, cos := math.Sincos(s.Gamma)
	tangential = (f.Thrust-f.Drag)/s.Mass - f.Gravity*sin
	normal = f.Lift/s.Mass - f.Gravity*cos
	return tangential, normal
}

// Step advances s by dt with an explicit fixed-step update: speed first, then
// position using the new speed, then the flight-path angle from the turn-rate
// relation gamma' = a_n / V, then mass and time. The input is not modified.
func Step(s flight.State, f Forces, dt float64) (flight.State, error) {
	if err := Check(s); err != nil {
		return s, err
	}
	aT, aN := Accelerations(s, f)

	next := s
	next.Speed = s.Speed + aT*dt
	if !(next.Speed > 0) {
		return s, &StateError{Field: "speed", Value: next.Speed, State: s}
	}
	sin, cos := math.Sincos(s.Gamma)
	next.Position = r2.Add(s.Position, r2.Vec{X: next.Speed * cos * dt, Y: next.Speed * sin * dt})
	next.Gamma = s.Gamma + aN/next.Speed*dt

	burn := f.MassFlow * dt
	if f.FuelFlow > 0 {
		burn = math.Min(f.FuelFlow*dt, s.Fuel)
		next.Fuel = s.Fuel - burn
	}
	next.Mass = s.Mass - burn
	next.Time = s.Time + dt

	if err := Check(next); err != nil {
		return s, err
	}
	return next, nil
}

// Check returns a *StateError when s contains NaN/Inf values, non-positive
// mass or non-positive speed.
func Check(s flight.State) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"x", s.Position.X},
		{"altitude", s.Position.Y},
		{"speed", s.Speed},
		{"gamma", s.Gamma},
		{"mass", s.Mass},
		{"fuel", s.Fuel},
		{"time", s.Time},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &StateError{Field: f.name, Value: f.v, State: s}
		}
	}
	switch {
	case s.Mass <= 0:
		return &StateError{Field: "mass", Value: s.Mass, State: s}
	case s.Speed <= 0:
		return &StateError{Field: "speed", Value: s.Speed, State: s}
	case s.Fuel < 0:
		return &StateError{Field: "fuel", Value: s.Fuel, State: s}
	}
	return nil
}

// ValidateTimeStep rejects steps that are non-positive or too coarse for the
// fastest modelled transient.
func ValidateTimeStep(dt float64) error {
	if math.IsNaN(dt) || dt <= 0 || dt > MaxTimeStep {
		return fmt.Errorf("%w: dt=%g must be in (0, %g]", ErrInvalidTimeStep, dt, MaxTimeStep)
	}
	return nil
}

// GroundCrossing interpolates the point where the segment prev->next crosses
// altitude zero. If the segment does not descend through the ground it
// returns next's position.
func GroundCrossing(prev, next flight.State) r2.Vec {
	h0, h1 := prev.Altitude(), next.Altitude()
	if h0 <= 0 || h1 > 0 || h0 == h1 {
		return next.Position
	}
	frac := h0 / (h0 - h1)
	return r2.Add(prev.Position, r2.Scale(frac, r2.Sub(next.Position, prev.Position)))
}
