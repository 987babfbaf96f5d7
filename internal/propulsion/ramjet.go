// Booster and ramjet thrust model
package propulsion

import (
	"ramjet-sim/internal/aero"
	"ramjet-sim/internal/flight"
)

// StandardGravity converts specific impulse in seconds to exhaust velocity.
const StandardGravity = 9.80665

// Status describes why the propulsion system produced the thrust it did.
type Status string

const (
	StatusOff           Status = "off"
	StatusBoost         Status = "boost"
	StatusSustain       Status = "sustain"
	StatusFlameout      Status = "flameout"
	StatusOverspeed     Status = "overspeed"
	StatusFuelExhausted Status = "fuel_exhausted"
)

// Producing reports whether the status corresponds to non-zero thrust.
func (s Status) Producing() bool {
	return s == StatusBoost || s == StatusSustain
}

// Booster is the launch boost motor. It only fires during Launch and Boost.
type Booster struct {
	Thrust         float64 `yaml:"thrust_n" json:"thrust_n"`
	Duration       float64 `yaml:"duration_s" json:"duration_s"`
	PropellantMass float64 `yaml:"propellant_kg" json:"propellant_kg"`
}

// BurnFraction is the share of a step starting at elapsed that lies before
// burnout. Scaling the final step by it keeps total impulse and propellant
// use independent of dt.
func (b Booster) BurnFraction(elapsed, dt float64) float64 {
	if !(dt > 0) {
		return 0
	}
	left := b.Duration - elapsed
	switch {
	case left <= 0:
		return 0
	case left >= dt:
		return 1
	}
	return left / dt
}

// Ramjet describes the sustainer operating envelope.
type Ramjet struct {
	Enabled         bool    `yaml:"enabled" json:"enabled"`
	MinMach         float64 `yaml:"min_mach" json:"min_mach"`
	MaxMach         float64 `yaml:"max_mach" json:"max_mach"`
	SeaLevelThrust  float64 `yaml:"sea_level_thrust_n" json:"sea_level_thrust_n"`
	SpecificImpulse float64 `yaml:"isp_s" json:"isp_s"`
}

// Output is the propulsion result for one tick.
type Output struct {
	Force    float64 // N along the body axis
	MassFlow float64 // kg/s consumed
	Status   Status
}

// Scale returns o with force and mass flow multiplied by f.
func (o Output) Scale(f float64) Output {
	o.Force *= f
	o.MassFlow *= f
	return o
}

// Model combines booster and ramjet. It is a pure function of its inputs.
type Model struct {
	Booster    Booster
	Ramjet     Ramjet
	Atmosphere aero.Atmosphere
}

// Thrust returns propulsive force for the current flight condition. Boost and
// ramjet sustain never overlap: the booster owns Launch/Boost and the ramjet
// owns RamjetCruise/TerminalGuided. Below MinMach the ramjet cannot sustain
// combustion and produces nothing at any altitude; above MaxMach it is shut
// down.
func (m Model) Thrust(mach, altitude float64, phase flight.Phase, elapsed, fuel float64) Output {
	switch phase {
	case flight.Launch, flight.Boost:
		if m.Booster.Thrust <= 0 || elapsed >= m.Booster.Duration {
			return Output{Status: StatusOff}
		}
		out := Output{Force: m.Booster.Thrust, Status: StatusBoost}
		if m.Booster.Duration > 0 {
			out.MassFlow = m.Booster.PropellantMass / m.Booster.Duration
		}
		return out
	case flight.RamjetCruise, flight.TerminalGuided:
		return m.sustain(mach, altitude, fuel)
	default:
		return Output{Status: StatusOff}
	}
}

func (m Model) sustain(mach, altitude, fuel float64) Output {
	r := m.Ramjet
	switch {
	case !r.Enabled:
		return Output{Status: StatusOff}
	case mach < r.MinMach:
		return Output{Status: StatusFlameout}
	case mach > r.MaxMach:
		return Output{Status: StatusOverspeed}
	case fuel <= 0:
		return Output{Status: StatusFuelExhausted}
	}
	force := r.SeaLevelThrust * m.Atmosphere.DensityRatio(altitude)
	out := Output{Force: force, Status: StatusSustain}
	if r.SpecificImpulse > 0 {
		out.MassFlow = force / (r.SpecificImpulse * StandardGravity)
	}
	return out
}
