// Flight state value types shared by the dynamics, guidance and driver packages
package flight

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// State is the projectile state at one instant. Position is (downrange, altitude)
// in metres; orientation is reduced to the flight-path angle Gamma (radians,
// positive nose-up) in the vertical plane.
type State struct {
	Position r2.Vec
	Speed    float64 // m/s, along the flight path
	Gamma    float64 // rad
	Mass     float64 // kg, including remaining fuel
	Fuel     float64 // kg of ramjet fuel remaining
	Time     float64 // s since launch
}

// Velocity returns the inertial velocity vector.
func (s State) Velocity() r2.Vec {
	return r2.Vec{X: s.Speed * math.Cos(s.Gamma), Y: s.Speed * math.Sin(s.Gamma)}
}

// Downrange returns the horizontal distance from the launch point.
func (s State) Downrange() float64 { return s.Position.X }

// Altitude returns height above ground level.
func (s State) Altitude() float64 { return s.Position.Y }

// Target is the intercept point. Velocity is a scenario parameter for a
// constant-velocity target; the zero value is a stationary target.
type Target struct {
	Position r2.Vec
	Velocity r2.Vec
}

// At returns the target position at time t.
func (t Target) At(time float64) r2.Vec {
	return r2.Add(t.Position, r2.Scale(time, t.Velocity))
}

// Command is the guidance output for a single tick.
type Command struct {
	NormalAccel float64 // m/s^2 of lift acceleration, positive rotates the velocity nose-up
	Saturated   bool    // the raw demand exceeded the airframe limit
	Demand      float64 // unsaturated demand
}
