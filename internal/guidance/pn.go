// Package guidance implements proportional navigation and the airframe
// limits that bound it.
package guidance

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"ramjet-sim/internal/flight"
)

// DefaultMaxAngleOfAttack is the structural angle-of-attack limit in degrees.
const DefaultMaxAngleOfAttack = 10.0

// degenerateRange is the line-of-sight length below which the LOS rate is undefined.
const degenerateRange = 1e-9

// Law is a proportional navigation law.
type Law struct {
	Gain             float64 // navigation constant N
	MaxAngleOfAttack float64 // degrees
	GravityBias      bool    // add g*cos(gamma) so the net normal acceleration equals the PN demand
}

// Guide computes the lateral acceleration command a = N * Vc * LOS-rate.
// The line-of-sight rate is computed analytically from relative position and
// velocity, never by differencing successive angles.
func (l Law) Guide(own flight.State, target, targetVel r2.Vec, gravity, maxAccel float64) flight.Command {
	bias := l.bias(own, gravity)
	rel := r2.Sub(target, own.Position)
	rng := r2.Norm(rel)
	if rng < degenerateRange {
		return saturate(bias, maxAccel)
	}
	relVel := r2.Sub(targetVel, own.Velocity())
	losRate := r2.Cross(rel, relVel) / (rng * rng)
	closing := -r2.Dot(rel, relVel) / rng
	return saturate(l.Gain*closing*losRate+bias, maxAccel)
}

// LOSRate returns the line-of-sight angular rate in rad/s and the closing velocity.
func LOSRate(own flight.State, target, targetVel r2.Vec) (rate, closing float64) {
	rel := r2.Sub(target, own.Position)
	rng := r2.Norm(rel)
	if rng < degenerateRange {
		return 0, 0
	}
	relVel := r2.Sub(targetVel, own.Velocity())
	return r2.Cross(rel, relVel) / (rng * rng), -r2.Dot(rel, relVel) / rng
}

func (l Law) bias(own flight.State, gravity float64) float64 {
	if !l.GravityBias {
		return 0
	}
	return gravity * math.Cos(own.Gamma)
}

// HoldCommand is the open-loop cruise command. It equals Guide with N = 0.
func (l Law) HoldCommand(own flight.State, gravity, maxAccel float64) flight.Command {
	return saturate(l.bias(own, gravity), maxAccel)
}

func saturate(demand, limit float64) flight.Command {
	cmd := flight.Command{NormalAccel: demand, Demand: demand}
	if limit < 0 {
		limit = 0
	}
	if demand > limit {
		cmd.NormalAccel, cmd.Saturated = limit, true
	} else if demand < -limit {
		cmd.NormalAccel, cmd.Saturated = -limit, true
	}
	return cmd
}

// MaxLiftAccel is the lateral acceleration available at the structural
// angle-of-attack limit: q*S*ClAlpha*alphaMax/m.
func MaxLiftAccel(q, area, clAlpha, alphaMaxDeg, mass float64) float64 {
	if mass <= 0 || clAlpha <= 0 {
		return 0
	}
	return q * area * clAlpha * alphaMaxDeg * math.Pi / 180 / mass
}

// LiftCoefficient maps an accepted lateral acceleration back to the lift
// coefficient the integrator flies.
func LiftCoefficient(accel, q, area, mass float64) float64 {
	if q*area <= 0 {
		return 0
	}
	return accel * mass / (q * area)
}
