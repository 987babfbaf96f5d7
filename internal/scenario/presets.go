package scenario

import (
	"sort"

	"ramjet-sim/internal/aero"
	"ramjet-sim/internal/guidance"
	"ramjet-sim/internal/propulsion"
)

// Preset names.
const (
	PresetRamjet        = "ramjet"
	PresetBallistic     = "ballistic"
	PresetBallisticFast = "ballistic-fast"
)

// BuiltIn returns the predefined configurations of the single engine.
func BuiltIn() map[string]Scenario {
	ramjet := Scenario{
		Name:        PresetRamjet,
		Description: "Mach 2 release at 2 km, booster then ramjet sustain, PN terminal guidance onto a 15 km ground target.",
		Launch:      Launch{Altitude: 2000, Speed: 680},
		Airframe:    Airframe{Mass: 43.5, Diameter: 0.155, Fuel: 5},
		Target:      TargetSpec{Range: 15000},
		Booster:     propulsion.Booster{Thrust: 3000, Duration: 1.5, PropellantMass: 1.5},
		Ramjet: propulsion.Ramjet{
			Enabled:         true,
			MinMach:         1.5,
			MaxMach:         4.0,
			SeaLevelThrust:  1600,
			SpecificImpulse: 1000,
		},
		Guidance: Guidance{
			Enabled:          true,
			NavGain:          4,
			MaxAngleOfAttack: guidance.DefaultMaxAngleOfAttack,
			ActivationRange:  9000,
			HitTolerance:     5,
			GravityBias:      true,
		},
		Sim:        Timing{TimeStep: 0.01, MaxTime: 100, FlameoutGrace: 1, Gravity: 9.81},
		Atmosphere: aero.StandardAtmosphere(),
	}

	ballistic := ramjet
	ballistic.Name = PresetBallistic
	ballistic.Description = "Same shell fired unpowered and unguided from the same release point."
	ballistic.Booster = propulsion.Booster{}
	ballistic.Ramjet = propulsion.Ramjet{}
	ballistic.Airframe.Fuel = 0
	ballistic.Guidance.Enabled = false

	fast := ballistic
	fast.Name = PresetBallisticFast
	fast.Description = "Unpowered shell with a higher muzzle velocity, the trade-study variant."
	fast.Launch.Speed = 900

	return map[string]Scenario{
		ramjet.Name:    ramjet,
		ballistic.Name: ballistic,
		fast.Name:      fast,
	}
}

// Preset returns a copy of the named built-in.
func Preset(name string) (Scenario, bool) {
	s, ok := BuiltIn()[name]
	return s, ok
}

// Names lists the built-in presets in order.
func Names() []string {
	b := BuiltIn()
	names := make([]string, 0, len(b))
	for n := range b {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
