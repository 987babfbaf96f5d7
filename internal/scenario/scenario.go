// Package scenario holds the parameter sets that configure one simulation run.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"ramjet-sim/internal/aero"
	"ramjet-sim/internal/dynamics"
	"ramjet-sim/internal/flight"
	"ramjet-sim/internal/guidance"
	"ramjet-sim/internal/propulsion"
)

// ErrInvalidScenario is wrapped by every validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is the complete, immutable input of one run.
type Scenario struct {
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Launch      Launch             `yaml:"launch" json:"launch"`
	Airframe    Airframe           `yaml:"airframe" json:"airframe"`
	Target      TargetSpec         `yaml:"target" json:"target"`
	Booster     propulsion.Booster `yaml:"booster" json:"booster"`
	Ramjet      propulsion.Ramjet  `yaml:"ramjet" json:"ramjet"`
	Guidance    Guidance           `yaml:"guidance" json:"guidance"`
	Sim         Timing             `yaml:"sim" json:"sim"`
	Atmosphere  aero.Atmosphere    `yaml:"atmosphere" json:"atmosphere"`
}

// Launch sets the initial conditions at release.
type Launch struct {
	Downrange float64 `yaml:"downrange_m" json:"downrange_m"`
	Altitude  float64 `yaml:"altitude_m" json:"altitude_m"`
	Speed     float64 `yaml:"speed_mps" json:"speed_mps"`
	AngleDeg  float64 `yaml:"angle_deg" json:"angle_deg"`
}

// Airframe is the projectile body. Mass includes ramjet fuel and booster propellant.
type Airframe struct {
	Mass     float64 `yaml:"mass_kg" json:"mass_kg"`
	Diameter float64 `yaml:"diameter_m" json:"diameter_m"`
	Fuel     float64 `yaml:"fuel_kg" json:"fuel_kg"`
}

// RefArea is the frontal reference area.
func (a Airframe) RefArea() float64 {
	return math.Pi * a.Diameter * a.Diameter / 4
}

// DryMass is the mass left after all propellant is spent.
func (a Airframe) DryMass(b propulsion.Booster) float64 {
	return a.Mass - a.Fuel - b.PropellantMass
}

// TargetSpec places the target. A non-zero velocity moves it at constant speed.
type TargetSpec struct {
	Range     float64 `yaml:"range_m" json:"range_m"`
	Altitude  float64 `yaml:"altitude_m" json:"altitude_m"`
	VelocityX float64 `yaml:"velocity_x_mps,omitempty" json:"velocity_x_mps,omitempty"`
	VelocityY float64 `yaml:"velocity_y_mps,omitempty" json:"velocity_y_mps,omitempty"`
}

// Guidance configures the terminal seeker and its activation.
type Guidance struct {
	Enabled            bool    `yaml:"enabled" json:"enabled"`
	NavGain            float64 `yaml:"nav_gain" json:"nav_gain"`
	MaxAngleOfAttack   float64 `yaml:"max_aoa_deg" json:"max_aoa_deg"`
	ActivationRange    float64 `yaml:"activation_range_m" json:"activation_range_m"`
	ActivationAltitude float64 `yaml:"activation_altitude_m" json:"activation_altitude_m"`
	HitTolerance       float64 `yaml:"hit_tolerance_m" json:"hit_tolerance_m"`
	GravityBias        bool    `yaml:"gravity_bias" json:"gravity_bias"`
}

// Timing holds integration and termination settings.
type Timing struct {
	TimeStep      float64 `yaml:"dt_s" json:"dt_s"`
	MaxTime       float64 `yaml:"max_time_s" json:"max_time_s"`
	FlameoutGrace float64 `yaml:"flameout_grace_s" json:"flameout_grace_s"`
	Gravity       float64 `yaml:"gravity_mps2" json:"gravity_mps2"`
}

// MaxStepLimit caps MaxTime/TimeStep so the step bound always fits an int
// and a run stays bounded in memory.
const MaxStepLimit = 10_000_000

// MaxSteps is the integration step bound implied by MaxTime, never more
// than MaxStepLimit.
func (t Timing) MaxSteps() int {
	n := math.Ceil(t.MaxTime/t.TimeStep - 1e-9)
	if math.IsNaN(n) || n > MaxStepLimit {
		return MaxStepLimit
	}
	return int(n)
}

// Validate reports every configuration error found. All errors wrap ErrInvalidScenario.
func (s Scenario) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidScenario}, args...)...))
	}
	if err := dynamics.ValidateTimeStep(s.Sim.TimeStep); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidScenario, err))
	}
	if !(s.Sim.MaxTime > 0) || math.IsInf(s.Sim.MaxTime, 0) {
		bad("max_time_s must be positive and finite, got %g", s.Sim.MaxTime)
	} else if s.Sim.TimeStep > 0 && s.Sim.MaxTime/s.Sim.TimeStep > MaxStepLimit {
		bad("max_time_s %g at dt %g exceeds %d steps", s.Sim.MaxTime, s.Sim.TimeStep, MaxStepLimit)
	}
	if !(s.Sim.Gravity > 0) {
		bad("gravity_mps2 must be positive, got %g", s.Sim.Gravity)
	}
	if s.Sim.FlameoutGrace < 0 {
		bad("flameout_grace_s must not be negative")
	}
	if !(s.Launch.Speed > 0) {
		bad("launch speed must be positive, got %g", s.Launch.Speed)
	}
	if s.Launch.Altitude < 0 {
		bad("launch altitude must not be below ground")
	}
	if math.Abs(s.Launch.AngleDeg) >= 90 {
		bad("launch angle must be within (-90, 90) degrees, got %g", s.Launch.AngleDeg)
	}
	if !(s.Airframe.Mass > 0) {
		bad("mass_kg must be positive, got %g", s.Airframe.Mass)
	}
	if !(s.Airframe.Diameter > 0) {
		bad("diameter_m must be positive, got %g", s.Airframe.Diameter)
	}
	if s.Airframe.Fuel < 0 || s.Booster.PropellantMass < 0 {
		bad("fuel and propellant masses must not be negative")
	}
	if s.Airframe.Mass > 0 && !(s.Airframe.DryMass(s.Booster) > 0) {
		bad("fuel %g kg plus propellant %g kg leaves no dry mass out of %g kg",
			s.Airframe.Fuel, s.Booster.PropellantMass, s.Airframe.Mass)
	}
	if s.Booster.Thrust < 0 || s.Booster.Duration < 0 {
		bad("booster thrust and duration must not be negative")
	}
	if s.Ramjet.Enabled {
		if !(s.Ramjet.MinMach > 0) || !(s.Ramjet.MaxMach > s.Ramjet.MinMach) {
			bad("ramjet Mach window [%g, %g] must be positive and ordered", s.Ramjet.MinMach, s.Ramjet.MaxMach)
		}
		if s.Ramjet.SeaLevelThrust < 0 || !(s.Ramjet.SpecificImpulse > 0) {
			bad("ramjet thrust must not be negative and isp must be positive")
		}
	}
	if s.Guidance.NavGain < 0 || s.Guidance.NavGain > 10 {
		bad("nav_gain must be within [0, 10], got %g", s.Guidance.NavGain)
	}
	if s.Guidance.MaxAngleOfAttack < 0 || s.Guidance.MaxAngleOfAttack >= 90 {
		bad("max_aoa_deg must be within [0, 90), got %g", s.Guidance.MaxAngleOfAttack)
	}
	if s.Guidance.HitTolerance < 0 {
		bad("hit_tolerance_m must not be negative")
	}
	if s.Target.Altitude < 0 {
		bad("target altitude must not be below ground")
	}
	a := s.Atmosphere
	if !(a.SeaLevelDensity > 0) || !(a.ScaleHeight > 0) || !(a.SpeedOfSound > 0) {
		bad("atmosphere constants must be positive")
	}
	return errors.Join(errs...)
}

// InitialState builds the launch state.
func (s Scenario) InitialState() flight.State {
	return flight.State{
		Position: r2.Vec{X: s.Launch.Downrange, Y: s.Launch.Altitude},
		Speed:    s.Launch.Speed,
		Gamma:    s.Launch.AngleDeg * math.Pi / 180,
		Mass:     s.Airframe.Mass,
		Fuel:     s.Airframe.Fuel,
	}
}

// TargetState returns the target as a flight.Target.
func (s Scenario) TargetState() flight.Target {
	return flight.Target{
		Position: r2.Vec{X: s.Target.Range, Y: s.Target.Altitude},
		Velocity: r2.Vec{X: s.Target.VelocityX, Y: s.Target.VelocityY},
	}
}

// Environment returns the physical setting for the integrator.
func (s Scenario) Environment() dynamics.Environment {
	return dynamics.Environment{Gravity: s.Sim.Gravity, RefArea: s.Airframe.RefArea(), Atmosphere: s.Atmosphere}
}

// Propulsion returns the thrust model.
func (s Scenario) Propulsion() propulsion.Model {
	return propulsion.Model{Booster: s.Booster, Ramjet: s.Ramjet, Atmosphere: s.Atmosphere}
}

// Law returns the guidance law.
func (s Scenario) Law() guidance.Law {
	return guidance.Law{Gain: s.Guidance.NavGain, MaxAngleOfAttack: s.Guidance.MaxAngleOfAttack, GravityBias: s.Guidance.GravityBias}
}

// Parameters that With can substitute.
const (
	ParamLaunchSpeed     = "launch_speed"
	ParamLaunchAngle     = "launch_angle_deg"
	ParamNavGain         = "nav_gain"
	ParamTargetRange     = "target_range"
	ParamActivationRange = "activation_range"
	ParamBoostDuration   = "boost_duration"
)

var setters = map[string]func(*Scenario, float64){
	ParamLaunchSpeed:     func(s *Scenario, v float64) { s.Launch.Speed = v },
	ParamLaunchAngle:     func(s *Scenario, v float64) { s.Launch.AngleDeg = v },
	ParamNavGain:         func(s *Scenario, v float64) { s.Guidance.NavGain = v },
	ParamTargetRange:     func(s *Scenario, v float64) { s.Target.Range = v },
	ParamActivationRange: func(s *Scenario, v float64) { s.Guidance.ActivationRange = v },
	ParamBoostDuration:   func(s *Scenario, v float64) { s.Booster.Duration = v },
}

// Parameters lists the names accepted by With.
func Parameters() []string {
	names := make([]string, 0, len(setters))
	for n := range setters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of s with one parameter replaced.
func (s Scenario) With(param string, value float64) (Scenario, error) {
	set, ok := setters[param]
	if !ok {
		return s, fmt.Errorf("%w: unknown sweep parameter %q", ErrInvalidScenario, param)
	}
	set(&s, value)
	return s, nil
}

// file is the on-disk form: a base preset plus overrides.
type file struct {
	Base string `yaml:"base"`
}

// Load reads a YAML scenario. Fields that are not set inherit from the preset
// named by the top-level "base" key, "ramjet" when absent.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML scenario bytes, see Load.
func Parse(b []byte) (*Scenario, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if f.Base == "" {
		f.Base = PresetRamjet
	}
	s, ok := Preset(f.Base)
	if !ok {
		return nil, fmt.Errorf("%w: unknown base preset %q", ErrInvalidScenario, f.Base)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &s, nil
}

// Override applies a YAML mapping node on top of s.
func (s Scenario) Override(node *yaml.Node) (Scenario, error) {
	if node == nil || node.Kind == 0 {
		return s, nil
	}
	if err := node.Decode(&s); err != nil {
		return s, fmt.Errorf("decode scenario overrides: %w", err)
	}
	return s, nil
}
