package dynamics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"ramjet-sim/internal/aero"
	"ramjet-sim/internal/flight"
	"ramjet-sim/internal/propulsion"
)

func testEnv() Environment {
	return Environment{Gravity: 9.81, RefArea: 0.0189, Atmosphere: aero.StandardAtmosphere()}
}

func TestStepFreeFallMatchesExplicitUpdate(t *testing.T) {
	s := flight.State{Position: r2.Vec{Y: 1000}, Speed: 100, Gamma: 0, Mass: 10, Time: 0}
	f := Forces{Gravity: 10}
	next, err := Step(s, f, 0.01)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	// horizontal flight: no tangential gravity, full normal gravity
	if next.Speed != 100 {
		t.Fatalf("speed changed: %v", next.Speed)
	}
	if math.Abs(next.Gamma-(-10.0/100*0.01)) > 1e-15 {
		t.Fatalf("gamma %v", next.Gamma)
	}
	if math.Abs(next.Position.X-1) > 1e-12 || next.Position.Y != 1000 {
		t.Fatalf("position %+v", next.Position)
	}
	if next.Time != 0.01 {
		t.Fatalf("time %v", next.Time)
	}
}

func TestStepUsesNewSpeedForPosition(t *testing.T) {
	s := flight.State{Speed: 100, Gamma: 0, Mass: 1, Position: r2.Vec{Y: 10}}
	f := Forces{Thrust: 50}
	next, err := Step(s, f, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if next.Speed != 105 {
		t.Fatalf("speed %v", next.Speed)
	}
	if math.Abs(next.Position.X-10.5) > 1e-12 {
		t.Fatalf("x %v, want 10.5", next.Position.X)
	}
}

func TestStepFuelBurnClamped(t *testing.T) {
	s := flight.State{Speed: 600, Mass: 40, Fuel: 0.001, Position: r2.Vec{Y: 2000}}
	f := Forces{MassFlow: 0.2, FuelFlow: 0.2}
	next, err := Step(s, f, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if next.Fuel != 0 {
		t.Fatalf("fuel %v", next.Fuel)
	}
	if math.Abs(next.Mass-(40-0.001)) > 1e-12 {
		t.Fatalf("mass %v", next.Mass)
	}

	// booster propellant is not taken from the ramjet reservoir
	boost := Forces{MassFlow: 1}
	next, err = Step(flight.State{Speed: 600, Mass: 40, Fuel: 5, Position: r2.Vec{Y: 2000}}, boost, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if next.Fuel != 5 || math.Abs(next.Mass-39.99) > 1e-12 {
		t.Fatalf("fuel %v mass %v", next.Fuel, next.Mass)
	}
}

func TestStepNonPhysical(t *testing.T) {
	cases := []struct {
		name  string
		s     flight.State
		f     Forces
		field string
	}{
		{"nan input", flight.State{Speed: math.NaN(), Mass: 1}, Forces{}, "speed"},
		{"negative mass", flight.State{Speed: 10, Mass: 0.005}, Forces{MassFlow: 1}, "mass"},
		{"velocity reversal", flight.State{Speed: 1, Mass: 1}, Forces{Drag: 1000}, "speed"},
		{"inf thrust", flight.State{Speed: 1, Mass: 1}, Forces{Thrust: math.Inf(1)}, "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Step(tc.s, tc.f, 0.01)
			if !errors.Is(err, ErrNonPhysicalState) {
				t.Fatalf("expected ErrNonPhysicalState, got %v", err)
			}
			var se *StateError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StateError, got %T", err)
			}
			if se.Field != tc.field {
				t.Fatalf("field %q, want %q", se.Field, tc.field)
			}
		})
	}
}

func TestComputeForces(t *testing.T) {
	env := testEnv()
	s := flight.State{Speed: 680, Mass: 43.5, Position: r2.Vec{Y: 0}}
	q := 0.5 * 1.225 * 680 * 680
	f := ComputeForces(env, s, 0.3, 0.1, propulsion.Output{Force: 1600, MassFlow: 0.16, Status: propulsion.StatusSustain})
	if math.Abs(f.Drag-q*env.RefArea*0.3) > 1e-9 {
		t.Fatalf("drag %v", f.Drag)
	}
	if math.Abs(f.Lift-q*env.RefArea*0.1) > 1e-9 {
		t.Fatalf("lift %v", f.Lift)
	}
	if f.FuelFlow != 0.16 || f.Thrust != 1600 {
		t.Fatalf("unexpected %+v", f)
	}
	boost := ComputeForces(env, s, 0.3, 0, propulsion.Output{Force: 3000, MassFlow: 1, Status: propulsion.StatusBoost})
	if boost.FuelFlow != 0 || boost.MassFlow != 1 {
		t.Fatalf("booster flow %+v", boost)
	}
}

func TestValidateTimeStep(t *testing.T) {
	for _, dt := range []float64{0.001, DefaultTimeStep, MaxTimeStep} {
		if err := ValidateTimeStep(dt); err != nil {
			t.Errorf("dt=%v: %v", dt, err)
		}
	}
	for _, dt := range []float64{0, -0.01, 0.2, math.NaN()} {
		if err := ValidateTimeStep(dt); !errors.Is(err, ErrInvalidTimeStep) {
			t.Errorf("dt=%v accepted", dt)
		}
	}
}

func TestGroundCrossing(t *testing.T) {
	prev := flight.State{Position: r2.Vec{X: 100, Y: 2}}
	next := flight.State{Position: r2.Vec{X: 104, Y: -6}}
	p := GroundCrossing(prev, next)
	if math.Abs(p.X-101) > 1e-12 || math.Abs(p.Y) > 1e-12 {
		t.Fatalf("crossing %+v", p)
	}
	if got := GroundCrossing(next, next); got != next.Position {
		t.Fatalf("non-crossing segment returned %+v", got)
	}
}

func TestVacuumRange(t *testing.T) {
	got := VacuumRange(300, math.Pi/4, 0, 9.81)
	want := 300 * 300 / 9.81
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("range %v want %v", got, want)
	}
	if VacuumRange(300, 0, 2000, 9.81) <= 0 {
		t.Fatal("level release from height must travel forward")
	}
}
