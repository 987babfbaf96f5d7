package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"ramjet-sim/internal/scenario"
)

func TestValues(t *testing.T) {
	got := Values(600, 1000, 5)
	want := []float64{600, 700, 800, 900, 1000}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if v := Values(3, 9, 1); len(v) != 1 || v[0] != 3 {
		t.Fatalf("single value: %v", v)
	}
	if v := Values(3, 9, 0); v != nil {
		t.Fatalf("zero values: %v", v)
	}
}

func TestSweepMatchesSequentialRuns(t *testing.T) {
	tbl := loadTable(t)
	base := preset(t, scenario.PresetBallistic)
	values := []float64{600, 700, 800, 900}

	res, err := Sweep(context.Background(), base, tbl, scenario.ParamLaunchSpeed, values, 3)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Parameter != scenario.ParamLaunchSpeed || len(res.Points) != len(values) {
		t.Fatalf("unexpected result %+v", res)
	}
	prev := 0.0
	for i, p := range res.Points {
		if p.Value != values[i] || p.Err != nil {
			t.Fatalf("point %d: %+v", i, p)
		}
		if p.Result.Scenario != fmt.Sprintf("ballistic/launch_speed=%g", values[i]) {
			t.Fatalf("point %d scenario %q", i, p.Result.Scenario)
		}
		if p.Result.ImpactPoint.X <= prev {
			t.Fatalf("range should grow with launch speed: %v after %v", p.Result.ImpactPoint.X, prev)
		}
		prev = p.Result.ImpactPoint.X

		s, _ := base.With(scenario.ParamLaunchSpeed, values[i])
		solo := run(t, s, tbl)
		if solo.MissDistance != p.Result.MissDistance || solo.Steps != p.Result.Steps {
			t.Fatalf("concurrent run %d differs from sequential run", i)
		}
	}

	st := res.Stats
	if st.Runs != 4 || st.Aborted != 0 {
		t.Fatalf("stats %+v", st)
	}
	if st.BestValue != 900 || st.MinMiss != res.Points[3].Result.MissDistance {
		t.Fatalf("best value %v min miss %v", st.BestValue, st.MinMiss)
	}
	if !(st.StdDevMiss > 0) || !(st.MeanMiss > st.MinMiss) {
		t.Fatalf("spread stats %+v", st)
	}
}

func TestSweepRejectsBadInput(t *testing.T) {
	tbl := loadTable(t)
	base := preset(t, scenario.PresetRamjet)
	if _, err := Sweep(context.Background(), base, nil, scenario.ParamNavGain, []float64{3}, 1); !errors.Is(err, ErrNoTable) {
		t.Fatalf("expected ErrNoTable, got %v", err)
	}
	if _, err := Sweep(context.Background(), base, tbl, "wingspan", []float64{1}, 1); err == nil {
		t.Fatal("expected unknown parameter error")
	}
	if _, err := Sweep(context.Background(), base, tbl, scenario.ParamNavGain, []float64{4, 20}, 1); !errors.Is(err, scenario.ErrInvalidScenario) {
		t.Fatalf("expected invalid scenario, got %v", err)
	}
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sweep(ctx, preset(t, scenario.PresetBallistic), loadTable(t), scenario.ParamLaunchSpeed, []float64{600, 700}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSummarizeSkipsAborted(t *testing.T) {
	points := []SweepPoint{
		{Value: 1, Result: &Result{MissDistance: 10, FlightTime: 20}},
		{Value: 2, Result: &Result{MissDistance: 2, Hit: true, FlightTime: 21}},
		{Value: 3, Result: &Result{}, Err: errors.New("non-physical")},
	}
	st := summarize(points)
	if st.Runs != 3 || st.Aborted != 1 || st.Hits != 1 {
		t.Fatalf("counts %+v", st)
	}
	if st.MeanMiss != 6 || st.MinMiss != 2 || st.BestValue != 2 || st.MaxFlightTime != 21 {
		t.Fatalf("stats %+v", st)
	}

	rows := (&SweepResult{Parameter: "nav_gain", Points: points}).SummaryRows(time.Time{})
	if len(rows) != 3 || rows[2].Error != "non-physical" || rows[1].ParameterValue != 2 || rows[0].Parameter != "nav_gain" {
		t.Fatalf("summary rows %+v", rows)
	}

	empty := summarize([]SweepPoint{{Err: errors.New("x")}})
	if !math.IsNaN(empty.MeanMiss) || !math.IsNaN(empty.BestValue) {
		t.Fatalf("all-aborted stats should be NaN: %+v", empty)
	}
}
