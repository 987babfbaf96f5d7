package sim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ramjet-sim/internal/aero"
	"ramjet-sim/internal/logging"
	"ramjet-sim/internal/scenario"
	"ramjet-sim/internal/telemetry"
)

// SweepPoint is one run of a sweep. Err is set when the run aborted.
type SweepPoint struct {
	Value  float64
	Result *Result
	Err    error
}

// SweepStats summarises the completed runs of a sweep.
type SweepStats struct {
	Runs          int
	Aborted       int
	Hits          int
	MeanMiss      float64
	StdDevMiss    float64
	MinMiss       float64
	BestValue     float64 // parameter value with the smallest miss distance
	MaxFlightTime float64
}

// SweepResult holds the points in input order.
type SweepResult struct {
	Parameter string
	Points    []SweepPoint
	Stats     SweepStats
}

// Values returns n evenly spaced values in [from, to].
func Values(from, to float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{from}
	}
	return floats.Span(make([]float64, n), from, to)
}

// Sweep runs base once per value of param, at most workers runs at a time.
// Runs share table read-only and own everything else. Output writers passed
// in opts must be safe for concurrent use. A run that aborts on a numerical
// defect is recorded in its point and does not stop the sweep; a cancelled
// context does.
func Sweep(ctx context.Context, base scenario.Scenario, table *aero.Table, param string, values []float64, workers int, opts ...Option) (*SweepResult, error) {
	if table == nil {
		return nil, ErrNoTable
	}
	scns := make([]scenario.Scenario, len(values))
	for i, v := range values {
		s, err := base.With(param, v)
		if err != nil {
			return nil, err
		}
		s.Name = fmt.Sprintf("%s/%s=%g", base.Name, param, v)
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", param, v, err)
		}
		scns[i] = s
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	log := logging.FromContext(ctx)
	log.Info("sweep started", "scenario", base.Name, "parameter", param, "runs", len(values), "workers", workers)

	points := make([]SweepPoint, len(values))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range scns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			eng, err := NewEngine(scns[i], table, opts...)
			if err != nil {
				return err
			}
			res, err := eng.Run(gctx)
			points[i] = SweepPoint{Value: values[i], Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &SweepResult{Parameter: param, Points: points, Stats: summarize(points)}
	log.Info("sweep complete",
		"runs", out.Stats.Runs,
		"hits", out.Stats.Hits,
		"aborted", out.Stats.Aborted,
		"mean_miss_m", out.Stats.MeanMiss,
		"best_value", out.Stats.BestValue,
	)
	return out, nil
}

func summarize(points []SweepPoint) SweepStats {
	st := SweepStats{Runs: len(points), MinMiss: math.NaN(), BestValue: math.NaN(), MeanMiss: math.NaN(), StdDevMiss: math.NaN()}
	var miss, vals []float64
	for _, p := range points {
		if p.Err != nil || p.Result == nil {
			st.Aborted++
			continue
		}
		if p.Result.Hit {
			st.Hits++
		}
		miss = append(miss, p.Result.MissDistance)
		vals = append(vals, p.Value)
		st.MaxFlightTime = math.Max(st.MaxFlightTime, p.Result.FlightTime)
	}
	switch len(miss) {
	case 0:
		return st
	case 1:
		st.MeanMiss, st.StdDevMiss = miss[0], 0
	default:
		st.MeanMiss, st.StdDevMiss = stat.MeanStdDev(miss, nil)
	}
	best := floats.MinIdx(miss)
	st.MinMiss, st.BestValue = miss[best], vals[best]
	return st
}

// SummaryRows returns one summary row per point, tagged with the swept parameter.
func (r *SweepResult) SummaryRows(start time.Time) []telemetry.SummaryRow {
	rows := make([]telemetry.SummaryRow, 0, len(r.Points))
	for _, p := range r.Points {
		var row telemetry.SummaryRow
		if p.Result != nil {
			row = p.Result.Summary(start)
		}
		row.Parameter = r.Parameter
		row.ParameterValue = p.Value
		if p.Err != nil {
			row.Error = p.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}
