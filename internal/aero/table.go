// Mach-indexed aerodynamic coefficient table
package aero

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

var (
	// ErrEmptyTable is returned when a table has no rows.
	ErrEmptyTable = errors.New("aero: table is empty")
	// ErrMalformedTable is returned for non-monotonic Mach columns or invalid values.
	ErrMalformedTable = errors.New("aero: malformed table")
)

// Entry is one sample point of the coefficient table.
// Cl is the lift-curve slope per radian of angle of attack.
type Entry struct {
	Mach float64 `json:"mach"`
	Cd   float64 `json:"cd"`
	Cl   float64 `json:"cl"`
}

// Coefficients holds interpolated drag and lift-slope values.
type Coefficients struct {
	Cd float64
	Cl float64
}

// Table interpolates coefficients by Mach number. It is immutable after
// construction and safe for concurrent use.
type Table struct {
	entries []Entry
	cd      interp.PiecewiseLinear
	cl      interp.PiecewiseLinear
}

// NewTable validates entries and builds a lookup table.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}
	for i, e := range entries {
		if !finite(e.Mach) || !finite(e.Cd) || !finite(e.Cl) {
			return nil, fmt.Errorf("%w: row %d has a non-finite value", ErrMalformedTable, i+1)
		}
		if e.Mach < 0 {
			return nil, fmt.Errorf("%w: row %d has negative mach %g", ErrMalformedTable, i+1, e.Mach)
		}
		if e.Cd < 0 {
			return nil, fmt.Errorf("%w: row %d has negative cd %g", ErrMalformedTable, i+1, e.Cd)
		}
		if i > 0 && e.Mach <= entries[i-1].Mach {
			return nil, fmt.Errorf("%w: mach column not strictly increasing at row %d (%g after %g)",
				ErrMalformedTable, i+1, e.Mach, entries[i-1].Mach)
		}
	}

	t := &Table{entries: make([]Entry, len(entries))}
	copy(t.entries, entries)
	if len(entries) == 1 {
		return t, nil
	}

	xs := make([]float64, len(entries))
	cds := make([]float64, len(entries))
	cls := make([]float64, len(entries))
	for i, e := range entries {
		xs[i], cds[i], cls[i] = e.Mach, e.Cd, e.Cl
	}
	if err := t.cd.Fit(xs, cds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	if err := t.cl.Fit(xs, cls); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	return t, nil
}

// Lookup returns coefficients at mach. Values below the first or above the
// last tabulated Mach are clamped to that endpoint's coefficients; the table
// never extrapolates.
func (t *Table) Lookup(mach float64) Coefficients {
	first, last := t.entries[0], t.entries[len(t.entries)-1]
	switch {
	case math.IsNaN(mach), mach <= first.Mach:
		return Coefficients{Cd: first.Cd, Cl: first.Cl}
	case mach >= last.Mach:
		return Coefficients{Cd: last.Cd, Cl: last.Cl}
	}
	return Coefficients{Cd: t.cd.Predict(mach), Cl: t.cl.Predict(mach)}
}

// Range returns the smallest and largest tabulated Mach numbers.
func (t *Table) Range() (min, max float64) {
	return t.entries[0].Mach, t.entries[len(t.entries)-1].Mach
}

// Entries returns a copy of the table rows.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.entries) }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
