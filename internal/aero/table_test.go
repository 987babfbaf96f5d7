package aero

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable([]Entry{
		{Mach: 0.5, Cd: 0.10, Cl: 2.0},
		{Mach: 1.0, Cd: 0.40, Cl: 3.0},
		{Mach: 2.0, Cd: 0.30, Cl: 4.0},
		{Mach: 3.0, Cd: 0.25, Cl: 3.5},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func TestLookupInterpolatesBetweenRows(t *testing.T) {
	tbl := testTable(t)
	rows := tbl.Entries()
	for i := 0; i < len(rows)-1; i++ {
		lo, hi := rows[i], rows[i+1]
		for _, frac := range []float64{0, 0.1, 0.25, 0.5, 0.9} {
			mach := lo.Mach + frac*(hi.Mach-lo.Mach)
			got := tbl.Lookup(mach)
			wantCd := (1-frac)*lo.Cd + frac*hi.Cd
			wantCl := (1-frac)*lo.Cl + frac*hi.Cl
			if math.Abs(got.Cd-wantCd) > 1e-12 || math.Abs(got.Cl-wantCl) > 1e-12 {
				t.Errorf("Lookup(%g) = %+v, want Cd=%g Cl=%g", mach, got, wantCd, wantCl)
			}
			if got.Cd < math.Min(lo.Cd, hi.Cd)-1e-12 || got.Cd > math.Max(lo.Cd, hi.Cd)+1e-12 {
				t.Errorf("Lookup(%g).Cd = %g outside bracket [%g, %g]", mach, got.Cd, lo.Cd, hi.Cd)
			}
		}
	}
}

func TestLookupClampsOutsideRange(t *testing.T) {
	tbl := testTable(t)
	rows := tbl.Entries()
	first, last := rows[0], rows[len(rows)-1]
	cases := []struct {
		mach float64
		want Entry
	}{
		{0, first},
		{0.2, first},
		{first.Mach, first},
		{last.Mach, last},
		{3.01, last},
		{12, last},
		{math.Inf(1), last},
	}
	for _, tc := range cases {
		got := tbl.Lookup(tc.mach)
		if got.Cd != tc.want.Cd || got.Cl != tc.want.Cl {
			t.Errorf("Lookup(%g) = %+v, want endpoint %+v", tc.mach, got, tc.want)
		}
	}
}

func TestSingleRowTable(t *testing.T) {
	tbl, err := NewTable([]Entry{{Mach: 2, Cd: 0.67, Cl: 2}})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	for _, m := range []float64{0, 2, 5} {
		if got := tbl.Lookup(m); got.Cd != 0.67 || got.Cl != 2 {
			t.Errorf("Lookup(%g) = %+v", m, got)
		}
	}
}

func TestNewTableRejectsMalformed(t *testing.T) {
	cases := map[string]struct {
		entries []Entry
		want    error
	}{
		"empty":          {nil, ErrEmptyTable},
		"duplicate mach": {[]Entry{{Mach: 1, Cd: 0.1}, {Mach: 1, Cd: 0.2}}, ErrMalformedTable},
		"descending":     {[]Entry{{Mach: 2, Cd: 0.1}, {Mach: 1, Cd: 0.2}}, ErrMalformedTable},
		"negative mach":  {[]Entry{{Mach: -1, Cd: 0.1}}, ErrMalformedTable},
		"negative cd":    {[]Entry{{Mach: 1, Cd: -0.1}}, ErrMalformedTable},
		"nan":            {[]Entry{{Mach: 1, Cd: math.NaN()}}, ErrMalformedTable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTable(tc.entries)
			if !errors.Is(err, tc.want) {
				t.Fatalf("NewTable error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseCompactLayout(t *testing.T) {
	in := "# comment\nMach,Cd,Cl\n0.5,0.1,2\n\n1.5,0.3,4\n"
	tbl, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if got := tbl.Lookup(1.0); math.Abs(got.Cd-0.2) > 1e-12 || math.Abs(got.Cl-3) > 1e-12 {
		t.Fatalf("Lookup(1.0) = %+v", got)
	}
}

func TestLoadCFDExportLayout(t *testing.T) {
	tbl, err := Load("testdata/cfd_export.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lo, hi := tbl.Range()
	if lo != 0.8 || hi != 2.0 {
		t.Fatalf("Range = (%g, %g)", lo, hi)
	}
	if got := tbl.Lookup(1.2); got.Cd != 0.45 || got.Cl != 2.4 {
		t.Fatalf("Lookup(1.2) = %+v", got)
	}
}

func TestLoadReferenceTable(t *testing.T) {
	tbl, err := Load("../../data/aerodynamics.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lo, hi := tbl.Range()
	if lo > 0.5 || hi < 4 {
		t.Fatalf("reference table range (%g, %g) does not cover the flight envelope", lo, hi)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"missing column": "Mach,Cd\n1,0.2\n",
		"bad number":     "Mach,Cd,Cl\n1,abc,2\n",
		"short row":      "Mach,Cd,Cl\n1,0.2\n",
		"no rows":        "Mach,Cd,Cl\n",
		"non monotonic":  "Mach,Cd,Cl\n2,0.2,1\n1,0.2,1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(in))
			if !errors.Is(err, ErrMalformedTable) && !errors.Is(err, ErrEmptyTable) {
				t.Fatalf("Parse error = %v, want table error", err)
			}
		})
	}
}

func TestAtmosphereDensityDecreasesWithAltitude(t *testing.T) {
	atm := StandardAtmosphere()
	if got := atm.Density(0); got != 1.225 {
		t.Fatalf("sea level density = %g", got)
	}
	prev := atm.Density(0)
	for h := 1000.0; h <= 20000; h += 1000 {
		d := atm.Density(h)
		if d >= prev {
			t.Fatalf("density did not decrease at %g m: %g >= %g", h, d, prev)
		}
		prev = d
	}
	if got := atm.Density(8500); math.Abs(got-1.225/math.E) > 1e-12 {
		t.Fatalf("density at scale height = %g", got)
	}
	if got := atm.Mach(680, 2000); got != 2 {
		t.Fatalf("Mach(680) = %g", got)
	}
}
