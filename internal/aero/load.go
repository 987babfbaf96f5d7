package aero

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// column aliases accepted in the header row
var (
	machColumns = []string{"mach"}
	cdColumns   = []string{"cd"}
	clColumns   = []string{"cl", "cl_slope", "cl_alpha"}
)

// Load reads a coefficient table from a CSV file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open aero table: %w", err)
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads a header-driven CSV table. Columns are located by name so the
// CFD export layout (Mach, Alpha, Cd, Cl_Slope) and the compact layout
// (Mach, Cd, Cl) both load; unknown columns are ignored.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedTable, err)
	}
	machIdx, cdIdx, clIdx := -1, -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case contains(machColumns, name):
			machIdx = i
		case contains(cdColumns, name):
			cdIdx = i
		case contains(clColumns, name):
			clIdx = i
		}
	}
	if machIdx < 0 || cdIdx < 0 || clIdx < 0 {
		return nil, fmt.Errorf("%w: header %q must name mach, cd and cl columns", ErrMalformedTable, strings.Join(header, ","))
	}

	var entries []Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		if isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		var e Entry
		if e.Mach, err = field(rec, machIdx); err != nil {
			return nil, fmt.Errorf("%w: line %d mach: %v", ErrMalformedTable, line, err)
		}
		if e.Cd, err = field(rec, cdIdx); err != nil {
			return nil, fmt.Errorf("%w: line %d cd: %v", ErrMalformedTable, line, err)
		}
		if e.Cl, err = field(rec, clIdx); err != nil {
			return nil, fmt.Errorf("%w: line %d cl: %v", ErrMalformedTable, line, err)
		}
		entries = append(entries, e)
	}
	return NewTable(entries)
}

func field(rec []string, idx int) (float64, error) {
	if idx >= len(rec) {
		return 0, errors.New("missing column")
	}
	return strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
