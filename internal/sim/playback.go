package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"ramjet-sim/internal/telemetry"
)

// ReplayLog replays trajectory rows from r to writer. A speed >0 paces
// playback at that multiple of simulated time. If speed <= 0, no artificial
// delay is inserted.
func ReplayLog(r io.Reader, writer TrajectoryWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var row telemetry.TrajectoryRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := row.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
		prev = row.Timestamp
	}
}

// ReplayLogFile opens a file and replays its trajectory rows.
func ReplayLogFile(path string, writer TrajectoryWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}

// collector buffers rows in memory.
type collector struct {
	rows []telemetry.TrajectoryRow
}

func (c *collector) Write(row telemetry.TrajectoryRow) error {
	c.rows = append(c.rows, row)
	return nil
}

// LoadTrajectory reads a whole JSONL trajectory log.
func LoadTrajectory(path string) ([]telemetry.TrajectoryRow, error) {
	var c collector
	if err := ReplayLogFile(path, &c, 0); err != nil {
		return nil, fmt.Errorf("load trajectory %s: %w", path, err)
	}
	return c.rows, nil
}

// LoadEvents reads a JSONL boundary event log.
func LoadEvents(path string) ([]telemetry.EventRow, error) {
	return decodeLines[telemetry.EventRow](path)
}

// LoadSummaries reads a JSONL run summary log.
func LoadSummaries(path string) ([]telemetry.SummaryRow, error) {
	return decodeLines[telemetry.SummaryRow](path)
}

func decodeLines[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []T
	dec := json.NewDecoder(f)
	for {
		var v T
		if err := dec.Decode(&v); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		out = append(out, v)
	}
}
