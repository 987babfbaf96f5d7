package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ramjet-sim/internal/telemetry"
)

// JSONStdoutWriter prints trajectory, event and summary rows as JSON lines.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a trajectory row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.TrajectoryRow) error {
	return w.emit(row)
}

// WriteBatch outputs multiple trajectory rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.TrajectoryRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent outputs a boundary event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(e telemetry.EventRow) error {
	return w.emit(e)
}

// WriteEvents outputs multiple boundary events in JSON format.
func (w *JSONStdoutWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, e := range rows {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary outputs a run summary in JSON format.
func (w *JSONStdoutWriter) WriteSummary(row telemetry.SummaryRow) error {
	return w.emit(row)
}

// WriteSummaries outputs multiple run summaries in JSON format.
func (w *JSONStdoutWriter) WriteSummaries(rows []telemetry.SummaryRow) error {
	for _, r := range rows {
		if err := w.WriteSummary(r); err != nil {
			return err
		}
	}
	return nil
}
