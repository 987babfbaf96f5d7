package sim

import "ramjet-sim/internal/telemetry"

// MultiWriter fan-outs trajectory, event and summary rows to multiple writers.
type MultiWriter struct {
	trajWriters    []TrajectoryWriter
	eventWriters   []EventWriter
	summaryWriters []SummaryWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(tws []TrajectoryWriter, ews []EventWriter, sws []SummaryWriter) *MultiWriter {
	return &MultiWriter{trajWriters: tws, eventWriters: ews, summaryWriters: sws}
}

// Write sends a trajectory row to all writers.
func (mw *MultiWriter) Write(row telemetry.TrajectoryRow) error {
	for _, w := range mw.trajWriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple trajectory rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.TrajectoryRow) error {
	for _, w := range mw.trajWriters {
		if err := writeTrajectory(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent sends a boundary event to all event writers.
func (mw *MultiWriter) WriteEvent(row telemetry.EventRow) error {
	for _, w := range mw.eventWriters {
		if err := w.WriteEvent(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple events to all event writers, using batch if supported.
func (mw *MultiWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, w := range mw.eventWriters {
		if err := writeEvents(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary sends a summary row to all summary writers.
func (mw *MultiWriter) WriteSummary(row telemetry.SummaryRow) error {
	for _, w := range mw.summaryWriters {
		if err := w.WriteSummary(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummaries sends multiple summary rows to all summary writers.
func (mw *MultiWriter) WriteSummaries(rows []telemetry.SummaryRow) error {
	for _, w := range mw.summaryWriters {
		if err := WriteSummaries(w, rows); err != nil {
			return err
		}
	}
	return nil
}
