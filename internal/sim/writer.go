package sim

import "ramjet-sim/internal/telemetry"

// TrajectoryWriter is an interface to support different output writers.
type TrajectoryWriter interface {
	Write(telemetry.TrajectoryRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.TrajectoryRow) error
}

// EventWriter handles boundary events.
type EventWriter interface {
	WriteEvent(telemetry.EventRow) error
}

// Optional: Event writers may support batch mode
type batchEventWriter interface {
	WriteEvents([]telemetry.EventRow) error
}

// SummaryWriter handles per-run summary rows.
type SummaryWriter interface {
	WriteSummary(telemetry.SummaryRow) error
}

type batchSummaryWriter interface {
	WriteSummaries([]telemetry.SummaryRow) error
}

func writeTrajectory(w TrajectoryWriter, rows []telemetry.TrajectoryRow) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(rows)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func writeEvents(w EventWriter, rows []telemetry.EventRow) error {
	if bw, ok := w.(batchEventWriter); ok {
		return bw.WriteEvents(rows)
	}
	for _, r := range rows {
		if err := w.WriteEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummaries sends rows to w, using batch mode when supported.
func WriteSummaries(w SummaryWriter, rows []telemetry.SummaryRow) error {
	if bw, ok := w.(batchSummaryWriter); ok {
		return bw.WriteSummaries(rows)
	}
	for _, r := range rows {
		if err := w.WriteSummary(r); err != nil {
			return err
		}
	}
	return nil
}
