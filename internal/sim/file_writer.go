package sim

import (
	"encoding/json"
	"os"

	"ramjet-sim/internal/telemetry"
)

// FileWriter writes trajectory, event and summary rows to JSONL files.
type FileWriter struct {
	trajFile    *os.File
	eventFile   *os.File
	summaryFile *os.File
	trajEnc     *json.Encoder
	eventEnc    *json.Encoder
	summaryEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. eventPath or summaryPath may be empty to skip those logs.
func NewFileWriter(trajectoryPath, eventPath, summaryPath string) (*FileWriter, error) {
	tf, err := os.Create(trajectoryPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{trajFile: tf, trajEnc: json.NewEncoder(tf)}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	if summaryPath != "" {
		sf, err := os.Create(summaryPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.summaryFile = sf
		fw.summaryEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// Write logs a single trajectory row.
func (f *FileWriter) Write(row telemetry.TrajectoryRow) error {
	return f.trajEnc.Encode(row)
}

// WriteBatch logs multiple trajectory rows.
func (f *FileWriter) WriteBatch(rows []telemetry.TrajectoryRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent logs a boundary event, if enabled.
func (f *FileWriter) WriteEvent(e telemetry.EventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(e)
}

// WriteEvents logs multiple boundary events.
func (f *FileWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, e := range rows {
		if err := f.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary logs a run summary, if enabled.
func (f *FileWriter) WriteSummary(row telemetry.SummaryRow) error {
	if f.summaryEnc == nil {
		return nil
	}
	return f.summaryEnc.Encode(row)
}

// WriteSummaries logs multiple run summaries.
func (f *FileWriter) WriteSummaries(rows []telemetry.SummaryRow) error {
	for _, r := range rows {
		if err := f.WriteSummary(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, file := range []*os.File{f.trajFile, f.eventFile, f.summaryFile} {
		if file == nil {
			continue
		}
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
