package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"ramjet-sim/internal/telemetry"
)

type mockGreptimeClient struct {
	table *table.Table
	calls int
	err   error
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	m.calls++
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, m.err
}

func TestGreptimeWriterTrajectory(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	rows := []telemetry.TrajectoryRow{
		{RunID: "r1", Scenario: "ramjet", Step: 0, Downrange: 0, Altitude: 2000, Phase: "launch", Propulsion: "off", Timestamp: ts},
		{RunID: "r1", Scenario: "ramjet", Step: 10, Downrange: 68, Altitude: 2000, Saturated: true, Phase: "boost", Propulsion: "boost", Timestamp: ts.Add(100 * time.Millisecond)},
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, trajTable: "ramjet_trajectory"}

	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if m.table == nil || m.calls != 1 {
		t.Fatalf("expected one batched write, got %d", m.calls)
	}

	schema := m.table.GetRows().Schema
	if len(schema) != len(trajectoryColumns) {
		t.Fatalf("schema length %d, want %d", len(schema), len(trajectoryColumns))
	}
	if schema[0].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("run_id semantic type = %v, want TAG", schema[0].SemanticType)
	}
	last := len(schema) - 1
	if schema[last].SemanticType != gpb.SemanticType_TIMESTAMP {
		t.Fatalf("ts semantic type = %v, want TIMESTAMP", schema[last].SemanticType)
	}
	if schema[4].Datatype != gpb.ColumnDataType_FLOAT64 {
		t.Fatalf("x_m column type = %v", schema[4].Datatype)
	}

	got := m.table.GetRows().Rows
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if v := got[1].Values[0].GetStringValue(); v != "r1" {
		t.Fatalf("run_id = %s", v)
	}
	if v := got[1].Values[4].GetF64Value(); v != 68 {
		t.Fatalf("x_m = %v, want 68", v)
	}
	if v := got[1].Values[17].GetStringValue(); v != "boost" {
		t.Fatalf("phase = %s, want boost", v)
	}
}

func TestGreptimeWriterSummaries(t *testing.T) {
	rows := []telemetry.SummaryRow{{
		RunID:          "r1",
		Scenario:       "ballistic/launch_speed=900",
		Parameter:      "launch_speed",
		ParameterValue: 900,
		FinalPhase:     "impacted",
		MissDistance:   1856,
		Steps:          2400,
	}}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, summaryTable: "ramjet_runs"}

	if err := w.WriteSummaries(rows); err != nil {
		t.Fatalf("WriteSummaries: %v", err)
	}
	vals := m.table.GetRows().Rows[0].Values
	if got := vals[2].GetStringValue(); got != "launch_speed" {
		t.Fatalf("parameter = %s", got)
	}
	if got := vals[3].GetF64Value(); got != 900 {
		t.Fatalf("parameter_value = %v", got)
	}
	if got := vals[11].GetI64Value(); got != 2400 {
		t.Fatalf("steps = %v", got)
	}
}

func TestGreptimeWriterEventsAndErrors(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, eventTable: "ramjet_events"}

	if err := w.WriteEvents(nil); err != nil || m.calls != 0 {
		t.Fatalf("empty batch should not write: calls=%d err=%v", m.calls, err)
	}
	if err := w.WriteEvent(telemetry.EventRow{RunID: "r1", Kind: telemetry.EventPhaseChange, Phase: "boost"}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if got := m.table.GetRows().Rows[0].Values[2].GetStringValue(); got != telemetry.EventPhaseChange {
		t.Fatalf("kind = %s", got)
	}

	m.err = errors.New("unavailable")
	if err := w.WriteEvent(telemetry.EventRow{RunID: "r1"}); err == nil {
		t.Fatal("expected client error to propagate")
	}
}

func TestSplitEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		host string
		port int
		err  bool
	}{
		{"localhost", "localhost", defaultGreptimePort, false},
		{"db.internal:5001", "db.internal", 5001, false},
		{"db:abc", "", 0, true},
		{"", "", 0, true},
	}
	for _, tc := range cases {
		host, port, err := splitEndpoint(tc.in)
		if (err != nil) != tc.err {
			t.Fatalf("%q: err = %v", tc.in, err)
		}
		if !tc.err && (host != tc.host || port != tc.port) {
			t.Fatalf("%q: got %s:%d", tc.in, host, port)
		}
	}
}
