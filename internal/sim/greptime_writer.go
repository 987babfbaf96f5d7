package sim

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"ramjet-sim/internal/telemetry"
)

const defaultGreptimePort = 4001

// greptimeClient is the subset of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes trajectories, events and summaries to GreptimeDB
// via the gRPC ingester. Tables are created on first write.
type GreptimeDBWriter struct {
	client       greptimeClient
	trajTable    string
	eventTable   string
	summaryTable string
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port"). Empty
// table names fall back to the telemetry defaults.
func NewGreptimeDBWriter(endpoint, database, trajTable, eventTable, summaryTable string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	if trajTable == "" {
		trajTable = telemetry.TrajectoryTableName
	}
	if eventTable == "" {
		eventTable = telemetry.EventTableName
	}
	if summaryTable == "" {
		summaryTable = telemetry.SummaryTableName
	}
	return &GreptimeDBWriter{
		client:       client,
		trajTable:    trajTable,
		eventTable:   eventTable,
		summaryTable: summaryTable,
	}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	if endpoint == "" {
		return "", 0, fmt.Errorf("greptime endpoint required")
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("greptime endpoint %q: invalid port: %w", endpoint, err)
	}
	return host, port, nil
}

// column declares one table column.
type column struct {
	name string
	kind string // tag | field | ts
	typ  types.ColumnType
}

func newTable(name string, cols []column) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		switch c.kind {
		case "tag":
			err = tbl.AddTagColumn(c.name, c.typ)
		case "ts":
			err = tbl.AddTimestampColumn(c.name, c.typ)
		default:
			err = tbl.AddFieldColumn(c.name, c.typ)
		}
		if err != nil {
			return nil, fmt.Errorf("table %s column %s: %w", name, c.name, err)
		}
	}
	return tbl, nil
}

var trajectoryColumns = []column{
	{"run_id", "tag", types.STRING},
	{"scenario", "tag", types.STRING},
	{"step", "field", types.INT64},
	{"sim_time_s", "field", types.FLOAT64},
	{"x_m", "field", types.FLOAT64},
	{"h_m", "field", types.FLOAT64},
	{"speed_mps", "field", types.FLOAT64},
	{"mach", "field", types.FLOAT64},
	{"gamma_deg", "field", types.FLOAT64},
	{"mass_kg", "field", types.FLOAT64},
	{"fuel_kg", "field", types.FLOAT64},
	{"thrust_n", "field", types.FLOAT64},
	{"drag_n", "field", types.FLOAT64},
	{"lift_accel", "field", types.FLOAT64},
	{"demand", "field", types.FLOAT64},
	{"saturated", "field", types.BOOLEAN},
	{"range_m", "field", types.FLOAT64},
	{"phase", "field", types.STRING},
	{"propulsion", "field", types.STRING},
	{"ts", "ts", types.TIMESTAMP_MILLISECOND},
}

// Write inserts a single trajectory row.
func (w *GreptimeDBWriter) Write(row telemetry.TrajectoryRow) error {
	return w.WriteBatch([]telemetry.TrajectoryRow{row})
}

// WriteBatch inserts multiple trajectory rows in one request.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.TrajectoryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.trajTable, trajectoryColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID, r.Scenario, int64(r.Step), r.SimTime,
			r.Downrange, r.Altitude, r.Speed, r.Mach, r.GammaDeg,
			r.Mass, r.Fuel, r.Thrust, r.Drag, r.LiftAccel, r.Demand,
			r.Saturated, r.Range, r.Phase, r.Propulsion, r.Timestamp,
		); err != nil {
			return fmt.Errorf("trajectory row: %w", err)
		}
	}
	return w.write(tbl, w.trajTable, len(rows))
}

var eventColumns = []column{
	{"run_id", "tag", types.STRING},
	{"scenario", "tag", types.STRING},
	{"kind", "tag", types.STRING},
	{"step", "field", types.INT64},
	{"sim_time_s", "field", types.FLOAT64},
	{"phase", "field", types.STRING},
	{"detail", "field", types.STRING},
	{"value", "field", types.FLOAT64},
	{"ts", "ts", types.TIMESTAMP_MILLISECOND},
}

// WriteEvent inserts a boundary event.
func (w *GreptimeDBWriter) WriteEvent(e telemetry.EventRow) error {
	return w.WriteEvents([]telemetry.EventRow{e})
}

// WriteEvents inserts multiple boundary events.
func (w *GreptimeDBWriter) WriteEvents(rows []telemetry.EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.eventTable, eventColumns)
	if err != nil {
		return err
	}
	for _, e := range rows {
		if err := tbl.AddRow(e.RunID, e.Scenario, e.Kind, int64(e.Step), e.SimTime, e.Phase, e.Detail, e.Value, e.Timestamp); err != nil {
			return fmt.Errorf("event row: %w", err)
		}
	}
	return w.write(tbl, w.eventTable, len(rows))
}

var summaryColumns = []column{
	{"run_id", "tag", types.STRING},
	{"scenario", "tag", types.STRING},
	{"parameter", "field", types.STRING},
	{"parameter_value", "field", types.FLOAT64},
	{"final_phase", "field", types.STRING},
	{"miss_distance_m", "field", types.FLOAT64},
	{"closest_approach_m", "field", types.FLOAT64},
	{"hit", "field", types.BOOLEAN},
	{"impact_x_m", "field", types.FLOAT64},
	{"impact_h_m", "field", types.FLOAT64},
	{"flight_time_s", "field", types.FLOAT64},
	{"steps", "field", types.INT64},
	{"saturations", "field", types.INT64},
	{"max_mach", "field", types.FLOAT64},
	{"error", "field", types.STRING},
	{"ts", "ts", types.TIMESTAMP_MILLISECOND},
}

// WriteSummary inserts a run summary.
func (w *GreptimeDBWriter) WriteSummary(r telemetry.SummaryRow) error {
	return w.WriteSummaries([]telemetry.SummaryRow{r})
}

// WriteSummaries inserts multiple run summaries.
func (w *GreptimeDBWriter) WriteSummaries(rows []telemetry.SummaryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.summaryTable, summaryColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID, r.Scenario, r.Parameter, r.ParameterValue, r.FinalPhase,
			r.MissDistance, r.ClosestApproach, r.Hit, r.ImpactX, r.ImpactAltitude,
			r.FlightTime, int64(r.Steps), int64(r.Saturations), r.MaxMach, r.Error, r.Timestamp,
		); err != nil {
			return fmt.Errorf("summary row: %w", err)
		}
	}
	return w.write(tbl, w.summaryTable, len(rows))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, name string, n int) error {
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		slog.Error("greptime write failed", "table", name, "err", err)
		return err
	}
	slog.Debug("greptime rows written", "table", name, "rows", n)
	return nil
}
