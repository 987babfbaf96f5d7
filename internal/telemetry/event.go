package telemetry

import "time"

// Boundary event kinds.
const (
	EventPhaseChange   = "phase_change"
	EventSaturation    = "saturation"
	EventFlameout      = "flameout"
	EventOverspeed     = "overspeed"
	EventFuelExhausted = "fuel_exhausted"
)

// EventRow records a non-fatal boundary condition hit during a run.
type EventRow struct {
	RunID     string    `json:"run_id"`
	Scenario  string    `json:"scenario"`
	Kind      string    `json:"kind"`
	Step      int       `json:"step"`
	SimTime   float64   `json:"sim_time_s"`
	Phase     string    `json:"phase"`
	Detail    string    `json:"detail,omitempty"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"ts"`
}

// EventTableName defaults to "ramjet_events", overridable via GREPTIMEDB_EVENT_TABLE.
var EventTableName = tableName("GREPTIMEDB_EVENT_TABLE", "ramjet_events")

func (EventRow) TableName() string {
	return EventTableName
}
