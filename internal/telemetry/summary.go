package telemetry

import "time"

// SummaryRow is the scalar outcome of one run.
type SummaryRow struct {
	RunID           string    `json:"run_id"`
	Scenario        string    `json:"scenario"`
	Parameter       string    `json:"parameter,omitempty"`
	ParameterValue  float64   `json:"parameter_value,omitempty"`
	FinalPhase      string    `json:"final_phase"`
	MissDistance    float64   `json:"miss_distance_m"`
	ClosestApproach float64   `json:"closest_approach_m"`
	Hit             bool      `json:"hit"`
	ImpactX         float64   `json:"impact_x_m"`
	ImpactAltitude  float64   `json:"impact_h_m"`
	FlightTime      float64   `json:"flight_time_s"`
	Steps           int       `json:"steps"`
	Saturations     int       `json:"saturations"`
	MaxMach         float64   `json:"max_mach"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"ts"`
}

// SummaryTableName defaults to "ramjet_runs", overridable via GREPTIMEDB_SUMMARY_TABLE.
var SummaryTableName = tableName("GREPTIMEDB_SUMMARY_TABLE", "ramjet_runs")

func (SummaryRow) TableName() string {
	return SummaryTableName
}
