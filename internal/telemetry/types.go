// Telemetry rows with greptime column roles
package telemetry

import (
	"os"
	"time"
)

// TrajectoryRow is one sampled integration step of a run.
type TrajectoryRow struct {
	RunID      string    `json:"run_id"`     // TAG
	Scenario   string    `json:"scenario"`   // TAG
	Step       int       `json:"step"`       // FIELD
	SimTime    float64   `json:"sim_time_s"` // FIELD
	Downrange  float64   `json:"x_m"`        // FIELD
	Altitude   float64   `json:"h_m"`        // FIELD
	Speed      float64   `json:"speed_mps"`  // FIELD
	Mach       float64   `json:"mach"`       // FIELD
	GammaDeg   float64   `json:"gamma_deg"`  // FIELD
	Mass       float64   `json:"mass_kg"`    // FIELD
	Fuel       float64   `json:"fuel_kg"`    // FIELD
	Thrust     float64   `json:"thrust_n"`   // FIELD
	Drag       float64   `json:"drag_n"`     // FIELD
	LiftAccel  float64   `json:"lift_accel"` // FIELD
	Demand     float64   `json:"demand"`     // FIELD
	Saturated  bool      `json:"saturated"`  // FIELD
	Range      float64   `json:"range_m"`    // FIELD
	Phase      string    `json:"phase"`      // FIELD
	Propulsion string    `json:"propulsion"` // FIELD
	Timestamp  time.Time `json:"ts"`         // TIME INDEX
}

// TrajectoryTableName holds the trajectory table used when writing to GreptimeDB.
// It defaults to "ramjet_trajectory" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TrajectoryTableName = tableName("GREPTIMEDB_TABLE", "ramjet_trajectory")

func (TrajectoryRow) TableName() string {
	return TrajectoryTableName
}

func tableName(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}
