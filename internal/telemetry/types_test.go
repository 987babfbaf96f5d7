package telemetry

import "testing"

func TestTableNames(t *testing.T) {
	t.Setenv("RAMJET_TEST_TABLE", "")
	if got := tableName("RAMJET_TEST_TABLE", "fallback"); got != "fallback" {
		t.Fatalf("expected default, got %q", got)
	}
	t.Setenv("RAMJET_TEST_TABLE", "custom")
	if got := tableName("RAMJET_TEST_TABLE", "fallback"); got != "custom" {
		t.Fatalf("expected override, got %q", got)
	}
	if (TrajectoryRow{}).TableName() != TrajectoryTableName ||
		(EventRow{}).TableName() != EventTableName ||
		(SummaryRow{}).TableName() != SummaryTableName {
		t.Fatal("row table names do not follow package variables")
	}
}
