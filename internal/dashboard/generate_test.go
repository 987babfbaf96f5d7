package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderMissingEnv(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "")
	if err := Render(t.TempDir(), DefaultTables()); err == nil {
		t.Fatalf("expected error for missing env vars")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")

	dir := t.TempDir()
	tables := Tables{Trajectory: "traj_x", Events: "events_x", Summary: "runs_x"}
	if err := Render(dir, tables); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "ramjet-dashboard.json"))
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	for _, want := range []string{"uid1", "traj_x", "events_x", "runs_x"} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("%s not rendered", want)
		}
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("rendered dashboard is not valid JSON: %v", err)
	}
	if panels, ok := doc["panels"].([]any); !ok || len(panels) == 0 {
		t.Fatalf("dashboard has no panels")
	}
}

func TestDefaultTables(t *testing.T) {
	tbl := DefaultTables()
	if tbl.Trajectory == "" || tbl.Events == "" || tbl.Summary == "" {
		t.Fatalf("empty default table name: %+v", tbl)
	}
}
