// Package dashboard renders Grafana dashboards for the GreptimeDB tables the
// simulator writes.
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"ramjet-sim/internal/telemetry"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

// Tables names the GreptimeDB tables a dashboard queries.
type Tables struct {
	Trajectory string
	Events     string
	Summary    string
}

// DefaultTables returns the table names the writers use, including any
// environment overrides.
func DefaultTables() Tables {
	return Tables{
		Trajectory: telemetry.TrajectoryTableName,
		Events:     telemetry.EventTableName,
		Summary:    telemetry.SummaryTableName,
	}
}

// Render parses the dashboard templates and writes rendered dashboards to outDir.
// Templates read the Grafana datasource UID from GREPTIMEDB_DATASOURCE_UID.
func Render(outDir string, tables Tables) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	names, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, entry := range names {
		name := entry.Name()
		t, err := template.New(name).Funcs(funcMap).ParseFS(templates, "templates/"+name)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(name, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, tables); err != nil {
			f.Close()
			return fmt.Errorf("render %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
