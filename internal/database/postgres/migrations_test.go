package postgres

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMigrationFiles(t *testing.T) {
	files, err := migrationFiles()
	if err != nil {
		t.Fatalf("migrationFiles() error = %v", err)
	}
	want := []string{"001_known_faces.sql", "002_evaluation_runs.sql"}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("migrationFiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestPendingMigrations(t *testing.T) {
	files := []string{"001_a.sql", "002_b.sql", "003_c.sql"}

	tests := []struct {
		name    string
		applied []Migration
		want    []string
	}{
		{"fresh database", nil, files},
		{"partially applied", []Migration{{Version: "001_a.sql"}}, []string{"002_b.sql", "003_c.sql"}},
		{"gap keeps order", []Migration{{Version: "002_b.sql"}}, []string{"001_a.sql", "003_c.sql"}},
		{"up to date", []Migration{{Version: "001_a.sql"}, {Version: "002_b.sql"}, {Version: "003_c.sql"}}, nil},
		{"unknown applied version", []Migration{{Version: "000_old.sql"}}, files},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pendingMigrations(files, tt.applied)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("pendingMigrations() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
