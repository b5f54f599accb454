package api

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/nerrad567/gray-logic-inventory/internal/audit"
	"github.com/nerrad567/gray-logic-inventory/internal/device"
	"github.com/nerrad567/gray-logic-inventory/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-inventory/migrations"
)

func setupAudit(t *testing.T) *audit.SQLiteRepository {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return audit.NewSQLiteRepository(db.DB)
}

func TestListAudit(t *testing.T) {
	repo := setupAudit(t)
	srv, _ := testServer(t, func(d *Deps) {
		d.Audit = repo
		d.Registry = device.New(device.Deps{
			Recorder: audit.NewRecorder(repo, testLogger()),
		})
	})

	for _, path := range []string{"/api/v1/devices/SW", "/api/v1/devices/P"} {
		body := `{"name":"Desk"}`
		if path == "/api/v1/devices/SW" {
			body = `{"name":"Runner","battery":50}`
		}
		if rec := do(t, srv, http.MethodPost, path, body); rec.Code != http.StatusCreated {
			t.Fatalf("POST %s status = %d", path, rec.Code)
		}
	}
	do(t, srv, http.MethodPost, "/api/v1/devices/P-1/on", "")

	tests := []struct {
		query     string
		wantTotal int
	}{
		{query: "", wantTotal: 3},
		{query: "?operation=add", wantTotal: 2},
		{query: "?device_id=P-1", wantTotal: 2},
		{query: "?outcome=rejected", wantTotal: 1},
		{query: "?limit=1", wantTotal: 3},
	}
	for _, tt := range tests {
		rec := do(t, srv, http.MethodGet, "/api/v1/audit"+tt.query, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET /audit%s status = %d, want %d", tt.query, rec.Code, http.StatusOK)
			continue
		}
		result := decode[audit.ListResult](t, rec)
		if result.Total != tt.wantTotal {
			t.Errorf("GET /audit%s total = %d, want %d", tt.query, result.Total, tt.wantTotal)
		}
	}

	result := decode[audit.ListResult](t, do(t, srv, http.MethodGet, "/api/v1/audit?limit=1", ""))
	if len(result.Entries) != 1 || result.Entries[0].Operation != "turn_on" {
		t.Errorf("newest entry = %+v, want turn_on", result.Entries)
	}
}

func TestListAudit_NotConfigured(t *testing.T) {
	srv, _ := testServer(t)

	if rec := do(t, srv, http.MethodGet, "/api/v1/audit", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /audit status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
