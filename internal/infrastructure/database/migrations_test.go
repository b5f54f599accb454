package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/nerrad567/gray-logic-inventory/migrations"
)

var testMigrations = fstest.MapFS{
	"20260102_090000_events.up.sql":  {Data: []byte("CREATE TABLE events (id TEXT PRIMARY KEY);")},
	"20260101_090000_items.up.sql":   {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
	"20260101_090000_items.down.sql": {Data: []byte("DROP TABLE items;")},
	"README.md":                      {Data: []byte("not a migration")},
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return n == 1
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	pending, err := db.Pending(ctx, testMigrations)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 2 || pending[0].Name != "items" || pending[1].Name != "events" {
		t.Fatalf("Pending() = %+v, want [items events]", pending)
	}

	if err := db.Migrate(ctx, testMigrations); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	for _, table := range []string{"items", "events"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s not created", table)
		}
	}

	pending, err = db.Pending(ctx, testMigrations)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Pending() after Migrate = %d, want 0", len(pending))
	}

	if err := db.Migrate(ctx, testMigrations); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrate_Embedded(t *testing.T) {
	db := openTestDB(t)

	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate(migrations.FS) error = %v", err)
	}
	if !tableExists(t, db, "audit_events") {
		t.Error("audit_events not created")
	}
}

func TestMigrate_FailureRollsBackThatMigration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	broken := fstest.MapFS{
		"20260101_090000_good.up.sql": {Data: []byte("CREATE TABLE good (id TEXT);")},
		"20260102_090000_bad.up.sql":  {Data: []byte("CREATE TABLE bad (id TEXT); NOT SQL;")},
	}
	if err := db.Migrate(ctx, broken); err == nil {
		t.Fatal("Migrate() with broken migration returned nil")
	}

	if !tableExists(t, db, "good") {
		t.Error("earlier migration was rolled back")
	}
	if tableExists(t, db, "bad") {
		t.Error("failed migration left table bad")
	}
	pending, err := db.Pending(ctx, broken)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Name != "bad" {
		t.Errorf("Pending() = %+v, want [bad]", pending)
	}
}

func TestMigrate_NilFS(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(context.Background(), nil); err != nil {
		t.Errorf("Migrate(nil) error = %v", err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{filename: "20260301_090000_audit_events.up.sql", wantVersion: "20260301_090000", wantName: "audit_events", wantOK: true},
		{filename: "20260301_090000_audit_events.down.sql"},
		{filename: "20260301_090000_audit_events.sql"},
		{filename: "20260301.up.sql"},
		{filename: "README.md"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK || version != tt.wantVersion || name != tt.wantName {
				t.Errorf("parseMigrationFilename(%q) = %q, %q, %v, want %q, %q, %v",
					tt.filename, version, name, ok, tt.wantVersion, tt.wantName, tt.wantOK)
			}
		})
	}
}
