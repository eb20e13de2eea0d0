package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func connectTestDB(t *testing.T, dbPath string) *SQLiteDB {
	t.Helper()
	database := NewSQLiteDB(&SQLiteConfig{Path: dbPath})
	if err := database.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return database
}

func TestRunMigrations(t *testing.T) {
	database := connectTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	defer database.Close()

	db := database.DB()

	tests := []struct {
		kind string
		name string
	}{
		{kind: "table", name: "schema_migrations"},
		{kind: "table", name: "image_table"},
		{kind: "index", name: "idx_image_table_capture_time"},
	}
	for _, tt := range tests {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", tt.kind, tt.name).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to check %s %s: %v", tt.kind, tt.name, err)
		}
		if count != 1 {
			t.Errorf("%s %s not created", tt.kind, tt.name)
		}
	}

	var version int
	var name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations WHERE version = 1").Scan(&version, &name)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if name != "create_image_table" {
		t.Errorf("name = %q, want %q", name, "create_image_table")
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database := connectTestDB(t, dbPath)
	database.Close()

	// Connect second time - migrations should not fail
	database = connectTestDB(t, dbPath)
	defer database.Close()

	var count int
	err := database.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("recorded %d migrations, want %d", count, len(migrations))
	}
}

func TestImageTableSchema(t *testing.T) {
	database := connectTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	defer database.Close()

	db := database.DB()

	// uri and captureTime are NOT NULL
	if _, err := db.Exec("INSERT INTO image_table (uri, captureTime) VALUES (NULL, 1)"); err == nil {
		t.Error("inserting a NULL uri should fail")
	}
	if _, err := db.Exec("INSERT INTO image_table (uri, captureTime) VALUES ('content://img/1', NULL)"); err == nil {
		t.Error("inserting a NULL captureTime should fail")
	}

	// 64-bit millisecond timestamps round-trip
	const captured int64 = 1_760_000_000_000
	if _, err := db.Exec("INSERT INTO image_table (uri, captureTime) VALUES (?, ?)", "content://img/1", captured); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	var got int64
	if err := db.QueryRow("SELECT captureTime FROM image_table").Scan(&got); err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if got != captured {
		t.Errorf("captureTime = %d, want %d", got, captured)
	}
}
