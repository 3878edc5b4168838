package database

import (
	"testing"
)

// TestMigrate tests that the embedded migrations create the document table.
// WHY: every SQLite-backed store and test depends on this schema being present.
func TestMigrate(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	t.Run("documents table accepts json bodies", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO documents (id, collection, body) VALUES ('a', 'CONFIG_Inputs', '{"unique_id":"p1"}')`)
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		var uniqueID string
		err = db.QueryRow(`SELECT json_extract(body, '$.unique_id') FROM documents WHERE id = 'a'`).Scan(&uniqueID)
		if err != nil {
			t.Fatalf("select failed: %v", err)
		}
		if uniqueID != "p1" {
			t.Errorf("Expected unique_id p1, got %q", uniqueID)
		}
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO documents (id, collection, body) VALUES ('b', 'CONFIG_Inputs', 'not json')`)
		if err == nil {
			t.Error("Expected check constraint failure for invalid json")
		}
	})

	t.Run("reports schema version", func(t *testing.T) {
		version, err := SchemaVersion(db)
		if err != nil {
			t.Fatalf("SchemaVersion() error = %v", err)
		}
		if version != 2 {
			t.Errorf("Expected schema version 2, got %d", version)
		}
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		if err := Migrate(db); err != nil {
			t.Errorf("second Migrate() error = %v", err)
		}
	})
}
