package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lostfound.sqlite3")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	v1, err := Migrate(database)
	if err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if v1 != 1 {
		t.Errorf("expected schema version 1, got %d", v1)
	}

	v2, err := Migrate(database)
	if err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if v2 != v1 {
		t.Errorf("expected version to stay %d, got %d", v1, v2)
	}
}

func TestItemStateConstraints(t *testing.T) {
	database := NewTestDB(t)

	// Collected flag without collector fields is rejected.
	_, err := database.Exec(
		`INSERT INTO items (description, found_location, collection_location, upload_date, is_collected)
		 VALUES ('Umbrella', 'Library', 'Front desk', '2024-01-15 10:00:00+00:00', 1)`,
	)
	if err == nil {
		t.Error("expected CHECK failure for collected item without collected_date")
	}

	// Archive date without the archived flag is rejected.
	_, err = database.Exec(
		`INSERT INTO items (description, found_location, collection_location, upload_date, archived_date)
		 VALUES ('Umbrella', 'Library', 'Front desk', '2024-01-15 10:00:00+00:00', '2024-02-15 10:00:00+00:00')`,
	)
	if err == nil {
		t.Error("expected CHECK failure for archived_date on unarchived item")
	}

	_, err = database.Exec(
		`INSERT INTO items (description, found_location, collection_location, upload_date)
		 VALUES ('Umbrella', 'Library', 'Front desk', '2024-01-15 10:00:00+00:00')`,
	)
	if err != nil {
		t.Errorf("expected plain active item to insert, got %v", err)
	}
}
