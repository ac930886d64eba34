package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3" // SQLite driver, needed for tests
)

// checkTableExists is a test helper to verify if a table exists in the database.
func checkTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?;", tableName).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			t.Errorf("Table '%s' does not exist, but it should.", tableName)
			return
		}
		t.Fatalf("Error checking if table '%s' exists: %v", tableName, err)
	}
	if name != tableName {
		t.Errorf("Table check query returned '%s' but expected '%s'", name, tableName)
	}
}

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDBConnection(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("OpenDBConnection failed for in-memory DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDBConnection_InvalidSync(t *testing.T) {
	if _, err := OpenDBConnection(":memory:", false, "SOMETIMES"); err == nil {
		t.Fatal("expected an error for an invalid sync pragma")
	}
}

func TestOpenDBConnection_ForeignKeysOn(t *testing.T) {
	db := openMemory(t)
	var on int
	if err := db.QueryRow("PRAGMA foreign_keys;").Scan(&on); err != nil {
		t.Fatalf("PRAGMA foreign_keys failed: %v", err)
	}
	if on != 1 {
		t.Errorf("expected foreign keys to be enabled, got %d", on)
	}
}

func TestUpgradeDB_NewDatabase(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	if err := UpgradeDB(ctx, db, nil, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed on a new in-memory database: %v", err)
	}

	for _, tableName := range []string{"nstil_versions", "journal_spaces", "journal_entries", "entry_tags", "settings"} {
		checkTableExists(t, db, tableName)
	}

	version, err := GetComponentSchemaVersion(ctx, db, JournalDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed after UpgradeDB: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected component '%s' to be at version %d, but got %d", JournalDBComponent, TargetSchemaVersion, version)
	}
}

func TestUpgradeDB_AlreadyUpToDate(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	if err := InitializeSchema(ctx, db, TargetSchemaVersion); err != nil {
		t.Fatalf("InitializeSchema failed: %v", err)
	}
	if err := UpgradeDB(ctx, db, nil, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed on an up-to-date database: %v", err)
	}

	version, err := GetComponentSchemaVersion(ctx, db, JournalDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected component '%s' to be at version %d, but got %d", JournalDBComponent, TargetSchemaVersion, version)
	}
}

func TestUpgradeDB_UnknownTargetVersion(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	const dbInitialSchemaVersion int64 = 1
	appTargetsSchemaVersion := TargetSchemaVersion + 1

	if err := InitializeSchema(ctx, db, dbInitialSchemaVersion); err != nil {
		t.Fatalf("InitializeSchema to version %d failed: %v", dbInitialSchemaVersion, err)
	}

	err := UpgradeDB(ctx, db, nil, ":memory:", appTargetsSchemaVersion)
	if err == nil {
		t.Fatalf("UpgradeDB should have failed without a migration to version %d", appTargetsSchemaVersion)
	}
	expectedErrorMsg := fmt.Sprintf("no migration to target schema version %d", appTargetsSchemaVersion)
	if !strings.Contains(err.Error(), expectedErrorMsg) {
		t.Errorf("UpgradeDB error message mismatch.\nExpected to contain: %s\nGot: %s", expectedErrorMsg, err.Error())
	}

	currentVersion, getErr := GetComponentSchemaVersion(ctx, db, JournalDBComponent)
	if getErr != nil {
		t.Fatalf("GetComponentSchemaVersion failed after attempted upgrade: %v", getErr)
	}
	if currentVersion != dbInitialSchemaVersion {
		t.Errorf("Database schema version changed from %d to %d after a failed upgrade attempt that should have been a no-op.", dbInitialSchemaVersion, currentVersion)
	}
}

func TestUpgradeDB_NewerVersionUnsupported(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	dbInitialSchemaVersion := TargetSchemaVersion + 1
	appTargetsSchemaVersion := TargetSchemaVersion

	if err := InitializeSchema(ctx, db, dbInitialSchemaVersion); err != nil {
		t.Fatalf("InitializeSchema to version %d failed: %v", dbInitialSchemaVersion, err)
	}

	err := UpgradeDB(ctx, db, nil, ":memory:", appTargetsSchemaVersion)
	if err == nil {
		t.Fatalf("UpgradeDB should have failed for a newer DB version, but it did not")
	}

	expectedErrorMsg := fmt.Sprintf("component %s in database ':memory:' has schema version %d, which is newer than application's target schema version %d", JournalDBComponent, dbInitialSchemaVersion, appTargetsSchemaVersion)
	if !strings.Contains(err.Error(), expectedErrorMsg) {
		t.Errorf("UpgradeDB error message mismatch.\nExpected to contain: %s\nGot: %s", expectedErrorMsg, err.Error())
	}

	currentVersion, getErr := GetComponentSchemaVersion(ctx, db, JournalDBComponent)
	if getErr != nil {
		t.Fatalf("GetComponentSchemaVersion failed after attempted upgrade: %v", getErr)
	}
	if currentVersion != dbInitialSchemaVersion {
		t.Errorf("Database schema version changed from %d to %d after a failed upgrade attempt that should have been a no-op.", dbInitialSchemaVersion, currentVersion)
	}
}

func TestGetComponentSchemaVersion_EmptyDatabase(t *testing.T) {
	db := openMemory(t)
	version, err := GetComponentSchemaVersion(context.Background(), db, JournalDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed on an empty database: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 on an empty database, got %d", version)
	}
}
