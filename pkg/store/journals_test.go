package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/unowned-ai/nstil/pkg/db"
	"github.com/unowned-ai/nstil/pkg/journal"
)

var baseTime = time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.OpenDBConnection(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })

	if err := db.InitializeSchema(context.Background(), testDB, db.TargetSchemaVersion); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	return testDB
}

func createTestJournal(t *testing.T, ctx context.Context, testDB *sql.DB, name string) journal.Space {
	t.Helper()
	sp, err := CreateJournal(ctx, testDB, journal.SpaceCreate{Name: name}, baseTime)
	if err != nil {
		t.Fatalf("CreateJournal(%q) failed: %v", name, err)
	}
	return sp
}

func TestCreateJournal(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	sp, err := CreateJournal(ctx, testDB, journal.SpaceCreate{
		Name:        "  Dreams ",
		Description: "Night notes",
		Color:       "#7c5cfc",
		Icon:        "Moon",
	}, baseTime)
	if err != nil {
		t.Fatalf("CreateJournal failed: %v", err)
	}

	if _, err := uuid.Parse(sp.ID); err != nil {
		t.Errorf("Expected a UUID id, got %q", sp.ID)
	}
	if sp.Name != "Dreams" {
		t.Errorf("Expected trimmed name Dreams, got %q", sp.Name)
	}
	if sp.Color != "#7C5CFC" || sp.Icon != "moon" {
		t.Errorf("Expected normalized color/icon, got %q/%q", sp.Color, sp.Icon)
	}
	if !sp.CreatedAt.Equal(baseTime) {
		t.Errorf("Expected created_at %v, got %v", baseTime, sp.CreatedAt)
	}

	if _, err := CreateJournal(ctx, testDB, journal.SpaceCreate{Name: " "}, baseTime); !errors.Is(err, journal.ErrSpaceNameRequired) {
		t.Errorf("Expected ErrSpaceNameRequired, got %v", err)
	}
}

func TestListJournalsSortOrder(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	a := createTestJournal(t, ctx, testDB, "A")
	b := createTestJournal(t, ctx, testDB, "B")
	c := createTestJournal(t, ctx, testDB, "C")

	if a.SortOrder != 0 || b.SortOrder != 1 || c.SortOrder != 2 {
		t.Fatalf("Expected sequential sort orders, got %d %d %d", a.SortOrder, b.SortOrder, c.SortOrder)
	}

	first := -1
	if _, err := UpdateJournal(ctx, testDB, c.ID, journal.SpaceUpdate{SortOrder: &first}, baseTime); err != nil {
		t.Fatalf("UpdateJournal failed: %v", err)
	}

	spaces, err := ListJournals(ctx, testDB)
	if err != nil {
		t.Fatalf("ListJournals failed: %v", err)
	}
	if len(spaces) != 3 {
		t.Fatalf("Expected 3 journals, got %d", len(spaces))
	}
	if spaces[0].ID != c.ID || spaces[1].ID != a.ID || spaces[2].ID != b.ID {
		t.Errorf("Unexpected order: %s, %s, %s", spaces[0].Name, spaces[1].Name, spaces[2].Name)
	}

	def, err := DefaultJournal(ctx, testDB)
	if err != nil {
		t.Fatalf("DefaultJournal failed: %v", err)
	}
	if def.ID != c.ID {
		t.Errorf("Expected default journal %s, got %s", c.Name, def.Name)
	}
}

func TestUpdateJournal(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()
	sp := createTestJournal(t, ctx, testDB, "Work")

	name := "Office"
	later := baseTime.Add(time.Hour)
	updated, err := UpdateJournal(ctx, testDB, sp.ID, journal.SpaceUpdate{Name: &name}, later)
	if err != nil {
		t.Fatalf("UpdateJournal failed: %v", err)
	}
	if updated.Name != "Office" {
		t.Errorf("Expected name Office, got %q", updated.Name)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Errorf("Expected updated_at %v, got %v", later, updated.UpdatedAt)
	}

	if _, err := UpdateJournal(ctx, testDB, uuid.NewString(), journal.SpaceUpdate{Name: &name}, later); !errors.Is(err, ErrJournalNotFound) {
		t.Errorf("Expected ErrJournalNotFound, got %v", err)
	}
}

func TestDeleteJournalHidesEntries(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()
	sp := createTestJournal(t, ctx, testDB, "Temp")
	e := createTestEntry(t, ctx, testDB, journal.EntryCreate{JournalID: sp.ID, Body: "gone soon"})

	if err := DeleteJournal(ctx, testDB, sp.ID, baseTime); err != nil {
		t.Fatalf("DeleteJournal failed: %v", err)
	}
	if _, err := GetJournal(ctx, testDB, sp.ID); !errors.Is(err, ErrJournalNotFound) {
		t.Errorf("Expected deleted journal to be hidden, got %v", err)
	}
	if _, err := GetEntry(ctx, testDB, e.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected entries of a deleted journal to be hidden, got %v", err)
	}
	if err := DeleteJournal(ctx, testDB, sp.ID, baseTime); !errors.Is(err, ErrJournalNotFound) {
		t.Errorf("Expected second delete to report ErrJournalNotFound, got %v", err)
	}
}

func TestEnsureDefaultJournal(t *testing.T) {
	s := New(setupTestDB(t), nil, WithClock(func() time.Time { return baseTime }))
	ctx := context.Background()

	first, err := s.EnsureDefaultJournal(ctx)
	if err != nil {
		t.Fatalf("EnsureDefaultJournal failed: %v", err)
	}
	if first.Name != DefaultJournalName {
		t.Errorf("Expected %q, got %q", DefaultJournalName, first.Name)
	}

	again, err := s.EnsureDefaultJournal(ctx)
	if err != nil {
		t.Fatalf("EnsureDefaultJournal failed: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("Expected the existing journal to be reused")
	}

	spaces, err := s.Journals().List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(spaces) != 1 {
		t.Errorf("Expected exactly one journal, got %d", len(spaces))
	}
}
