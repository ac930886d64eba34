package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unowned-ai/nstil/pkg/journal"
)

func seedEntries(t *testing.T, ctx context.Context, s *Store, journalID string, bodies ...string) []journal.Entry {
	t.Helper()
	out := make([]journal.Entry, len(bodies))
	for i, body := range bodies {
		when := baseTime.Add(-time.Duration(len(bodies)-i) * time.Hour)
		e, err := s.Entries().Create(ctx, journal.EntryCreate{JournalID: journalID, Body: body, CreatedAt: &when})
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", body, err)
		}
		out[i] = e
	}
	return out
}

func TestListEntriesPagination(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()
	s := New(testDB, nil, WithClock(func() time.Time { return baseTime }))
	sp := createTestJournal(t, ctx, testDB, "Personal")
	seeded := seedEntries(t, ctx, s, sp.ID, "one", "two", "three", "four", "five")

	page, err := s.Entries().List(ctx, journal.ListParams{Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Items) != 2 || !page.HasMore || page.NextCursor == "" {
		t.Fatalf("Unexpected first page: %d items, has_more=%v cursor=%q", len(page.Items), page.HasMore, page.NextCursor)
	}
	if page.Items[0].ID != seeded[4].ID || page.Items[1].ID != seeded[3].ID {
		t.Errorf("Expected newest entries first")
	}

	var all []journal.Entry
	all = append(all, page.Items...)
	for page.HasMore {
		page, err = s.Entries().List(ctx, journal.ListParams{Limit: 2, Cursor: page.NextCursor})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		all = append(all, page.Items...)
	}
	if len(all) != len(seeded) {
		t.Fatalf("Expected %d entries across pages, got %d", len(seeded), len(all))
	}
	if page.NextCursor != "" {
		t.Errorf("Expected no cursor on the last page, got %q", page.NextCursor)
	}
}

func TestListEntriesFilters(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()
	s := New(testDB, nil, WithClock(func() time.Time { return baseTime }))
	a := createTestJournal(t, ctx, testDB, "A")
	b := createTestJournal(t, ctx, testDB, "B")
	seedEntries(t, ctx, s, a.ID, "a1", "a2")
	gone := seedEntries(t, ctx, s, b.ID, "b1", "b2")

	if err := s.Entries().Delete(ctx, gone[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	page, err := s.Entries().List(ctx, journal.ListParams{JournalID: b.ID})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Body != "b2" {
		t.Errorf("Expected only the live entry of journal B, got %+v", page.Items)
	}

	page, err = s.Entries().List(ctx, journal.ListParams{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Items) != 3 || page.HasMore {
		t.Errorf("Expected 3 live entries, got %d (has_more=%v)", len(page.Items), page.HasMore)
	}

	if _, err := s.Entries().List(ctx, journal.ListParams{Cursor: "yesterday"}); !errors.Is(err, ErrInvalidCursor) {
		t.Errorf("Expected ErrInvalidCursor, got %v", err)
	}
}

func TestSearchEntries(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()
	s := New(testDB, nil, WithClock(func() time.Time { return baseTime }))
	sp := createTestJournal(t, ctx, testDB, "Personal")

	mk := func(in journal.EntryCreate) journal.Entry {
		in.JournalID = sp.ID
		return createTestEntry(t, ctx, testDB, in)
	}
	byBody := mk(journal.EntryCreate{Body: "Went to the GYM early"})
	byTitle := mk(journal.EntryCreate{Title: "Gym log", Body: "legs"})
	byTag := mk(journal.EntryCreate{Body: "tired", Tags: []string{"gym"}})
	mk(journal.EntryCreate{Body: "read a book"})
	mk(journal.EntryCreate{Body: "100% done_today"})

	page, err := s.Entries().Search(ctx, journal.SearchParams{Query: " gym "})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	found := map[string]bool{}
	for _, e := range page.Items {
		found[e.ID] = true
	}
	if len(found) != 3 || !found[byBody.ID] || !found[byTitle.ID] || !found[byTag.ID] {
		t.Errorf("Expected matches by body, title and tag, got %d items", len(page.Items))
	}

	page, err = s.Entries().Search(ctx, journal.SearchParams{Query: "%"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Errorf("Expected a literal %% match only, got %d items", len(page.Items))
	}

	if _, err := s.Entries().Search(ctx, journal.SearchParams{Query: "   "}); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("Expected ErrInvalidQuery, got %v", err)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 678901000, time.UTC)
	got, err := ParseCursor(FormatCursor(ts))
	if err != nil {
		t.Fatalf("ParseCursor failed: %v", err)
	}
	if !got.Equal(ts) {
		t.Errorf("Expected %v, got %v", ts, got)
	}
}
