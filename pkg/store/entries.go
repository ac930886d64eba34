package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unowned-ai/nstil/pkg/journal"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrInvalidCursor = errors.New("invalid cursor")
)

const (
	entryColumns = `id, user_id, journal_id, title, body, mood_category, mood_specific, location, entry_type, is_pinned, created_at, updated_at`

	createEntryStatement = `
	INSERT INTO journal_entries (id, journal_id, title, body, mood_category, mood_specific, location, entry_type, is_pinned, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	getEntryStatement = `
	SELECT ` + entryColumns + `
	FROM journal_entries
	WHERE id = ? AND deleted_at IS NULL
	`

	updateEntryStatement = `
	UPDATE journal_entries
	SET journal_id = ?, title = ?, body = ?, mood_category = ?, mood_specific = ?, location = ?,
	    entry_type = ?, is_pinned = ?, created_at = ?, updated_at = ?
	WHERE id = ? AND deleted_at IS NULL
	`

	softDeleteEntryStatement = `
	UPDATE journal_entries
	SET deleted_at = ?, updated_at = ?
	WHERE id = ? AND deleted_at IS NULL
	`

	journalExistsStatement = `
	SELECT 1 FROM journal_spaces WHERE id = ? AND deleted_at IS NULL
	`

	deleteEntryTagsStatement = `DELETE FROM entry_tags WHERE entry_id = ?`

	insertEntryTagStatement = `INSERT INTO entry_tags (entry_id, tag, position) VALUES (?, ?, ?)`
)

func scanEntry(row interface{ Scan(...any) error }) (journal.Entry, error) {
	var e journal.Entry
	var created, updated int64
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.JournalID,
		&e.Title,
		&e.Body,
		&e.MoodCategory,
		&e.MoodSpecific,
		&e.Location,
		&e.EntryType,
		&e.IsPinned,
		&created,
		&updated,
	)
	if err != nil {
		return journal.Entry{}, err
	}
	e.CreatedAt = fromMicros(created)
	e.UpdatedAt = fromMicros(updated)
	e.Tags = []string{}
	return e, nil
}

func requireJournal(ctx context.Context, q querier, id string) error {
	var one int
	err := q.QueryRowContext(ctx, journalExistsStatement, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrJournalNotFound
	}
	return err
}

// CreateEntry validates in and stores it. created_at defaults to now.
func CreateEntry(ctx context.Context, db *sql.DB, in journal.EntryCreate, now time.Time) (journal.Entry, error) {
	v, err := journal.ValidateCreate(in, now)
	if err != nil {
		return journal.Entry{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return journal.Entry{}, err
	}
	defer tx.Rollback()

	if err := requireJournal(ctx, tx, v.JournalID); err != nil {
		return journal.Entry{}, err
	}

	id := uuid.NewString()
	createdAt := now
	if v.CreatedAt != nil {
		createdAt = *v.CreatedAt
	}

	_, err = tx.ExecContext(
		ctx,
		createEntryStatement,
		id,
		v.JournalID,
		v.Title,
		v.Body,
		v.MoodCategory,
		v.MoodSpecific,
		v.Location,
		v.EntryType,
		v.IsPinned,
		toMicros(createdAt),
		toMicros(now),
	)
	if err != nil {
		return journal.Entry{}, err
	}
	if err := replaceTags(ctx, tx, id, v.Tags); err != nil {
		return journal.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return journal.Entry{}, err
	}

	return GetEntry(ctx, db, id)
}

// GetEntry retrieves a live entry with its tags.
func GetEntry(ctx context.Context, db *sql.DB, id string) (journal.Entry, error) {
	return getEntry(ctx, db, id)
}

func getEntry(ctx context.Context, q querier, id string) (journal.Entry, error) {
	e, err := scanEntry(q.QueryRowContext(ctx, getEntryStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return journal.Entry{}, ErrEntryNotFound
		}
		return journal.Entry{}, err
	}
	tags, err := loadTags(ctx, q, []string{id})
	if err != nil {
		return journal.Entry{}, err
	}
	if t, ok := tags[id]; ok {
		e.Tags = t
	}
	return e, nil
}

// UpdateEntry applies patch to a live entry. Switching category without
// sending a specific drops a specific that no longer fits.
func UpdateEntry(ctx context.Context, db *sql.DB, id string, patch journal.EntryUpdate, now time.Time) (journal.Entry, error) {
	v, err := journal.ValidateUpdate(patch, now)
	if err != nil {
		return journal.Entry{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return journal.Entry{}, err
	}
	defer tx.Rollback()

	e, err := getEntry(ctx, tx, id)
	if err != nil {
		return journal.Entry{}, err
	}

	if v.JournalID != nil && *v.JournalID != e.JournalID {
		if err := requireJournal(ctx, tx, *v.JournalID); err != nil {
			return journal.Entry{}, err
		}
		e.JournalID = *v.JournalID
	}
	if v.Title != nil {
		e.Title = *v.Title
	}
	if v.Body != nil {
		e.Body = *v.Body
	}
	if v.MoodCategory != nil {
		if *v.MoodCategory != e.MoodCategory && !v.MoodCategory.Owns(e.MoodSpecific) {
			e.MoodSpecific = ""
		}
		e.MoodCategory = *v.MoodCategory
	}
	if v.MoodSpecific != nil {
		e.MoodSpecific = *v.MoodSpecific
	}
	if v.Location != nil {
		e.Location = *v.Location
	}
	if v.EntryType != nil {
		e.EntryType = *v.EntryType
	}
	if v.IsPinned != nil {
		e.IsPinned = *v.IsPinned
	}
	if v.CreatedAt != nil {
		e.CreatedAt = *v.CreatedAt
	}

	res, err := tx.ExecContext(
		ctx,
		updateEntryStatement,
		e.JournalID,
		e.Title,
		e.Body,
		e.MoodCategory,
		e.MoodSpecific,
		e.Location,
		e.EntryType,
		e.IsPinned,
		toMicros(e.CreatedAt),
		toMicros(now),
		id,
	)
	if err != nil {
		return journal.Entry{}, err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return journal.Entry{}, err
	}
	if rowsAffected == 0 {
		return journal.Entry{}, ErrEntryNotFound
	}

	if v.Tags != nil {
		if err := replaceTags(ctx, tx, id, v.Tags); err != nil {
			return journal.Entry{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return journal.Entry{}, err
	}

	return GetEntry(ctx, db, id)
}

// DeleteEntry soft deletes an entry. Deleted entries are invisible to every
// read.
func DeleteEntry(ctx context.Context, db *sql.DB, id string, now time.Time) error {
	ts := toMicros(now)
	res, err := db.ExecContext(ctx, softDeleteEntryStatement, ts, ts, id)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

func replaceTags(ctx context.Context, tx *sql.Tx, entryID string, tags []string) error {
	if _, err := tx.ExecContext(ctx, deleteEntryTagsStatement, entryID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx, insertEntryTagStatement, entryID, tag, i); err != nil {
			return fmt.Errorf("failed to store tag %q: %w", tag, err)
		}
	}
	return nil
}

// loadTags returns the ordered tags of every entry in ids that has any.
func loadTags(ctx context.Context, q querier, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, fmt.Sprintf(
		`SELECT entry_id, tag FROM entry_tags WHERE entry_id IN (%s) ORDER BY entry_id, position`,
		placeholders,
	), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryID, tag string
		if err := rows.Scan(&entryID, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		out[entryID] = append(out[entryID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return out, nil
}
