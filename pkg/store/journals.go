package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/unowned-ai/nstil/pkg/journal"
)

var (
	ErrJournalNotFound = errors.New("journal not found")
)

const (
	spaceColumns = `id, user_id, name, description, color, icon, sort_order, created_at, updated_at`

	createJournalStatement = `
	INSERT INTO journal_spaces (id, name, description, color, icon, sort_order, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM journal_spaces WHERE deleted_at IS NULL), ?, ?)
	`

	getJournalStatement = `
	SELECT ` + spaceColumns + `
	FROM journal_spaces
	WHERE id = ? AND deleted_at IS NULL
	`

	listJournalsStatement = `
	SELECT ` + spaceColumns + `
	FROM journal_spaces
	WHERE deleted_at IS NULL
	ORDER BY sort_order ASC, created_at ASC
	`

	updateJournalStatement = `
	UPDATE journal_spaces
	SET name = ?, description = ?, color = ?, icon = ?, sort_order = ?, updated_at = ?
	WHERE id = ? AND deleted_at IS NULL
	`

	softDeleteJournalStatement = `
	UPDATE journal_spaces
	SET deleted_at = ?, updated_at = ?
	WHERE id = ? AND deleted_at IS NULL
	`

	softDeleteJournalEntriesStatement = `
	UPDATE journal_entries
	SET deleted_at = ?
	WHERE journal_id = ? AND deleted_at IS NULL
	`
)

func scanSpace(row interface{ Scan(...any) error }) (journal.Space, error) {
	var sp journal.Space
	var created, updated int64
	err := row.Scan(
		&sp.ID,
		&sp.UserID,
		&sp.Name,
		&sp.Description,
		&sp.Color,
		&sp.Icon,
		&sp.SortOrder,
		&created,
		&updated,
	)
	if err != nil {
		return journal.Space{}, err
	}
	sp.CreatedAt = fromMicros(created)
	sp.UpdatedAt = fromMicros(updated)
	return sp, nil
}

// CreateJournal adds a space at the end of the sort order.
func CreateJournal(ctx context.Context, db *sql.DB, in journal.SpaceCreate, now time.Time) (journal.Space, error) {
	v, err := journal.ValidateSpaceCreate(in)
	if err != nil {
		return journal.Space{}, err
	}

	id := uuid.NewString()
	ts := toMicros(now)
	_, err = db.ExecContext(ctx, createJournalStatement, id, v.Name, v.Description, v.Color, v.Icon, ts, ts)
	if err != nil {
		return journal.Space{}, err
	}
	return GetJournal(ctx, db, id)
}

func GetJournal(ctx context.Context, db *sql.DB, id string) (journal.Space, error) {
	return getJournal(ctx, db, id)
}

func getJournal(ctx context.Context, q querier, id string) (journal.Space, error) {
	sp, err := scanSpace(q.QueryRowContext(ctx, getJournalStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return journal.Space{}, ErrJournalNotFound
		}
		return journal.Space{}, err
	}
	return sp, nil
}

// DefaultJournal returns the first space in sort order.
func DefaultJournal(ctx context.Context, db *sql.DB) (journal.Space, error) {
	spaces, err := ListJournals(ctx, db)
	if err != nil {
		return journal.Space{}, err
	}
	if len(spaces) == 0 {
		return journal.Space{}, ErrJournalNotFound
	}
	return spaces[0], nil
}

func ListJournals(ctx context.Context, db *sql.DB) ([]journal.Space, error) {
	rows, err := db.QueryContext(ctx, listJournalsStatement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spaces := []journal.Space{}
	for rows.Next() {
		sp, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, sp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return spaces, nil
}

func UpdateJournal(ctx context.Context, db *sql.DB, id string, patch journal.SpaceUpdate, now time.Time) (journal.Space, error) {
	v, err := journal.ValidateSpaceUpdate(patch)
	if err != nil {
		return journal.Space{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return journal.Space{}, err
	}
	defer tx.Rollback()

	sp, err := getJournal(ctx, tx, id)
	if err != nil {
		return journal.Space{}, err
	}
	if v.Name != nil {
		sp.Name = *v.Name
	}
	if v.Description != nil {
		sp.Description = *v.Description
	}
	if v.Color != nil {
		sp.Color = *v.Color
	}
	if v.Icon != nil {
		sp.Icon = *v.Icon
	}
	if v.SortOrder != nil {
		sp.SortOrder = *v.SortOrder
	}

	res, err := tx.ExecContext(ctx, updateJournalStatement, sp.Name, sp.Description, sp.Color, sp.Icon, sp.SortOrder, toMicros(now), id)
	if err != nil {
		return journal.Space{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return journal.Space{}, err
	} else if n == 0 {
		return journal.Space{}, ErrJournalNotFound
	}
	if err := tx.Commit(); err != nil {
		return journal.Space{}, err
	}
	return GetJournal(ctx, db, id)
}

// DeleteJournal soft deletes the space together with its entries.
func DeleteJournal(ctx context.Context, db *sql.DB, id string, now time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ts := toMicros(now)
	res, err := tx.ExecContext(ctx, softDeleteJournalStatement, ts, ts, id)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrJournalNotFound
	}

	if _, err := tx.ExecContext(ctx, softDeleteJournalEntriesStatement, ts, id); err != nil {
		return err
	}
	return tx.Commit()
}
