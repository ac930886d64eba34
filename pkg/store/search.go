package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/unowned-ai/nstil/pkg/journal"
)

// MaxQueryLength bounds the search string.
const MaxQueryLength = 200

var ErrInvalidQuery = errors.New("search query must not be blank")

// ListEntries returns live entries newest first. The cursor is the
// created_at of the last entry on the previous page.
func ListEntries(ctx context.Context, db *sql.DB, params journal.ListParams) (journal.Page[journal.Entry], error) {
	return pageEntries(ctx, db, nil, nil, params.JournalID, params.Cursor, params.Limit)
}

// SearchEntries matches the query case-insensitively against title, body
// and tags.
func SearchEntries(ctx context.Context, db *sql.DB, params journal.SearchParams) (journal.Page[journal.Entry], error) {
	q := strings.TrimSpace(params.Query)
	if q == "" {
		return journal.Page[journal.Entry]{}, ErrInvalidQuery
	}
	if utf8.RuneCountInString(q) > MaxQueryLength {
		return journal.Page[journal.Entry]{}, fmt.Errorf("%w: longer than %d characters", ErrInvalidQuery, MaxQueryLength)
	}

	pattern := "%" + escapeLike(q) + "%"
	where := []string{`(
		e.title LIKE ? ESCAPE '\' OR
		e.body LIKE ? ESCAPE '\' OR
		EXISTS (SELECT 1 FROM entry_tags t WHERE t.entry_id = e.id AND t.tag LIKE ? ESCAPE '\')
	)`}
	args := []any{pattern, pattern, pattern}
	return pageEntries(ctx, db, where, args, params.JournalID, params.Cursor, params.Limit)
}

func pageEntries(ctx context.Context, db *sql.DB, where []string, args []any, journalID, cursor string, limit int) (journal.Page[journal.Entry], error) {
	limit = journal.NormalizeLimit(limit)

	where = append([]string{"e.deleted_at IS NULL"}, where...)
	if journalID != "" {
		where = append(where, "e.journal_id = ?")
		args = append(args, journalID)
	}
	if cursor != "" {
		ts, err := ParseCursor(cursor)
		if err != nil {
			return journal.Page[journal.Entry]{}, err
		}
		where = append(where, "e.created_at < ?")
		args = append(args, toMicros(ts))
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(`
	SELECT %s
	FROM journal_entries e
	WHERE %s
	ORDER BY e.created_at DESC, e.id DESC
	LIMIT ?`, prefixed("e.", entryColumns), strings.Join(where, " AND "))

	entries, err := queryEntries(ctx, db, query, args...)
	if err != nil {
		return journal.Page[journal.Entry]{}, err
	}

	page := journal.Page[journal.Entry]{Items: entries}
	if len(entries) > limit {
		page.Items = entries[:limit]
		page.HasMore = true
		page.NextCursor = FormatCursor(page.Items[limit-1].CreatedAt)
	}

	ids := make([]string, len(page.Items))
	for i, e := range page.Items {
		ids[i] = e.ID
	}
	tags, err := loadTags(ctx, db, ids)
	if err != nil {
		return journal.Page[journal.Entry]{}, err
	}
	for i := range page.Items {
		if t, ok := tags[page.Items[i].ID]; ok {
			page.Items[i].Tags = t
		}
	}
	return page, nil
}

// queryEntries drains the result set before returning so the connection is
// free for follow-up queries.
func queryEntries(ctx context.Context, db *sql.DB, query string, args ...any) ([]journal.Entry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute entries query: %w", err)
	}
	defer rows.Close()

	entries := []journal.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over entries: %w", err)
	}
	return entries, nil
}

// FormatCursor encodes a created_at timestamp as a page cursor.
func FormatCursor(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseCursor decodes a cursor produced by FormatCursor or any RFC 3339
// timestamp.
func ParseCursor(cursor string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, cursor)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}
	return ts, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = prefix + p
	}
	return strings.Join(parts, ", ")
}
