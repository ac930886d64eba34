package store

import (
	"context"
	"database/sql"
	"errors"
)

const (
	getSettingStatement = `SELECT value FROM settings WHERE key = ?`

	setSettingStatement = `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = unixepoch()
	`
)

// Settings is a small key-value table for client preferences such as the
// theme mode.
type Settings struct {
	db *sql.DB
}

// Get returns "" when key is not set.
func (s *Settings) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getSettingStatement, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *Settings) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, setSettingStatement, key, value)
	return err
}
