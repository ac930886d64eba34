package db

// Timestamps are unix microseconds so cursors round-trip exactly.
const (
	// SchemaV1 creates the journal tables for the journaldb component.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS nstil_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at INTEGER DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS journal_spaces (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL DEFAULT '',
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '',
    icon TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    deleted_at INTEGER
);

CREATE TABLE IF NOT EXISTS journal_entries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL DEFAULT '',
    journal_id TEXT NOT NULL REFERENCES journal_spaces(id) ON DELETE CASCADE,
    title VARCHAR(200) NOT NULL DEFAULT '',
    body TEXT NOT NULL,
    mood_category TEXT NOT NULL DEFAULT '',
    mood_specific TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    entry_type TEXT NOT NULL DEFAULT 'journal',
    is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    deleted_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_listing
    ON journal_entries (deleted_at, is_pinned DESC, created_at DESC);

CREATE TABLE IF NOT EXISTS entry_tags (
    entry_id TEXT NOT NULL REFERENCES journal_entries(id) ON DELETE CASCADE,
    tag VARCHAR(50) NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (entry_id, tag)
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER DEFAULT (unixepoch())
);
`
)

// migrations[i] brings the schema from version i to version i+1.
var migrations = []string{
	SchemaV1,
}
