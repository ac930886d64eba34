package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/unowned-ai/nstil/pkg/db"
	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/logger"
	"github.com/unowned-ai/nstil/pkg/utils"
)

// DefaultJournalName is used when a fresh database gets its first space.
const DefaultJournalName = "Personal"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQLite backend. It implements journal.Backend.
type Store struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

type Option func(*Store)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Options mirror the store section of the config file.
type Options struct {
	Path       string
	DisableWAL bool
	Sync       string
}

// Open resolves the database path, connects and upgrades the schema.
func Open(ctx context.Context, o Options, log logger.Logger, opts ...Option) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	path, err := utils.ResolveAndEnsureDBPath(o.Path)
	if err != nil {
		return nil, err
	}
	conn, err := db.OpenDBConnection(path, !o.DisableWAL, o.Sync)
	if err != nil {
		return nil, err
	}
	if err := db.UpgradeDB(ctx, conn, log, path, db.TargetSchemaVersion); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to prepare database: %w", err)
	}
	log.Debug("local store ready", logger.String("path", path))
	return New(conn, log, opts...), nil
}

// New wraps an already migrated connection.
func New(conn *sql.DB, log logger.Logger, opts ...Option) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{db: conn, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Entries() journal.EntriesAPI { return entryRepo{s} }

func (s *Store) Journals() journal.JournalsAPI { return journalRepo{s} }

// Settings returns the key-value table, usable as a theme.KV.
func (s *Store) Settings() *Settings { return &Settings{db: s.db} }

// EnsureDefaultJournal creates DefaultJournalName when no space exists yet and
// returns the first space.
func (s *Store) EnsureDefaultJournal(ctx context.Context) (journal.Space, error) {
	space, err := DefaultJournal(ctx, s.db)
	if err == nil {
		return space, nil
	}
	if !errors.Is(err, ErrJournalNotFound) {
		return journal.Space{}, err
	}
	s.log.Info("creating default journal", logger.String("name", DefaultJournalName))
	return CreateJournal(ctx, s.db, journal.SpaceCreate{Name: DefaultJournalName}, s.now())
}

type entryRepo struct{ s *Store }

func (r entryRepo) Create(ctx context.Context, in journal.EntryCreate) (journal.Entry, error) {
	return CreateEntry(ctx, r.s.db, in, r.s.now())
}

func (r entryRepo) Update(ctx context.Context, id string, patch journal.EntryUpdate) (journal.Entry, error) {
	return UpdateEntry(ctx, r.s.db, id, patch, r.s.now())
}

func (r entryRepo) Get(ctx context.Context, id string) (journal.Entry, error) {
	return GetEntry(ctx, r.s.db, id)
}

func (r entryRepo) Delete(ctx context.Context, id string) error {
	return DeleteEntry(ctx, r.s.db, id, r.s.now())
}

func (r entryRepo) List(ctx context.Context, params journal.ListParams) (journal.Page[journal.Entry], error) {
	return ListEntries(ctx, r.s.db, params)
}

func (r entryRepo) Search(ctx context.Context, params journal.SearchParams) (journal.Page[journal.Entry], error) {
	return SearchEntries(ctx, r.s.db, params)
}

type journalRepo struct{ s *Store }

func (r journalRepo) List(ctx context.Context) ([]journal.Space, error) {
	return ListJournals(ctx, r.s.db)
}

func (r journalRepo) Create(ctx context.Context, in journal.SpaceCreate) (journal.Space, error) {
	return CreateJournal(ctx, r.s.db, in, r.s.now())
}

func (r journalRepo) Get(ctx context.Context, id string) (journal.Space, error) {
	return GetJournal(ctx, r.s.db, id)
}

func (r journalRepo) Update(ctx context.Context, id string, patch journal.SpaceUpdate) (journal.Space, error) {
	return UpdateJournal(ctx, r.s.db, id, patch, r.s.now())
}

func (r journalRepo) Delete(ctx context.Context, id string) error {
	return DeleteJournal(ctx, r.s.db, id, r.s.now())
}

func toMicros(t time.Time) int64 { return t.UnixMicro() }

func fromMicros(v int64) time.Time { return time.UnixMicro(v).UTC() }
