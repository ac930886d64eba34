package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/logger"
)

const DefaultTTL = 5 * time.Minute

// Entries caches reads of an underlying journal.EntriesAPI. Writes go
// straight through; once one succeeds the affected keys are refreshed or
// dropped. Cache failures never fail a call, they are only logged.
type Entries struct {
	next    journal.EntriesAPI
	backend Backend
	log     logger.Logger
	ttl     time.Duration
	prefix  string
}

type Option func(*Entries)

func WithTTL(ttl time.Duration) Option {
	return func(e *Entries) { e.ttl = ttl }
}

func WithPrefix(prefix string) Option {
	return func(e *Entries) { e.prefix = prefix }
}

func WithLogger(l logger.Logger) Option {
	return func(e *Entries) { e.log = l }
}

func NewEntries(next journal.EntriesAPI, backend Backend, opts ...Option) *Entries {
	e := &Entries{
		next:    next,
		backend: backend,
		log:     logger.Nop(),
		ttl:     DefaultTTL,
		prefix:  "nstil:",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Entries) detailKey(id string) string {
	return e.detailPrefix() + id
}

func (e *Entries) detailPrefix() string {
	return e.prefix + "entries:detail:"
}

func (e *Entries) listPrefix() string {
	return e.prefix + "entries:list:"
}

func (e *Entries) listKey(p journal.ListParams) string {
	return e.listPrefix() + hashKey(fmt.Sprintf("%s:%d:%s", p.Cursor, journal.NormalizeLimit(p.Limit), p.JournalID))
}

func (e *Entries) searchKey(p journal.SearchParams) string {
	return e.listPrefix() + "search:" + hashKey(fmt.Sprintf("%s:%s:%d:%s", p.Query, p.Cursor, journal.NormalizeLimit(p.Limit), p.JournalID))
}

func hashKey(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (e *Entries) Create(ctx context.Context, in journal.EntryCreate) (journal.Entry, error) {
	out, err := e.next.Create(ctx, in)
	if err != nil {
		return out, err
	}
	e.store(ctx, e.detailKey(out.ID), out)
	e.invalidateLists(ctx)
	return out, nil
}

func (e *Entries) Update(ctx context.Context, id string, patch journal.EntryUpdate) (journal.Entry, error) {
	out, err := e.next.Update(ctx, id, patch)
	if err != nil {
		return out, err
	}
	e.store(ctx, e.detailKey(id), out)
	e.invalidateLists(ctx)
	return out, nil
}

func (e *Entries) Delete(ctx context.Context, id string) error {
	if err := e.next.Delete(ctx, id); err != nil {
		return err
	}
	if err := e.backend.Delete(ctx, e.detailKey(id)); err != nil {
		e.log.Warn("cache delete failed", logger.String("id", id), logger.Error(err))
	}
	e.invalidateLists(ctx)
	return nil
}

func (e *Entries) Get(ctx context.Context, id string) (journal.Entry, error) {
	key := e.detailKey(id)
	var out journal.Entry
	if e.load(ctx, key, &out) {
		return out, nil
	}
	out, err := e.next.Get(ctx, id)
	if err != nil {
		return out, err
	}
	e.store(ctx, key, out)
	return out, nil
}

func (e *Entries) List(ctx context.Context, p journal.ListParams) (journal.Page[journal.Entry], error) {
	key := e.listKey(p)
	var out journal.Page[journal.Entry]
	if e.load(ctx, key, &out) {
		return out, nil
	}
	out, err := e.next.List(ctx, p)
	if err != nil {
		return out, err
	}
	e.store(ctx, key, out)
	return out, nil
}

func (e *Entries) Search(ctx context.Context, p journal.SearchParams) (journal.Page[journal.Entry], error) {
	key := e.searchKey(p)
	var out journal.Page[journal.Entry]
	if e.load(ctx, key, &out) {
		return out, nil
	}
	out, err := e.next.Search(ctx, p)
	if err != nil {
		return out, err
	}
	e.store(ctx, key, out)
	return out, nil
}

func (e *Entries) load(ctx context.Context, key string, dst any) bool {
	raw, ok, err := e.backend.Get(ctx, key)
	if err != nil {
		e.log.Warn("cache read failed", logger.String("key", key), logger.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		e.log.Warn("dropping undecodable cache value", logger.String("key", key), logger.Error(err))
		_ = e.backend.Delete(ctx, key)
		return false
	}
	return true
}

func (e *Entries) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		e.log.Warn("cache encode failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := e.backend.Set(ctx, key, raw, e.ttl); err != nil {
		e.log.Warn("cache write failed", logger.String("key", key), logger.Error(err))
	}
}

func (e *Entries) invalidateLists(ctx context.Context) {
	if err := e.backend.DeletePrefix(ctx, e.listPrefix()); err != nil {
		e.log.Warn("cache invalidation failed", logger.Error(err))
	}
}

// invalidateAll drops every cached entry, used when a journal and its
// entries go away together.
func (e *Entries) invalidateAll(ctx context.Context) {
	if err := e.backend.DeletePrefix(ctx, e.detailPrefix()); err != nil {
		e.log.Warn("cache invalidation failed", logger.Error(err))
	}
	e.invalidateLists(ctx)
}

// Journals passes journal calls through. Deleting a journal also deletes
// its entries, so a successful Delete clears the entry cache.
type Journals struct {
	journal.JournalsAPI
	entries *Entries
}

func (j Journals) Delete(ctx context.Context, id string) error {
	if err := j.JournalsAPI.Delete(ctx, id); err != nil {
		return err
	}
	j.entries.invalidateAll(ctx)
	return nil
}

type cachedBackend struct {
	entries  *Entries
	journals Journals
}

func (b cachedBackend) Entries() journal.EntriesAPI { return b.entries }

func (b cachedBackend) Journals() journal.JournalsAPI { return b.journals }

// Wrap returns b with its entries served through the cache.
func Wrap(b journal.Backend, backend Backend, opts ...Option) journal.Backend {
	entries := NewEntries(b.Entries(), backend, opts...)
	return cachedBackend{
		entries:  entries,
		journals: Journals{JournalsAPI: b.Journals(), entries: entries},
	}
}
