package journal

import (
	"context"
)

// EntryCreator creates entries.
type EntryCreator interface {
	Create(ctx context.Context, in EntryCreate) (Entry, error)
}

// EntryUpdater applies partial updates to entries.
type EntryUpdater interface {
	Update(ctx context.Context, id string, patch EntryUpdate) (Entry, error)
}

// EntriesAPI is the full entry contract shared by the remote client, the
// local store and the cache decorator.
type EntriesAPI interface {
	EntryCreator
	EntryUpdater
	Get(ctx context.Context, id string) (Entry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) (Page[Entry], error)
	Search(ctx context.Context, params SearchParams) (Page[Entry], error)
}

// JournalsAPI manages journal spaces.
type JournalsAPI interface {
	List(ctx context.Context) ([]Space, error)
	Create(ctx context.Context, in SpaceCreate) (Space, error)
	Get(ctx context.Context, id string) (Space, error)
	Update(ctx context.Context, id string, patch SpaceUpdate) (Space, error)
	Delete(ctx context.Context, id string) error
}

// Backend bundles both halves of the contract.
type Backend interface {
	Entries() EntriesAPI
	Journals() JournalsAPI
}

// TogglePin flips the pinned flag of e and returns the updated entry.
func TogglePin(ctx context.Context, u EntryUpdater, e Entry) (Entry, error) {
	pinned := !e.IsPinned
	return u.Update(ctx, e.ID, EntryUpdate{IsPinned: &pinned})
}
