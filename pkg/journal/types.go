package journal

import (
	"time"
)

// EntryType classifies what kind of writing an entry holds.
type EntryType string

const (
	EntryTypeJournal    EntryType = "journal"
	EntryTypeReflection EntryType = "reflection"
	EntryTypeGratitude  EntryType = "gratitude"
	EntryTypeFreewrite  EntryType = "freewrite"
)

// EntryTypes lists every entry type in display order.
var EntryTypes = []EntryType{
	EntryTypeJournal,
	EntryTypeReflection,
	EntryTypeGratitude,
	EntryTypeFreewrite,
}

// Space is a named collection that entries are organized into.
type Space struct {
	ID          string    `json:"id" yaml:"id"`
	UserID      string    `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string    `json:"color,omitempty" yaml:"color,omitempty"`
	Icon        string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	SortOrder   int       `json:"sort_order" yaml:"sort_order"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// Entry is a single journal record as returned by the API.
type Entry struct {
	ID           string       `json:"id" yaml:"id"`
	UserID       string       `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	JournalID    string       `json:"journal_id" yaml:"journal_id"`
	Title        string       `json:"title" yaml:"title"`
	Body         string       `json:"body" yaml:"body"`
	MoodCategory MoodCategory `json:"mood_category,omitempty" yaml:"mood_category,omitempty"`
	MoodSpecific MoodSpecific `json:"mood_specific,omitempty" yaml:"mood_specific,omitempty"`
	Tags         []string     `json:"tags" yaml:"tags"`
	Location     string       `json:"location,omitempty" yaml:"location,omitempty"`
	EntryType    EntryType    `json:"entry_type" yaml:"entry_type"`
	IsPinned     bool         `json:"is_pinned" yaml:"is_pinned"`
	CreatedAt    time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" yaml:"updated_at"`
}

// Mood returns the entry's mood as a single value.
func (e Entry) Mood() Mood {
	return Mood{Category: e.MoodCategory, Specific: e.MoodSpecific}
}

// Clone returns a deep copy of the entry. Mutating the copy never touches e.
func (e Entry) Clone() Entry {
	c := e
	if e.Tags != nil {
		c.Tags = append([]string(nil), e.Tags...)
	}
	return c
}

// EntryCreate is the payload for creating an entry. Zero-valued optional
// fields are left out of the request.
type EntryCreate struct {
	JournalID    string       `json:"journal_id"`
	Body         string       `json:"body"`
	Title        string       `json:"title,omitempty"`
	MoodCategory MoodCategory `json:"mood_category,omitempty"`
	MoodSpecific MoodSpecific `json:"mood_specific,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Location     string       `json:"location,omitempty"`
	EntryType    EntryType    `json:"entry_type,omitempty"`
	IsPinned     bool         `json:"is_pinned,omitempty"`
	CreatedAt    *time.Time   `json:"created_at,omitempty"`
}

// EntryUpdate is a partial update. Nil pointers are not sent. Tags is only
// left out when nil; an empty slice clears the entry's tags.
type EntryUpdate struct {
	JournalID    *string       `json:"journal_id,omitempty"`
	Title        *string       `json:"title,omitempty"`
	Body         *string       `json:"body,omitempty"`
	MoodCategory *MoodCategory `json:"mood_category,omitempty"`
	MoodSpecific *MoodSpecific `json:"mood_specific,omitempty"`
	Tags         []string      `json:"tags,omitzero"`
	Location     *string       `json:"location,omitempty"`
	EntryType    *EntryType    `json:"entry_type,omitempty"`
	IsPinned     *bool         `json:"is_pinned,omitempty"`
	CreatedAt    *time.Time    `json:"created_at,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u EntryUpdate) IsEmpty() bool {
	return u.JournalID == nil && u.Title == nil && u.Body == nil &&
		u.MoodCategory == nil && u.MoodSpecific == nil && u.Tags == nil &&
		u.Location == nil && u.EntryType == nil && u.IsPinned == nil &&
		u.CreatedAt == nil
}

// SpaceCreate is the payload for creating a journal space.
type SpaceCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// SpaceUpdate is a partial update of a journal space.
type SpaceUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}

// Page is one slice of a cursor-paginated listing.
type Page[T any] struct {
	Items      []T    `json:"items" yaml:"items"`
	NextCursor string `json:"next_cursor,omitempty" yaml:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more" yaml:"has_more"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListParams selects a page of entries. Cursor is the created_at timestamp
// (RFC 3339) of the last entry of the previous page.
type ListParams struct {
	Cursor    string
	Limit     int
	JournalID string
}

// SearchParams selects a page of entries matching Query.
type SearchParams struct {
	Query     string
	Cursor    string
	Limit     int
	JournalID string
}

// NormalizeLimit clamps a requested page size into [1, MaxPageSize],
// treating zero as DefaultPageSize.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}
