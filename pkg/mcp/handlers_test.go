package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/nstil/pkg/db"
	"github.com/unowned-ai/nstil/pkg/form"
	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/store"
	"github.com/unowned-ai/nstil/pkg/theme"
)

func setupHandlers(t *testing.T) (*handlers, journal.Space) {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenDBConnection(":memory:", true, "NORMAL")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.InitializeSchema(ctx, conn, db.TargetSchemaVersion))

	s := store.New(conn, nil)
	space, err := s.EnsureDefaultJournal(ctx)
	require.NoError(t, err)

	themes := theme.NewStore(s.Settings(), nil)
	themes.Initialize(ctx)
	return &handlers{backend: s, themes: themes}, space
}

func call(t *testing.T, fn server.ToolHandlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text, res.IsError
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func TestPing(t *testing.T) {
	h, _ := setupHandlers(t)
	out, isErr := call(t, h.ping, nil)
	assert.False(t, isErr)
	assert.Equal(t, "pong_nstil", out)
}

func TestCreateEntryDefaultsToFirstJournal(t *testing.T) {
	h, space := setupHandlers(t)

	out, isErr := call(t, h.createEntry, map[string]any{
		"body":          "  Had a good day ",
		"tags":          "gym, friends,,gym",
		"mood_category": "happy",
		"mood_specific": "proud",
	})
	require.False(t, isErr, out)

	e := decode[journal.Entry](t, out)
	assert.Equal(t, space.ID, e.JournalID)
	assert.Equal(t, "Had a good day", e.Body)
	assert.Equal(t, []string{"gym", "friends"}, e.Tags)
	assert.Equal(t, journal.MoodProud, e.MoodSpecific)
	assert.Equal(t, journal.EntryTypeJournal, e.EntryType)
}

func TestCreateEntryRejectsBadInput(t *testing.T) {
	h, _ := setupHandlers(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"blank body", map[string]any{"body": "   "}, "'body'"},
		{"foreign specific", map[string]any{"body": "x", "mood_category": "sad", "mood_specific": "proud"}, "does not belong"},
		{"bad type", map[string]any{"body": "x", "entry_type": "poem"}, "entry_type"},
		{"bad date", map[string]any{"body": "x", "created_at": "yesterday"}, "created_at"},
		{"unknown journal", map[string]any{"body": "x", "journal_id": "nope"}, "Unable to save"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, isErr := call(t, h.createEntry, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestUpdateEntryKeepsOmittedFields(t *testing.T) {
	h, _ := setupHandlers(t)
	out, isErr := call(t, h.createEntry, map[string]any{
		"body": "first", "title": "T", "tags": "a,b", "mood_category": "calm", "mood_specific": "content",
	})
	require.False(t, isErr, out)
	created := decode[journal.Entry](t, out)

	out, isErr = call(t, h.updateEntry, map[string]any{
		"id":          created.ID,
		"add_tags":    "c",
		"remove_tags": "a",
		"entry_type":  "gratitude",
	})
	require.False(t, isErr, out)
	updated := decode[journal.Entry](t, out)
	assert.Equal(t, "first", updated.Body)
	assert.Equal(t, "T", updated.Title)
	assert.Equal(t, []string{"b", "c"}, updated.Tags)
	assert.Equal(t, journal.EntryTypeGratitude, updated.EntryType)
	assert.Equal(t, journal.MoodContent, updated.MoodSpecific)

	out, isErr = call(t, h.updateEntry, map[string]any{"id": created.ID, "mood_category": "none"})
	require.False(t, isErr, out)
	cleared := decode[journal.Entry](t, out)
	assert.True(t, cleared.Mood().IsZero())

	out, isErr = call(t, h.updateEntry, map[string]any{"id": "missing"})
	assert.True(t, isErr)
	assert.Contains(t, out, "missing")
}

func TestTagLimitIsReported(t *testing.T) {
	h, _ := setupHandlers(t)
	tags := func(n int) string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("t%d", i)
		}
		return strings.Join(out, ",")
	}

	out, isErr := call(t, h.createEntry, map[string]any{"body": "b", "tags": tags(form.MaxTags + 1)})
	assert.True(t, isErr)
	assert.Contains(t, out, "'tags'")

	out, isErr = call(t, h.listEntries, nil)
	require.False(t, isErr, out)
	assert.Empty(t, decode[journal.Page[journal.Entry]](t, out).Items, "nothing is saved")

	out, isErr = call(t, h.createEntry, map[string]any{"body": "b", "tags": "a, ,b,"})
	require.False(t, isErr, out)
	created := decode[journal.Entry](t, out)
	assert.Equal(t, []string{"a", "b"}, created.Tags)

	out, isErr = call(t, h.updateEntry, map[string]any{"id": created.ID, "add_tags": tags(form.MaxTags - 1)})
	assert.True(t, isErr)
	assert.Contains(t, out, "'add_tags'")

	out, isErr = call(t, h.getEntry, map[string]any{"id": created.ID})
	require.False(t, isErr, out)
	assert.Equal(t, []string{"a", "b"}, decode[journal.Entry](t, out).Tags)
}

func TestListSearchPinDelete(t *testing.T) {
	h, _ := setupHandlers(t)
	for _, body := range []string{"went running", "quiet evening", "running again"} {
		_, isErr := call(t, h.createEntry, map[string]any{"body": body})
		require.False(t, isErr)
	}

	out, isErr := call(t, h.listEntries, map[string]any{"limit": float64(2)})
	require.False(t, isErr, out)
	page := decode[journal.Page[journal.Entry]](t, out)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	out, isErr = call(t, h.searchEntries, map[string]any{"query": "running"})
	require.False(t, isErr, out)
	hits := decode[journal.Page[journal.Entry]](t, out)
	require.Len(t, hits.Items, 2)

	id := hits.Items[0].ID
	out, isErr = call(t, h.togglePin, map[string]any{"id": id})
	require.False(t, isErr, out)
	assert.True(t, decode[journal.Entry](t, out).IsPinned)

	out, isErr = call(t, h.getEntry, map[string]any{"id": id})
	require.False(t, isErr, out)
	assert.True(t, decode[journal.Entry](t, out).IsPinned)

	_, isErr = call(t, h.deleteEntry, map[string]any{"id": id})
	require.False(t, isErr)
	_, isErr = call(t, h.getEntry, map[string]any{"id": id})
	assert.True(t, isErr)

	_, isErr = call(t, h.searchEntries, map[string]any{"query": " "})
	assert.True(t, isErr)
}

func TestListJournals(t *testing.T) {
	h, space := setupHandlers(t)
	out, isErr := call(t, h.listJournals, nil)
	require.False(t, isErr)
	spaces := decode[[]journal.Space](t, out)
	require.Len(t, spaces, 1)
	assert.Equal(t, space.ID, spaces[0].ID)
}

func TestResolveTheme(t *testing.T) {
	h, _ := setupHandlers(t)

	out, isErr := call(t, h.resolveTheme, map[string]any{"mode": "auto", "os_scheme": "light"})
	require.False(t, isErr, out)
	r := decode[theme.Resolved](t, out)
	assert.Equal(t, theme.ModeLight, r.Effective)
	assert.False(t, r.IsDark)
	assert.Equal(t, theme.Light(), r.Palette)

	out, isErr = call(t, h.resolveTheme, nil)
	require.False(t, isErr, out)
	assert.Equal(t, theme.DefaultMode, decode[theme.Resolved](t, out).Mode)

	_, isErr = call(t, h.resolveTheme, map[string]any{"mode": "sepia"})
	assert.True(t, isErr)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseTags(" a , ,b,"))
	assert.Nil(t, parseTags(""))
}
