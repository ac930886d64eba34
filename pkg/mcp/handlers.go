package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unowned-ai/nstil/pkg/form"
	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/logger"
	"github.com/unowned-ai/nstil/pkg/theme"
)

type handlers struct {
	backend journal.Backend
	themes  *theme.Store
	log     logger.Logger
}

func (h *handlers) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the nstil MCP server is alive."),
	), h.ping)

	s.AddTool(mcp.NewTool("list_journals",
		mcp.WithDescription("Lists all journal spaces in display order."),
	), h.listJournals)

	s.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("Lists entries, newest first, one page at a time."),
		mcp.WithString("journal_id", mcp.Description("Optional journal space to restrict the listing to.")),
		mcp.WithString("cursor", mcp.Description("next_cursor from the previous page.")),
		mcp.WithNumber("limit", mcp.Description("Page size, 1-100. Defaults to 20.")),
	), h.listEntries)

	s.AddTool(mcp.NewTool("get_entry",
		mcp.WithDescription("Retrieves a single entry by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id.")),
	), h.getEntry)

	s.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Searches entry titles, bodies and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for.")),
		mcp.WithString("journal_id", mcp.Description("Optional journal space to search in.")),
		mcp.WithString("cursor", mcp.Description("next_cursor from the previous page.")),
		mcp.WithNumber("limit", mcp.Description("Page size, 1-100. Defaults to 20.")),
	), h.searchEntries)

	s.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Writes a new journal entry."),
		mcp.WithString("body", mcp.Required(), mcp.Description("Entry text. Must not be blank.")),
		mcp.WithString("title", mcp.Description("Optional title.")),
		mcp.WithString("journal_id", mcp.Description("Journal space. Defaults to the first one.")),
		mcp.WithString("mood_category", mcp.Description("happy, calm, sad, anxious or angry.")),
		mcp.WithString("mood_specific", mcp.Description("A specific mood belonging to mood_category.")),
		mcp.WithString("tags", mcp.Description(fmt.Sprintf("Comma-separated list of tags, at most %d.", form.MaxTags))),
		mcp.WithString("entry_type", mcp.Description("journal, reflection, gratitude or freewrite.")),
		mcp.WithString("created_at", mcp.Description("Entry date as RFC 3339. Defaults to now.")),
	), h.createEntry)

	s.AddTool(mcp.NewTool("update_entry",
		mcp.WithDescription("Edits an existing entry. Omitted fields keep their value."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id.")),
		mcp.WithString("body", mcp.Description("New entry text.")),
		mcp.WithString("title", mcp.Description("New title.")),
		mcp.WithString("journal_id", mcp.Description("Move the entry to this journal space.")),
		mcp.WithString("mood_category", mcp.Description("New mood category. Use 'none' to clear the mood.")),
		mcp.WithString("mood_specific", mcp.Description("New specific mood.")),
		mcp.WithString("add_tags", mcp.Description(fmt.Sprintf("Comma-separated list of tags to add; the entry keeps at most %d.", form.MaxTags))),
		mcp.WithString("remove_tags", mcp.Description("Comma-separated list of tags to remove.")),
		mcp.WithString("entry_type", mcp.Description("New entry type.")),
		mcp.WithString("created_at", mcp.Description("New entry date as RFC 3339.")),
	), h.updateEntry)

	s.AddTool(mcp.NewTool("delete_entry",
		mcp.WithDescription("Deletes an entry by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id.")),
	), h.deleteEntry)

	s.AddTool(mcp.NewTool("toggle_pin",
		mcp.WithDescription("Pins an unpinned entry or unpins a pinned one."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id.")),
	), h.togglePin)

	s.AddTool(mcp.NewTool("resolve_theme",
		mcp.WithDescription("Resolves a theme mode to its palette. Without arguments reports the active theme."),
		mcp.WithString("mode", mcp.Description("dark, light, oled or auto.")),
		mcp.WithString("os_scheme", mcp.Description("light or dark; only matters for auto.")),
	), h.resolveTheme)
}

func (h *handlers) ping(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_nstil"), nil
}

func (h *handlers) listJournals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spaces, err := h.backend.Journals().List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list journals: %v", err)), nil
	}
	if len(spaces) == 0 {
		return mcp.NewToolResultText("[]"), nil
	}
	return jsonResult(spaces, "journals")
}

func (h *handlers) listEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	journalID, _ := stringArg(request, "journal_id")
	cursor, _ := stringArg(request, "cursor")
	page, err := h.backend.Entries().List(ctx, journal.ListParams{
		Cursor:    cursor,
		Limit:     intArg(request, "limit"),
		JournalID: journalID,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list entries: %v", err)), nil
	}
	return jsonResult(page, "entries")
}

func (h *handlers) getEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := stringArg(request, "id")
	if !ok || id == "" {
		return mcp.NewToolResultError("'id' parameter is required."), nil
	}
	e, err := h.backend.Entries().Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error retrieving entry '%s': %v", id, err)), nil
	}
	return jsonResult(e, "entry")
}

func (h *handlers) searchEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := stringArg(request, "query")
	if !ok || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' parameter is required and must be non-empty."), nil
	}
	journalID, _ := stringArg(request, "journal_id")
	cursor, _ := stringArg(request, "cursor")
	page, err := h.backend.Entries().Search(ctx, journal.SearchParams{
		Query:     query,
		Cursor:    cursor,
		Limit:     intArg(request, "limit"),
		JournalID: journalID,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search entries: %v", err)), nil
	}
	return jsonResult(page, "search results")
}

func (h *handlers) createEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, ok := stringArg(request, "body")
	if !ok || strings.TrimSpace(body) == "" {
		return mcp.NewToolResultError("'body' parameter is required."), nil
	}

	var spaces []journal.Space
	journalID, _ := stringArg(request, "journal_id")
	if journalID == "" {
		var err error
		spaces, err = h.backend.Journals().List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list journals: %v", err)), nil
		}
	}

	saver := &capturingSaver{next: h.backend.Entries()}
	ctrl := form.New(saver, nil, nil, nil, spaces, form.WithLogger(h.log))
	if journalID != "" {
		ctrl.SetJournalID(journalID)
	}
	ctrl.SetBody(body)
	if msg := applyFields(ctrl, request); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	if err := ctrl.AddTags(parseTags(argOrEmpty(request, "tags"))); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid 'tags': %v.", err)), nil
	}
	return h.submit(ctx, ctrl, saver)
}

func (h *handlers) updateEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := stringArg(request, "id")
	if !ok || id == "" {
		return mcp.NewToolResultError("'id' parameter is required."), nil
	}
	existing, err := h.backend.Entries().Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error finding entry '%s' to update: %v", id, err)), nil
	}

	saver := &capturingSaver{next: h.backend.Entries()}
	ctrl := form.New(saver, nil, nil, &existing, nil, form.WithLogger(h.log))
	if body, ok := stringArg(request, "body"); ok {
		ctrl.SetBody(body)
	}
	if journalID, _ := stringArg(request, "journal_id"); journalID != "" {
		ctrl.SetJournalID(journalID)
	}
	if msg := applyFields(ctrl, request); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	for _, tag := range parseTags(argOrEmpty(request, "remove_tags")) {
		ctrl.RemoveTag(tag)
	}
	if err := ctrl.AddTags(parseTags(argOrEmpty(request, "add_tags"))); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid 'add_tags': %v.", err)), nil
	}
	return h.submit(ctx, ctrl, saver)
}

// applyFields copies the optional arguments shared by create and update onto
// the draft. It returns a user-facing message for the first bad value.
func applyFields(ctrl *form.Controller, request mcp.CallToolRequest) string {
	if title, ok := stringArg(request, "title"); ok {
		ctrl.SetTitle(title)
	}
	if v, _ := stringArg(request, "mood_category"); v != "" {
		if v == "none" {
			ctrl.ClearMood()
		} else {
			c, err := journal.ParseMoodCategory(v)
			if err != nil {
				return fmt.Sprintf("Invalid 'mood_category': %v", err)
			}
			ctrl.SetMoodCategory(c)
		}
	}
	if v, _ := stringArg(request, "mood_specific"); v != "" {
		sp, err := journal.ParseMoodSpecific(v)
		if err != nil {
			return fmt.Sprintf("Invalid 'mood_specific': %v", err)
		}
		if cat := ctrl.Draft().Mood.Category; !cat.Owns(sp) {
			return fmt.Sprintf("'mood_specific' %q does not belong to mood category %q.", v, cat)
		}
		ctrl.SetMoodSpecific(sp)
	}
	if v, _ := stringArg(request, "entry_type"); v != "" {
		t, err := journal.ParseEntryType(v)
		if err != nil {
			return fmt.Sprintf("Invalid 'entry_type': %v", err)
		}
		ctrl.SetEntryType(t)
	}
	if v, _ := stringArg(request, "created_at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Sprintf("Invalid 'created_at', expected RFC 3339: %v", err)
		}
		ctrl.SetEntryDate(t)
	}
	return ""
}

func (h *handlers) submit(ctx context.Context, ctrl *form.Controller, saver *capturingSaver) (*mcp.CallToolResult, error) {
	if !ctrl.CanSubmit() {
		return mcp.NewToolResultError("No journal available. Create a journal first or pass 'journal_id'."), nil
	}
	if err := ctrl.Submit(ctx); err != nil {
		if errors.Is(err, form.ErrBodyRequired) {
			return mcp.NewToolResultError("'body' must not be blank."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("%s. %s (%v)", form.AlertTitle, form.AlertMessage, err)), nil
	}
	return jsonResult(saver.saved, "entry")
}

func (h *handlers) deleteEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := stringArg(request, "id")
	if !ok || id == "" {
		return mcp.NewToolResultError("'id' parameter is required."), nil
	}
	if err := h.backend.Entries().Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete entry '%s': %v", id, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Entry '%s' deleted successfully.", id)), nil
}

func (h *handlers) togglePin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := stringArg(request, "id")
	if !ok || id == "" {
		return mcp.NewToolResultError("'id' parameter is required."), nil
	}
	e, err := h.backend.Entries().Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error finding entry '%s': %v", id, err)), nil
	}
	updated, err := journal.TogglePin(ctx, h.backend.Entries(), e)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to toggle pin on '%s': %v", id, err)), nil
	}
	return jsonResult(updated, "entry")
}

func (h *handlers) resolveTheme(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	modeStr, _ := stringArg(request, "mode")
	scheme, _ := stringArg(request, "os_scheme")

	if modeStr == "" {
		if h.themes == nil {
			return mcp.NewToolResultError("No theme store configured; pass 'mode'."), nil
		}
		return jsonResult(h.themes.Current(), "theme")
	}
	mode, err := theme.ParseMode(modeStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid 'mode': %v", err)), nil
	}
	return jsonResult(theme.Resolve(mode, theme.Scheme(scheme)), "theme")
}

func argOrEmpty(request mcp.CallToolRequest, name string) string {
	v, _ := stringArg(request, name)
	return v
}
