package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unowned-ai/nstil/pkg/api"
	"github.com/unowned-ai/nstil/pkg/form"
	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/store"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// render writes v in the selected output format. text is used for the text
// format.
func render(w io.Writer, v any, text func(io.Writer)) error {
	switch outputFlag {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		text(w)
		return nil
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}

func printEntry(w io.Writer, e journal.Entry) {
	tags := "-"
	if len(e.Tags) > 0 {
		tags = strings.Join(e.Tags, ", ")
	}
	mood := e.Mood().DisplayLabel()
	if mood == "" {
		mood = "-"
	}
	fmt.Fprintf(w, "ID:         %s\n", e.ID)
	fmt.Fprintf(w, "Journal ID: %s\n", e.JournalID)
	fmt.Fprintf(w, "Title:      %s\n", e.Title)
	fmt.Fprintf(w, "Type:       %s\n", e.EntryType.Label())
	fmt.Fprintf(w, "Mood:       %s\n", mood)
	fmt.Fprintf(w, "Tags:       %s\n", tags)
	fmt.Fprintf(w, "Pinned:     %t\n", e.IsPinned)
	fmt.Fprintf(w, "Created At: %s\n", formatTimestamp(e.CreatedAt))
	fmt.Fprintf(w, "Updated At: %s\n", formatTimestamp(e.UpdatedAt))
	fmt.Fprintf(w, "\n%s\n", e.Body)
}

func printEntryPage(w io.Writer, page journal.Page[journal.Entry]) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}
	fmt.Fprintln(w, "ID | Created At | Pinned | Title")
	fmt.Fprintln(w, "---|------------|--------|------")
	for _, e := range page.Items {
		title := e.Title
		if title == "" {
			title = firstLine(e.Body, 60)
		}
		fmt.Fprintf(w, "%s | %s | %t | %s\n", e.ID, formatTimestamp(e.CreatedAt), e.IsPinned, title)
	}
	if page.HasMore {
		fmt.Fprintf(w, "\nMore entries available: --cursor %s\n", page.NextCursor)
	}
}

func printJournal(w io.Writer, s journal.Space) {
	fmt.Fprintf(w, "ID:          %s\n", s.ID)
	fmt.Fprintf(w, "Name:        %s\n", s.Name)
	fmt.Fprintf(w, "Description: %s\n", s.Description)
	fmt.Fprintf(w, "Sort Order:  %d\n", s.SortOrder)
	fmt.Fprintf(w, "Created At:  %s\n", formatTimestamp(s.CreatedAt))
}

func firstLine(s string, limit int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if r := []rune(line); len(r) > limit {
		return string(r[:limit-2]) + ".."
	}
	return line
}

// friendlyError turns well known failures into messages a user can act on.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, store.ErrEntryNotFound), api.IsNotFound(err):
		return "Error: not found."
	case errors.Is(err, store.ErrJournalNotFound):
		return "Error: journal not found."
	case errors.Is(err, api.ErrNoSession), api.IsUnauthorized(err):
		return "Error: not signed in. Set api.token (or NSTIL_API_TOKEN) to a valid access token."
	case errors.Is(err, form.ErrBodyRequired):
		return "Error: " + form.BodyRequiredMessage + "."
	case errors.Is(err, store.ErrInvalidCursor):
		return "Error: invalid cursor; pass the next_cursor value of a previous page."
	default:
		return "Error: " + err.Error()
	}
}
