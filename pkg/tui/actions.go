package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unowned-ai/nstil/pkg/form"
	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/theme"
)

type journalsMsg []journal.Space

type entriesMsg struct {
	journalID string
	page      journal.Page[journal.Entry]
	more      bool
}

type entryMsg journal.Entry

type entryDeletedMsg struct{ id string }

type journalCreatedMsg journal.Space

type journalDeletedMsg struct{ id string }

type themeMsg theme.Resolved

type submitDoneMsg struct{ err error }

// List journals from the backend and return tea data
func listJournals(b journal.Backend) tea.Cmd {
	return func() tea.Msg {
		spaces, err := b.Journals().List(context.Background())
		if err != nil {
			return err
		}
		return journalsMsg(spaces)
	}
}

// List the first page of entries for a journal
func listEntries(b journal.Backend, journalID string) tea.Cmd {
	return func() tea.Msg {
		page, err := b.Entries().List(context.Background(), journal.ListParams{JournalID: journalID})
		if err != nil {
			return err
		}
		return entriesMsg{journalID: journalID, page: page}
	}
}

// Fetch the page after cursor; the result is appended to the list
func moreEntries(b journal.Backend, journalID, cursor string) tea.Cmd {
	return func() tea.Msg {
		page, err := b.Entries().List(context.Background(), journal.ListParams{JournalID: journalID, Cursor: cursor})
		if err != nil {
			return err
		}
		return entriesMsg{journalID: journalID, page: page, more: true}
	}
}

func createJournal(b journal.Backend, name, description string) tea.Cmd {
	return func() tea.Msg {
		s, err := b.Journals().Create(context.Background(), journal.SpaceCreate{Name: name, Description: description})
		if err != nil {
			return err
		}
		return journalCreatedMsg(s)
	}
}

func deleteJournal(b journal.Backend, id string) tea.Cmd {
	return func() tea.Msg {
		if err := b.Journals().Delete(context.Background(), id); err != nil {
			return err
		}
		return journalDeletedMsg{id: id}
	}
}

func getEntry(b journal.Backend, id string) tea.Cmd {
	return func() tea.Msg {
		e, err := b.Entries().Get(context.Background(), id)
		if err != nil {
			return err
		}
		return entryMsg(e)
	}
}

func togglePin(b journal.Backend, e journal.Entry) tea.Cmd {
	return func() tea.Msg {
		updated, err := journal.TogglePin(context.Background(), b.Entries(), e)
		if err != nil {
			return err
		}
		return entryMsg(updated)
	}
}

func deleteEntry(b journal.Backend, id string) tea.Cmd {
	return func() tea.Msg {
		if err := b.Entries().Delete(context.Background(), id); err != nil {
			return err
		}
		return entryDeletedMsg{id: id}
	}
}

// submitForm runs the controller's submission off the update loop.
func submitForm(ctrl *form.Controller) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(context.Background())}
	}
}

// cycleTheme persists the next mode. The new state arrives through the
// store subscription, or directly when no program is attached.
func cycleTheme(store *theme.Store) tea.Cmd {
	return func() tea.Msg {
		if err := store.SetMode(context.Background(), store.Mode().Next()); err != nil {
			return err
		}
		return themeMsg(store.Current())
	}
}
