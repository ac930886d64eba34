package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nstil/pkg/form"
	"github.com/unowned-ai/nstil/pkg/journal"
)

var (
	journalIDFlag string
	cursorFlag    string
	limitFlag     int
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage journal entries",
	Long:  `Write, list, search, pin, edit and delete journal entries.`,
}

var listEntriesCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		page, err := a.backend.Entries().List(cmd.Context(), journal.ListParams{
			JournalID: journalIDFlag,
			Cursor:    cursorFlag,
			Limit:     limitFlag,
		})
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		return render(cmd.OutOrStdout(), page, func(w io.Writer) { printEntryPage(w, page) })
	},
}

var searchEntriesCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search entries by title, body or tag",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		page, err := a.backend.Entries().Search(cmd.Context(), journal.SearchParams{
			Query:     strings.Join(args, " "),
			JournalID: journalIDFlag,
			Cursor:    cursorFlag,
			Limit:     limitFlag,
		})
		if err != nil {
			return fmt.Errorf("failed to search entries: %w", err)
		}
		return render(cmd.OutOrStdout(), page, func(w io.Writer) { printEntryPage(w, page) })
	},
}

var getEntryCmd = &cobra.Command{
	Use:   "get <entry-id>",
	Short: "Show a single entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.backend.Entries().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), e, func(w io.Writer) { printEntry(w, e) })
	},
}

var createEntryCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a new entry",
	Long: `Write a new entry. The body comes from --body, or from stdin when --body is "-".
Without --journal the entry goes to the first journal.`,
	Example: `  nstil entries create --body "Had a good day" --tags gym,friends
  nstil entries create --title "Evening" --mood calm --feeling relaxed --body -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		var spaces []journal.Space
		if journalIDFlag == "" {
			spaces, err = a.backend.Journals().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list journals: %w", err)
			}
		}

		sub := newSubmission(cmd, a.backend.Entries())
		ctrl := form.New(sub.saver, sub, sub, nil, spaces, form.WithLogger(a.log))
		if journalIDFlag != "" {
			ctrl.SetJournalID(journalIDFlag)
		}
		if err := applyEntryFlags(cmd, ctrl); err != nil {
			return err
		}
		tags, _ := cmd.Flags().GetStringSlice("tags")
		if err := ctrl.AddTags(tags); err != nil {
			return err
		}
		return sub.run(cmd.Context(), ctrl)
	},
}

var editEntryCmd = &cobra.Command{
	Use:   "edit <entry-id>",
	Short: "Edit an existing entry",
	Long:  `Edit an existing entry. Only the flags you pass are changed.`,
	Example: `  nstil entries edit 3f2c... --add-tag travel --remove-tag work
  nstil entries edit 3f2c... --clear-mood`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		existing, err := a.backend.Entries().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		sub := newSubmission(cmd, a.backend.Entries())
		ctrl := form.New(sub.saver, sub, sub, &existing, nil, form.WithLogger(a.log))
		if journalIDFlag != "" {
			ctrl.SetJournalID(journalIDFlag)
		}
		if clearMood, _ := cmd.Flags().GetBool("clear-mood"); clearMood {
			ctrl.ClearMood()
		}
		if err := applyEntryFlags(cmd, ctrl); err != nil {
			return err
		}
		remove, _ := cmd.Flags().GetStringSlice("remove-tag")
		for _, tag := range remove {
			ctrl.RemoveTag(strings.TrimSpace(tag))
		}
		add, _ := cmd.Flags().GetStringSlice("add-tag")
		if err := ctrl.AddTags(add); err != nil {
			return err
		}
		return sub.run(cmd.Context(), ctrl)
	},
}

var deleteEntryCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.backend.Entries().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entry %s deleted.\n", args[0])
		return nil
	},
}

var pinEntryCmd = &cobra.Command{
	Use:   "pin <entry-id>",
	Short: "Toggle the pinned flag of an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.backend.Entries().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		e, err = journal.TogglePin(cmd.Context(), a.backend.Entries(), e)
		if err != nil {
			return fmt.Errorf("failed to toggle pin: %w", err)
		}
		return render(cmd.OutOrStdout(), e, func(w io.Writer) {
			state := "unpinned"
			if e.IsPinned {
				state = "pinned"
			}
			fmt.Fprintf(w, "Entry %s %s.\n", e.ID, state)
		})
	},
}

// applyEntryFlags copies the flags shared by create and edit onto the draft.
func applyEntryFlags(cmd *cobra.Command, ctrl *form.Controller) error {
	f := cmd.Flags()
	if f.Changed("title") {
		title, _ := f.GetString("title")
		ctrl.SetTitle(title)
	}
	if f.Changed("body") {
		body, _ := f.GetString("body")
		if body == "-" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read body from stdin: %w", err)
			}
			body = string(b)
		}
		ctrl.SetBody(body)
	}
	if f.Changed("mood") {
		v, _ := f.GetString("mood")
		c, err := journal.ParseMoodCategory(v)
		if err != nil {
			return err
		}
		ctrl.SetMoodCategory(c)
	}
	if f.Changed("feeling") {
		v, _ := f.GetString("feeling")
		sp, err := journal.ParseMoodSpecific(v)
		if err != nil {
			return err
		}
		if cat := ctrl.Draft().Mood.Category; !cat.Owns(sp) {
			return fmt.Errorf("feeling %q does not belong to mood %q", v, cat)
		}
		ctrl.SetMoodSpecific(sp)
	}
	if f.Changed("type") {
		v, _ := f.GetString("type")
		t, err := journal.ParseEntryType(v)
		if err != nil {
			return err
		}
		ctrl.SetEntryType(t)
	}
	if f.Changed("date") {
		v, _ := f.GetString("date")
		t, err := parseEntryDate(v)
		if err != nil {
			return err
		}
		ctrl.SetEntryDate(t)
	}
	return nil
}

// parseEntryDate accepts RFC 3339 or a bare local date.
func parseEntryDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use RFC 3339 or YYYY-MM-DD", v)
	}
	return t, nil
}

// submission is the CLI's navigator and alerter. Going back prints the saved
// entry; alerts go to stderr.
type submission struct {
	cmd   *cobra.Command
	saver *recordingSaver
}

func newSubmission(cmd *cobra.Command, next journal.EntriesAPI) *submission {
	return &submission{cmd: cmd, saver: &recordingSaver{next: next}}
}

func (s *submission) GoBack() {
	e := s.saver.saved
	if err := render(s.cmd.OutOrStdout(), e, func(w io.Writer) { printEntry(w, e) }); err != nil {
		fmt.Fprintln(s.cmd.ErrOrStderr(), err)
	}
}

func (s *submission) Alert(title, message string) {
	fmt.Fprintf(s.cmd.ErrOrStderr(), "%s: %s\n", title, message)
}

func (s *submission) run(ctx context.Context, ctrl *form.Controller) error {
	if !ctrl.CanSubmit() {
		return errors.New("no journal available; create one with 'nstil journals create'")
	}
	return ctrl.Submit(ctx)
}

type recordingSaver struct {
	next  journal.EntriesAPI
	saved journal.Entry
}

func (r *recordingSaver) Create(ctx context.Context, in journal.EntryCreate) (journal.Entry, error) {
	e, err := r.next.Create(ctx, in)
	if err == nil {
		r.saved = e
	}
	return e, err
}

func (r *recordingSaver) Update(ctx context.Context, id string, patch journal.EntryUpdate) (journal.Entry, error) {
	e, err := r.next.Update(ctx, id, patch)
	if err == nil {
		r.saved = e
	}
	return e, err
}

func addEntryFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Entry title")
	cmd.Flags().String("body", "", `Entry body ("-" reads stdin)`)
	cmd.Flags().String("mood", "", "Mood category: happy, calm, sad, anxious or angry")
	cmd.Flags().String("feeling", "", "Specific feeling within the mood, e.g. joyful")
	cmd.Flags().String("type", "", "Entry type: journal, reflection, gratitude or freewrite")
	cmd.Flags().String("date", "", "Entry date, RFC 3339 or YYYY-MM-DD")
}

func addCreateEntryFlags(cmd *cobra.Command) {
	addEntryFieldFlags(cmd)
	cmd.Flags().StringVarP(&journalIDFlag, "journal", "j", "", "Journal ID (default: the first journal)")
	cmd.Flags().StringSlice("tags", nil, fmt.Sprintf("Comma-separated tags (at most %d)", form.MaxTags))
	cmd.MarkFlagRequired("body")
}

func addEditEntryFlags(cmd *cobra.Command) {
	addEntryFieldFlags(cmd)
	cmd.Flags().StringVarP(&journalIDFlag, "journal", "j", "", "Move the entry to this journal")
	cmd.Flags().StringSlice("add-tag", nil, fmt.Sprintf("Tags to add (at most %d in total)", form.MaxTags))
	cmd.Flags().StringSlice("remove-tag", nil, "Tags to remove")
	cmd.Flags().Bool("clear-mood", false, "Remove the mood")
}

func initEntriesCmd() {
	for _, c := range []*cobra.Command{listEntriesCmd, searchEntriesCmd} {
		c.Flags().StringVarP(&journalIDFlag, "journal", "j", "", "Only entries of this journal")
		c.Flags().StringVar(&cursorFlag, "cursor", "", "Continue after this cursor (next_cursor of the previous page)")
		c.Flags().IntVarP(&limitFlag, "limit", "n", journal.DefaultPageSize, fmt.Sprintf("Page size (1-%d)", journal.MaxPageSize))
	}

	addCreateEntryFlags(createEntryCmd)
	addEditEntryFlags(editEntryCmd)

	entriesCmd.AddCommand(listEntriesCmd, searchEntriesCmd, getEntryCmd, createEntryCmd, editEntryCmd, deleteEntryCmd, pinEntryCmd)
}
