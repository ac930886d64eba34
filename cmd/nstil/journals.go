package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nstil/pkg/journal"
)

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "Manage journals",
	Long:  `List, create and delete the journals that entries are organized into.`,
}

var listJournalsCmd = &cobra.Command{
	Use:   "list",
	Short: "List journals in display order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		spaces, err := a.backend.Journals().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list journals: %w", err)
		}
		return render(cmd.OutOrStdout(), spaces, func(w io.Writer) {
			if len(spaces) == 0 {
				fmt.Fprintln(w, "No journals found.")
				return
			}
			fmt.Fprintln(w, "ID | Name | Description | Created At")
			fmt.Fprintln(w, "---|------|-------------|-----------")
			for _, s := range spaces {
				fmt.Fprintf(w, "%s | %s | %s | %s\n", s.ID, s.Name, s.Description, formatTimestamp(s.CreatedAt))
			}
		})
	},
}

var createJournalCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new journal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		description, _ := cmd.Flags().GetString("description")
		color, _ := cmd.Flags().GetString("color")
		icon, _ := cmd.Flags().GetString("icon")
		s, err := a.backend.Journals().Create(cmd.Context(), journal.SpaceCreate{
			Name:        args[0],
			Description: description,
			Color:       color,
			Icon:        icon,
		})
		if err != nil {
			return fmt.Errorf("failed to create journal: %w", err)
		}
		return render(cmd.OutOrStdout(), s, func(w io.Writer) {
			fmt.Fprintln(w, "Journal created successfully!")
			printJournal(w, s)
		})
	},
}

var deleteJournalCmd = &cobra.Command{
	Use:   "delete <journal-id>",
	Short: "Delete a journal and hide its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.backend.Journals().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Journal %s deleted.\n", args[0])
		return nil
	},
}

func initJournalsCmd() {
	createJournalCmd.Flags().StringP("description", "d", "", "Journal description")
	createJournalCmd.Flags().String("color", "", "Hex color such as #FF6B6B")
	createJournalCmd.Flags().String("icon", "", "Icon name")

	journalsCmd.AddCommand(listJournalsCmd, createJournalCmd, deleteJournalCmd)
}
