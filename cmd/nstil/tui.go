package main

import (
	"github.com/spf13/cobra"

	"github.com/unowned-ai/nstil/pkg/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal journal",
	Long: `Browse journals and entries, write and edit entries, pin them and switch
the color theme in an interactive terminal UI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{detectScheme: true})
		if err != nil {
			return err
		}
		defer a.Close()

		return tui.ShowTUI(a.backend, a.themes, a.log)
	},
}
