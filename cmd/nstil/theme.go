package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nstil/pkg/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the color theme",
}

var getThemeCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the saved theme mode and what it resolves to",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{detectScheme: true})
		if err != nil {
			return err
		}
		defer a.Close()

		r := a.themes.Current()
		return render(cmd.OutOrStdout(), r, func(w io.Writer) { printResolved(w, r) })
	},
}

var setThemeCmd = &cobra.Command{
	Use:       "set <dark|light|oled|auto>",
	Short:     "Save the theme mode",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: modeNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := theme.ParseMode(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context(), appOptions{detectScheme: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.themes.SetMode(cmd.Context(), mode); err != nil {
			return err
		}
		r := a.themes.Current()
		return render(cmd.OutOrStdout(), r, func(w io.Writer) { printResolved(w, r) })
	},
}

var resolveThemeCmd = &cobra.Command{
	Use:   "resolve <mode>",
	Short: "Show the palette a mode resolves to without saving it",
	Example: `  nstil theme resolve auto --scheme light
  nstil theme resolve oled -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scheme, _ := cmd.Flags().GetString("scheme")
		switch theme.Scheme(scheme) {
		case theme.SchemeLight, theme.SchemeDark:
		default:
			return fmt.Errorf("--scheme must be light or dark (got %q)", scheme)
		}
		r := theme.Resolve(theme.Mode(args[0]), theme.Scheme(scheme))
		return render(cmd.OutOrStdout(), r, func(w io.Writer) { printResolved(w, r) })
	},
}

func printResolved(w io.Writer, r theme.Resolved) {
	fmt.Fprintf(w, "Mode:       %s\n", r.Mode)
	fmt.Fprintf(w, "Effective:  %s\n", r.Effective)
	fmt.Fprintf(w, "Dark:       %t\n", r.IsDark)
	fmt.Fprintf(w, "Keyboard:   %s\n", r.KeyboardAppearance)
	fmt.Fprintf(w, "Background: %s\n", r.Palette.Background)
	fmt.Fprintf(w, "Text:       %s\n", r.Palette.TextPrimary)
	fmt.Fprintf(w, "Accent:     %s\n", r.Palette.Accent)
}

func modeNames() []string {
	names := make([]string, len(theme.Modes))
	for i, m := range theme.Modes {
		names[i] = string(m)
	}
	return names
}

func initThemeCmd() {
	resolveThemeCmd.Flags().String("scheme", string(theme.SchemeDark), "OS appearance to resolve auto against: light or dark")
	themeCmd.AddCommand(getThemeCmd, setThemeCmd, resolveThemeCmd)
}
