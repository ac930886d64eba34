package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	nstil "github.com/unowned-ai/nstil/pkg"
	"github.com/unowned-ai/nstil/pkg/config"
	pkgdb "github.com/unowned-ai/nstil/pkg/db"
	"github.com/unowned-ai/nstil/pkg/logger"
	"github.com/unowned-ai/nstil/pkg/utils"
)

var (
	configPath  string
	dbPath      string
	backendFlag string
	outputFlag  string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "nstil",
	Short:         "A journaling companion for your terminal.",
	Long:          `nstil keeps a journal of entries with moods, tags and entry types, stored locally in SQLite or on an nstil server.`,
	Version:       fmt.Sprintf("v%s", nstil.Version),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFlag {
		case outputText, outputJSON, outputYAML:
			return nil
		default:
			return fmt.Errorf("--output must be %s, %s or %s (got %q)", outputText, outputJSON, outputYAML, outputFlag)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for nstil.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(nstil completion bash)

  Zsh:
    $ nstil completion zsh > "${fpath[1]}/_nstil"

  Fish:
    $ nstil completion fish > ~/.config/fish/completions/nstil.fish

  PowerShell:
    PS> nstil completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nstil",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), nstil.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local nstil database",
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the local database schema to the latest version",
	Long: `Connects to the SQLite database (from --db, the config file or the per-OS default)
and applies any pending schema migrations. A missing database is created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		path, err := utils.ResolveAndEnsureDBPath(cfg.Store.Path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Upgrading database at %s (WAL: %t, Sync: %s)\n", path, !cfg.Store.DisableWAL, cfg.Store.Sync)

		conn, err := pkgdb.OpenDBConnection(path, !cfg.Store.DisableWAL, cfg.Store.Sync)
		if err != nil {
			return err
		}
		defer conn.Close()

		return pkgdb.UpgradeDB(cmd.Context(), conn, log, path, pkgdb.TargetSchemaVersion)
	},
}

// loadConfig reads the config file and environment, then applies flag
// overrides and builds the logger.
func loadConfig() (*config.Config, logger.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

func initCmd() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to config.yaml (default: $NSTIL_CONFIG or the per-OS config dir)")
	pf.StringVar(&dbPath, "db", "", "Path to the local database file (overrides store.path)")
	pf.StringVar(&backendFlag, "backend", "", "Backend to use: local or remote (overrides backend)")
	pf.StringVarP(&outputFlag, "output", "o", outputText, "Output format: text, json or yaml")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides log.level)")

	dbCmd.AddCommand(dbUpgradeCmd)

	initJournalsCmd()
	initEntriesCmd()
	initThemeCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, journalsCmd, entriesCmd, themeCmd, tuiCmd, mcpCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, friendlyError(err))
		os.Exit(1)
	}
}
