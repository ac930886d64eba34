package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nstil/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the nstil MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes journals, entries,
search and theme resolution as MCP tools over STDIO. Entries are written through
the same form logic as the editor, so validation and tag limits match.

The server uses the configured backend (local SQLite by default).

Example:
  nstil mcp
  nstil mcp --db /path/to/nstil.db
  nstil mcp --backend remote`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		srv := mcp.NewNstilMCPServer(a.backend, a.themes, a.log)

		// stdout carries JSON-RPC, so status goes to stderr.
		stderr := cmd.ErrOrStderr()
		fmt.Fprintf(stderr, "nstil MCP server started (backend: %s)\n", a.cfg.Backend)
		fmt.Fprintln(stderr, "Available tools: ping, list_journals, list_entries, get_entry, search_entries, create_entry, update_entry, delete_entry, toggle_pin, resolve_theme")
		fmt.Fprintln(stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		return srv.Start()
	},
}
