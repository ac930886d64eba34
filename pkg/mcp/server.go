package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	nstil "github.com/unowned-ai/nstil/pkg"
	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/logger"
	"github.com/unowned-ai/nstil/pkg/theme"
)

type NstilMCPServer struct {
	mcpServer *server.MCPServer
	h         *handlers
}

// NewNstilMCPServer builds an MCP server over backend with every tool
// registered. themes may be nil, in which case resolve_theme only works with
// an explicit mode.
func NewNstilMCPServer(backend journal.Backend, themes *theme.Store, log logger.Logger) *NstilMCPServer {
	if log == nil {
		log = logger.Nop()
	}
	s := server.NewMCPServer(
		"nstil MCP Server",
		nstil.Version,
		server.WithLogging(),
		server.WithRecovery(),
	)
	h := &handlers{backend: backend, themes: themes, log: log}
	h.register(s)
	return &NstilMCPServer{mcpServer: s, h: h}
}

// Start runs the stdio event loop until stdin closes.
func (s *NstilMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *NstilMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}
