// Package mcpserver exposes profile scans as Model Context Protocol tools
// over stdio.
package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"igreport/pkg/history"
	"igreport/pkg/logger"
)

const (
	// ServerName is the name of the MCP server.
	ServerName = "igreport"
)

// Option configures the handlers
type Option func(*Handlers)

// WithSessions scans under the default stored session when one exists
func WithSessions(s SessionSource) Option {
	return func(h *Handlers) {
		h.sessions = s
	}
}

// WithHistory records scans and enables the profile_history tool
func WithHistory(store history.Store) Option {
	return func(h *Handlers) {
		h.history = store
	}
}

// WithLogger sets the handler logger
func WithLogger(log logger.Logger) Option {
	return func(h *Handlers) {
		h.logger = log
	}
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) {
		h.now = now
	}
}

// Server wraps the MCP server
type Server struct {
	mcpServer *server.MCPServer
	handlers  *Handlers
}

// NewServer creates the server and registers its tools
func NewServer(s ProfileScanner, version string, opts ...Option) *Server {
	handlers := NewHandlers(s, opts...)

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: mcpServer,
		handlers:  handlers,
	}
	srv.registerTools()

	return srv
}

func (s *Server) registerTools() {
	for _, tool := range ToolDefinitions() {
		switch tool.Name {
		case ToolScanProfile:
			s.mcpServer.AddTool(tool, s.handlers.HandleScanProfile)
		case ToolCompareProfiles:
			s.mcpServer.AddTool(tool, s.handlers.HandleCompareProfiles)
		}
	}

	if s.handlers.history != nil {
		s.mcpServer.AddTool(toolProfileHistory(), s.handlers.HandleProfileHistory)
	}
}

// ServeContext serves on stdio until ctx is done or stdin closes
func (s *Server) ServeContext(ctx context.Context) error {
	return server.ServeStdio(s.mcpServer, server.WithStdioContextFunc(func(_ context.Context) context.Context {
		return ctx
	}))
}

// Handlers returns the tool handlers
func (s *Server) Handlers() *Handlers {
	return s.handlers
}

// MCPServer returns the underlying MCP server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}
