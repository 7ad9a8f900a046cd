// Package mcp exposes extraction over the Model Context Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/tsstruct/pkg/extractor"
	"github.com/gnana997/tsstruct/pkg/helpers"
	"github.com/gnana997/tsstruct/pkg/source"
	"github.com/gnana997/tsstruct/pkg/util"
)

const serverVersion = "0.1.0-dev"

// Server implements the tsstruct MCP server.
type Server struct {
	mcpServer *server.MCPServer
	extractor *extractor.Extractor
	helpers   *helpers.Extractor
	store     source.Store
	callLog   *CallLog // nil disables call logging
	logger    *slog.Logger
}

// NewServer creates a server reading files from store. callLog may be nil.
func NewServer(ex *extractor.Extractor, hx *helpers.Extractor, store source.Store, callLog *CallLog, logger *slog.Logger) *Server {
	s := &Server{
		extractor: ex,
		helpers:   hx,
		store:     store,
		callLog:   callLog,
		logger:    util.OrDefault(logger),
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if callLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer("tsstruct", serverVersion, opts...)

	tools := make([]server.ServerTool, 0, len(s.handlers()))
	for _, def := range RegisteredTools() {
		tools = append(tools, server.ServerTool{Tool: def.Tool, Handler: s.handlers()[def.Name]})
	}
	s.mcpServer.AddTools(tools...)

	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
