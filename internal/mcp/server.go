package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/docrank/internal/pipeline"
	"github.com/dshills/docrank/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "docrank"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	runner *pipeline.Runner
	store  storage.Storage // nil disables get_report and list_reports
	logger *slog.Logger
	runs   dirLocks
}

// NewServer creates a new MCP server instance. The caller owns runner and
// store and closes them after Serve returns.
func NewServer(runner *pipeline.Runner, store storage.Storage, logger *slog.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("mcp: runner is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		mcp:    mcpServer,
		runner: runner,
		store:  store,
		logger: logger,
	}

	s.registerTools()

	return s, nil
}

// Serve runs the MCP server on stdio until ctx is cancelled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("mcp_server_started", slog.String("name", ServerName))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(rankDocumentsTool(), s.handleRankDocuments)
	s.mcp.AddTool(getReportTool(), s.handleGetReport)
	s.mcp.AddTool(listReportsTool(), s.handleListReports)
}
