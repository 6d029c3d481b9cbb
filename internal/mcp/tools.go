package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/docrank/internal/pipeline"
	"github.com/dshills/docrank/internal/storage"
	"github.com/dshills/docrank/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeNoDocuments        = -32001 // Directory holds no supported documents
	ErrorCodeRankingInProgress  = -32002 // Another run is already ranking this directory
	ErrorCodeReportNotFound     = -32003 // No stored report with that id
	ErrorCodeEmbeddingFailed    = -32005 // Embedding provider failed
	ErrorCodeStorageUnavailable = -32006 // Report history is disabled
)

const maxLimit = 100

// handleRankDocuments handles the rank_documents tool invocation
func (s *Server) handleRankDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, missingParam("path")
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	persona := getStringDefault(args, "persona", "")
	job := getStringDefault(args, "job", "")

	topK := getIntDefault(args, "top_k", 5)
	if topK < 1 || topK > maxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 100", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	docs, err := pipeline.DiscoverDocuments(path, "persona.txt", "job.txt")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list documents", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if len(docs) == 0 {
		return nil, newMCPError(ErrorCodeNoDocuments, ErrNoDocuments.Error(), map[string]interface{}{
			"path": path,
		})
	}

	release, ok := s.runs.tryAcquire(path)
	if !ok {
		return nil, newMCPError(ErrorCodeRankingInProgress, "ranking already in progress for this directory", map[string]interface{}{
			"path": path,
		})
	}
	defer release()

	res, err := s.runner.Run(ctx, pipeline.Request{
		Documents: docs,
		Persona:   persona,
		Job:       job,
		TopK:      topK,
	})
	if err != nil {
		return nil, runError(err)
	}

	failures := make([]map[string]interface{}, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, map[string]interface{}{
			"document": f.Document,
			"stage":    f.Stage,
			"error":    f.Err.Error(),
		})
	}

	response := map[string]interface{}{
		"id":            res.ID,
		"report":        res.Report,
		"section_count": res.SectionCount,
		"failures":      failures,
		"duration_ms":   res.Duration.Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetReport handles the get_report tool invocation
func (s *Server) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, missingParam("id")
	}
	if s.store == nil {
		return nil, newMCPError(ErrorCodeStorageUnavailable, "report history is disabled", nil)
	}

	rec, err := s.store.GetReport(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeReportNotFound, "report not found", map[string]interface{}{
			"id": id,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get report", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := summary(*rec)
	response["report"] = rec.Report

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListReports handles the list_reports tool invocation
func (s *Server) handleListReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	limit := getIntDefault(args, "limit", storage.DefaultListLimit)
	if limit < 1 || limit > maxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}
	if s.store == nil {
		return nil, newMCPError(ErrorCodeStorageUnavailable, "report history is disabled", nil)
	}

	recs, err := s.store.ListReports(ctx, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list reports", map[string]interface{}{
			"error": err.Error(),
		})
	}

	reports := make([]map[string]interface{}, 0, len(recs))
	for _, rec := range recs {
		reports = append(reports, summary(rec))
	}

	response := map[string]interface{}{
		"count":   len(reports),
		"reports": reports,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

func summary(rec storage.ReportRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":             rec.ID,
		"persona":        rec.Persona,
		"job":            rec.Job,
		"top_k":          rec.TopK,
		"provider":       rec.Provider,
		"document_count": rec.DocumentCount,
		"section_count":  rec.SectionCount,
		"failed_count":   rec.FailedCount,
		"created_at":     rec.CreatedAt.Format(time.RFC3339),
	}
}

// runError maps a pipeline error to an MCP error code
func runError(err error) error {
	var ierr *types.InputError
	switch {
	case errors.As(err, &ierr):
		return newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{
			"param":  ierr.Field,
			"reason": ierr.Reason,
		})
	case errors.Is(err, types.ErrEmbeddingFailed):
		return newMCPError(ErrorCodeEmbeddingFailed, "embedding failed", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, "ranking failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func missingParam(name string) error {
	return newMCPError(ErrorCodeInvalidParams, name+" parameter is required", map[string]interface{}{
		"param":  name,
		"reason": "missing or empty",
	})
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that path is an absolute, readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoDocuments     = errors.New("directory does not contain supported documents")
)
