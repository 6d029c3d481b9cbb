package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docrank/internal/embedder"
	"github.com/dshills/docrank/internal/extractor"
	"github.com/dshills/docrank/internal/pipeline"
	"github.com/dshills/docrank/internal/ranking"
	"github.com/dshills/docrank/internal/storage"
)

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()

	var store storage.Storage
	if withStore {
		s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "reports.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		store = s
	}

	runner, err := pipeline.NewRunner(pipeline.Options{
		Extractor: extractor.New(extractor.Config{Workers: 2}, nil),
		Engine:    ranking.NewEngine(embedder.NewLocalProvider(0, nil), nil),
		Store:     store,
	})
	require.NoError(t, err)

	srv, err := NewServer(runner, store, nil)
	require.NoError(t, err)
	return srv
}

func docsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fruit.txt"), []byte("Apples are fruit.\fPears are fruit too."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trains.md"), []byte("# Trains\n\nTrains run on rails."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "persona.txt"), []byte("ignored"), 0o644))
	return dir
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func errorCode(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok, "expected *MCPError, got %T", err)
	return mcpErr.Code
}

func TestNewServerRequiresRunner(t *testing.T) {
	_, err := NewServer(nil, nil, nil)
	assert.Error(t, err)
}

func TestRankDocuments(t *testing.T) {
	srv := newTestServer(t, true)
	dir := docsDir(t)
	ctx := context.Background()

	res, err := srv.handleRankDocuments(ctx, call(map[string]interface{}{
		"path":    dir,
		"persona": "Nutritionist",
		"job":     "compare fruit",
		"top_k":   float64(2),
	}))
	require.NoError(t, err)

	out := resultJSON(t, res)
	assert.NotEmpty(t, out["id"])
	assert.Equal(t, float64(3), out["section_count"])

	rep := out["report"].(map[string]interface{})
	meta := rep["metadata"].(map[string]interface{})
	assert.Equal(t, []interface{}{"fruit.txt", "trains.md"}, meta["input_documents"])
	assert.Len(t, rep["extracted_sections"], 2)
	assert.Len(t, rep["subsection_analysis"], 2)

	t.Run("get_report returns the stored report", func(t *testing.T) {
		got, err := srv.handleGetReport(ctx, call(map[string]interface{}{"id": out["id"]}))
		require.NoError(t, err)
		stored := resultJSON(t, got)
		assert.Equal(t, "Nutritionist", stored["persona"])
		assert.Equal(t, rep["extracted_sections"], stored["report"].(map[string]interface{})["extracted_sections"])
	})

	t.Run("list_reports includes it", func(t *testing.T) {
		got, err := srv.handleListReports(ctx, call(map[string]interface{}{}))
		require.NoError(t, err)
		list := resultJSON(t, got)
		assert.Equal(t, float64(1), list["count"])
	})
}

func TestRankDocumentsErrors(t *testing.T) {
	srv := newTestServer(t, false)
	dir := docsDir(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
		code int
	}{
		{"missing path", map[string]interface{}{"persona": "p", "job": "j"}, ErrorCodeInvalidParams},
		{"relative path", map[string]interface{}{"path": "docs", "persona": "p", "job": "j"}, ErrorCodeInvalidParams},
		{"bad top_k", map[string]interface{}{"path": dir, "persona": "p", "job": "j", "top_k": float64(0)}, ErrorCodeInvalidParams},
		{"blank persona", map[string]interface{}{"path": dir, "persona": " ", "job": "j"}, ErrorCodeInvalidParams},
		{"no documents", map[string]interface{}{"path": t.TempDir(), "persona": "p", "job": "j"}, ErrorCodeNoDocuments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.handleRankDocuments(ctx, call(tt.args))
			assert.Equal(t, tt.code, errorCode(t, err))
		})
	}
}

func TestReportsWithoutStorage(t *testing.T) {
	srv := newTestServer(t, false)
	ctx := context.Background()

	_, err := srv.handleGetReport(ctx, call(map[string]interface{}{"id": "abc"}))
	assert.Equal(t, ErrorCodeStorageUnavailable, errorCode(t, err))

	_, err = srv.handleListReports(ctx, call(nil))
	assert.Equal(t, ErrorCodeStorageUnavailable, errorCode(t, err))
}

func TestGetReportNotFound(t *testing.T) {
	srv := newTestServer(t, true)

	_, err := srv.handleGetReport(context.Background(), call(map[string]interface{}{"id": "missing"}))
	assert.Equal(t, ErrorCodeReportNotFound, errorCode(t, err))

	_, err = srv.handleGetReport(context.Background(), call(map[string]interface{}{}))
	assert.Equal(t, ErrorCodeInvalidParams, errorCode(t, err))
}

func TestListReportsLimit(t *testing.T) {
	srv := newTestServer(t, true)

	_, err := srv.handleListReports(context.Background(), call(map[string]interface{}{"limit": float64(500)}))
	assert.Equal(t, ErrorCodeInvalidParams, errorCode(t, err))
}

func TestRankDocumentsInProgress(t *testing.T) {
	srv := newTestServer(t, false)
	dir := docsDir(t)

	release, ok := srv.runs.tryAcquire(dir + "/")
	require.True(t, ok)

	_, err := srv.handleRankDocuments(context.Background(), call(map[string]interface{}{
		"path":    dir,
		"persona": "p",
		"job":     "j",
	}))
	assert.Equal(t, ErrorCodeRankingInProgress, errorCode(t, err))

	release()
	_, err = srv.handleRankDocuments(context.Background(), call(map[string]interface{}{
		"path":    dir,
		"persona": "p",
		"job":     "j",
	}))
	assert.NoError(t, err)
}

func TestDirLocks(t *testing.T) {
	var d dirLocks

	release, ok := d.tryAcquire("/data")
	require.True(t, ok)

	_, ok = d.tryAcquire("/data/")
	assert.False(t, ok)

	other, ok := d.tryAcquire("/other")
	require.True(t, ok)
	other()

	release()
	release, ok = d.tryAcquire("/data")
	assert.True(t, ok)
	release()
}
