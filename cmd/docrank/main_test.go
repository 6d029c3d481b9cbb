package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docrank/internal/report"
	"github.com/dshills/docrank/pkg/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	work := t.TempDir()
	t.Chdir(work)
	t.Setenv("DOCRANK_STORAGE_ENABLED", "false")
	t.Setenv("DOCRANK_EMBEDDING_PROVIDER", "local")
	t.Setenv("DOCRANK_LOG_LEVEL", "error")

	data := filepath.Join(work, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	files := map[string]string{
		"persona.txt": "Food Contractor\n",
		"job.txt":     "Prepare a vegetarian buffet menu",
		"dinner.txt":  "Vegetarian lasagna with spinach.\fGrilled steak with pepper sauce.",
		"sides.md":    "# Sides\n\nRoasted vegetables and hummus.",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(data, name), []byte(content), 0o644))
	}
	return work
}

func TestRankCommand(t *testing.T) {
	work := setup(t)
	outPath := filepath.Join(work, "out", "result.json")

	out, err := execute(t, "rank", "--input-dir", filepath.Join(work, "data"), "--output", outPath, "--top-k", "2")
	require.NoError(t, err)
	assert.Equal(t, "[ok] JSON saved to "+outPath+"\n", out)

	rep, err := report.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"dinner.txt", "sides.md"}, rep.Metadata.InputDocuments)
	assert.Equal(t, "Food Contractor", rep.Metadata.Persona)
	assert.Equal(t, "Prepare a vegetarian buffet menu", rep.Metadata.JobToBeDone)
	assert.Len(t, rep.ExtractedSections, 2)
	assert.Len(t, rep.SubsectionAnalysis, 2)
}

func TestRankCommandInvalidInput(t *testing.T) {
	work := setup(t)
	outPath := filepath.Join(work, "result.json")

	_, err := execute(t, "rank", "--input-dir", filepath.Join(work, "data"), "--persona", "   x", "--job-file", "missing.txt", "--output", outPath)
	require.ErrorIs(t, err, types.ErrInvalidInput)
	assert.NoFileExists(t, outPath)
}

func TestRankCommandBadTopK(t *testing.T) {
	work := setup(t)

	_, err := execute(t, "rank", "--input-dir", filepath.Join(work, "data"), "--top-k", "0")
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestHistoryDisabled(t *testing.T) {
	setup(t)

	_, err := execute(t, "history")
	assert.Error(t, err)
}

func TestHistoryAndShow(t *testing.T) {
	work := setup(t)
	t.Setenv("DOCRANK_STORAGE_ENABLED", "true")
	t.Setenv("DOCRANK_DB_PATH", filepath.Join(work, "reports.db"))

	_, err := execute(t, "rank", "--input-dir", filepath.Join(work, "data"), "--output", filepath.Join(work, "o.json"))
	require.NoError(t, err)

	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Food Contractor")

	out, err = execute(t, "history", "--document", "dinner.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Vegetarian lasagna with spinach.")
	assert.NotContains(t, out, "Roasted vegetables")

	out, err = execute(t, "history", "--document", "unknown.pdf")
	require.NoError(t, err)
	assert.Equal(t, "no stored sections for unknown.pdf\n", out)

	_, err = execute(t, "show", "does-not-exist")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: dev")
	assert.Contains(t, out, ".pdf")
}

func TestRankWithoutHistoryDatabase(t *testing.T) {
	work := setup(t)
	blocker := filepath.Join(work, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))
	t.Setenv("DOCRANK_STORAGE_ENABLED", "true")
	t.Setenv("DOCRANK_DB_PATH", filepath.Join(blocker, "reports.db"))
	outPath := filepath.Join(work, "o.json")

	out, err := execute(t, "rank", "--input-dir", filepath.Join(work, "data"), "--output", outPath)
	require.NoError(t, err)
	assert.Equal(t, "[ok] JSON saved to "+outPath+"\n", out)
	assert.FileExists(t, outPath)

	// commands that only read history still fail
	_, err = execute(t, "history")
	assert.Error(t, err)
}
