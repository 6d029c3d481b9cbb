package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/docrank/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReport(docs ...string) *report.Report {
	r := &report.Report{
		Metadata: report.Metadata{
			InputDocuments:      docs,
			Persona:             "Travel Planner",
			JobToBeDone:         "Plan a trip",
			ProcessingTimestamp: "2025-07-10T13:31:22.632389Z",
		},
		ExtractedSections:  []report.ExtractedSection{},
		SubsectionAnalysis: []report.SubsectionAnalysis{},
	}
	for i, d := range docs {
		r.ExtractedSections = append(r.ExtractedSections, report.ExtractedSection{
			Document: d, SectionTitle: "Title " + d, ImportanceRank: i + 1, PageNumber: i + 2,
		})
		r.SubsectionAnalysis = append(r.SubsectionAnalysis, report.SubsectionAnalysis{
			Document: d, RefinedText: "Text " + d, PageNumber: i + 2,
		})
	}
	return r
}

func TestSaveAndGetReport(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	rec := &ReportRecord{
		Persona:       "Travel Planner",
		Job:           "Plan a trip",
		TopK:          5,
		Provider:      "local",
		DocumentCount: 2,
		SectionCount:  9,
		FailedCount:   1,
		Report:        sampleReport("a.pdf", "b.pdf"),
	}
	require.NoError(t, s.SaveReport(ctx, rec))
	require.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := s.GetReport(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Persona, got.Persona)
	assert.Equal(t, 9, got.SectionCount)
	assert.Equal(t, 1, got.FailedCount)
	assert.Equal(t, "local", got.Provider)
	assert.Equal(t, rec.Report, got.Report)
	assert.WithinDuration(t, rec.CreatedAt, got.CreatedAt, time.Microsecond)

	_, err = s.GetReport(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReports(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveReport(ctx, &ReportRecord{
			ID:        fmt.Sprintf("r%d", i),
			Persona:   "p",
			Job:       "j",
			TopK:      5,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Report:    sampleReport("a.pdf"),
		}))
	}

	list, err := s.ListReports(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)
	assert.Equal(t, "r1", list[1].ID)
	assert.Nil(t, list[0].Report)

	all, err := s.ListReports(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFindSectionsAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	rec := &ReportRecord{Persona: "p", Job: "j", TopK: 5, Report: sampleReport("a.pdf", "b.pdf")}
	require.NoError(t, s.SaveReport(ctx, rec))

	sections, err := s.FindSections(ctx, "b.pdf", 10)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, rec.ID, sections[0].ReportID)
	assert.Equal(t, 2, sections[0].ImportanceRank)
	assert.Equal(t, 3, sections[0].PageNumber)
	assert.Equal(t, "Title b.pdf", sections[0].SectionTitle)

	require.NoError(t, s.DeleteReport(ctx, rec.ID))
	assert.ErrorIs(t, s.DeleteReport(ctx, rec.ID), ErrNotFound)

	// Sections go with the report
	sections, err = s.FindSections(ctx, "b.pdf", 10)
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestSaveReportRequiresReport(t *testing.T) {
	s := newTestStorage(t)
	assert.Error(t, s.SaveReport(context.Background(), &ReportRecord{Persona: "p"}))
}

func TestMigrations(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	v, err := SchemaVersion(ctx, s.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v)

	// Re-applying is a no-op
	require.NoError(t, ApplyMigrations(ctx, s.db))

	require.NoError(t, RollbackMigration(ctx, s.db))
	v, err = SchemaVersion(ctx, s.db)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)

	require.NoError(t, ApplyMigrations(ctx, s.db))
	v, err = SchemaVersion(ctx, s.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v)
}
