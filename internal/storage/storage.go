package storage

import (
	"context"
	"time"

	"github.com/dshills/docrank/internal/report"
)

// Storage persists finished reports. Embeddings are never stored.
type Storage interface {
	// SaveReport stores rec and assigns rec.ID when it is empty
	SaveReport(ctx context.Context, rec *ReportRecord) error
	GetReport(ctx context.Context, id string) (*ReportRecord, error)
	// ListReports returns summaries, newest first. Report is nil on summaries.
	ListReports(ctx context.Context, limit int) ([]ReportRecord, error)
	// FindSections returns stored sections of one document, newest report first
	FindSections(ctx context.Context, document string, limit int) ([]StoredSection, error)
	DeleteReport(ctx context.Context, id string) error

	Close() error
}

// ReportRecord is one stored run
type ReportRecord struct {
	ID            string
	Persona       string
	Job           string
	TopK          int
	Provider      string
	DocumentCount int
	SectionCount  int // sections ranked, before the top-k cut
	FailedCount   int
	CreatedAt     time.Time
	Report        *report.Report
}

// StoredSection is one ranked section of a stored report
type StoredSection struct {
	ReportID       string
	Document       string
	PageNumber     int
	ImportanceRank int
	SectionTitle   string
	CreatedAt      time.Time
}
