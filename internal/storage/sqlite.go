package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/docrank/internal/report"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// Fixed width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultListLimit applies when ListReports or FindSections get limit <= 0
const DefaultListLimit = 20

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens (or creates) the database at dbPath and applies migrations.
// Parent directories are created as needed.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveReport stores the report and its ranked sections in one transaction
func (s *SQLiteStorage) SaveReport(ctx context.Context, rec *ReportRecord) error {
	if rec == nil || rec.Report == nil {
		return fmt.Errorf("report is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertReport(ctx, tx, rec, data); err != nil {
		return err
	}
	if err := insertSections(ctx, tx, rec.ID, rec.Report.ExtractedSections); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertReport(ctx context.Context, q querier, rec *ReportRecord, data []byte) error {
	query := `
		INSERT INTO reports (id, persona, job, top_k, provider, document_count, section_count, failed_count, report_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		rec.ID, rec.Persona, rec.Job, rec.TopK, rec.Provider,
		rec.DocumentCount, rec.SectionCount, rec.FailedCount,
		string(data), rec.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func insertSections(ctx context.Context, q querier, reportID string, sections []report.ExtractedSection) error {
	query := `
		INSERT INTO report_sections (report_id, importance_rank, document, page_number, section_title)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, es := range sections {
		if _, err := q.ExecContext(ctx, query, reportID, es.ImportanceRank, es.Document, es.PageNumber, es.SectionTitle); err != nil {
			return fmt.Errorf("failed to insert section %d: %w", es.ImportanceRank, err)
		}
	}
	return nil
}

// GetReport loads one report with its full JSON
func (s *SQLiteStorage) GetReport(ctx context.Context, id string) (*ReportRecord, error) {
	query := `
		SELECT id, persona, job, top_k, provider, document_count, section_count, failed_count, created_at, report_json
		FROM reports WHERE id = ?
	`
	var rec ReportRecord
	var createdAt, data string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Persona, &rec.Job, &rec.TopK, &rec.Provider,
		&rec.DocumentCount, &rec.SectionCount, &rec.FailedCount, &createdAt, &data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}

	var r report.Report
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	rec.Report = &r

	return &rec, nil
}

// ListReports returns report summaries, newest first
func (s *SQLiteStorage) ListReports(ctx context.Context, limit int) ([]ReportRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, persona, job, top_k, provider, document_count, section_count, failed_count, created_at
		FROM reports
		ORDER BY created_at DESC, id
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]ReportRecord, 0)
	for rows.Next() {
		var rec ReportRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Persona, &rec.Job, &rec.TopK, &rec.Provider,
			&rec.DocumentCount, &rec.SectionCount, &rec.FailedCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// FindSections returns the stored sections of one document, newest report first
func (s *SQLiteStorage) FindSections(ctx context.Context, document string, limit int) ([]StoredSection, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT rs.report_id, rs.document, rs.page_number, rs.importance_rank, rs.section_title, r.created_at
		FROM report_sections rs
		JOIN reports r ON r.id = rs.report_id
		WHERE rs.document = ?
		ORDER BY r.created_at DESC, rs.importance_rank
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, document, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find sections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sections := make([]StoredSection, 0)
	for rows.Next() {
		var ss StoredSection
		var createdAt string
		if err := rows.Scan(&ss.ReportID, &ss.Document, &ss.PageNumber, &ss.ImportanceRank, &ss.SectionTitle, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		if ss.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
		sections = append(sections, ss)
	}

	return sections, rows.Err()
}

// DeleteReport removes a report and its sections
func (s *SQLiteStorage) DeleteReport(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return nil
}
