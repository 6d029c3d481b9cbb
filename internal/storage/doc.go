// Package storage keeps a history of finished reports in SQLite.
//
// Tables:
//   - reports: one row per run (persona, job, counts, full report JSON)
//   - report_sections: the ranked sections of each report, for lookups by document
//   - schema_version: applied migrations (semantic versions)
//
// The driver is chosen at build time: modernc.org/sqlite by default, or
// github.com/mattn/go-sqlite3 with -tags sqlite_cgo.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.docrank/reports.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	rec := &storage.ReportRecord{Persona: persona, Job: job, TopK: 5, Report: r}
//	if err := store.SaveReport(ctx, rec); err != nil {
//	    return err
//	}
//	latest, err := store.ListReports(ctx, 10)
//
// Vectors are never persisted; only the assembled reports are.
package storage
