package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dshills/docrank/internal/report"
	"github.com/dshills/docrank/internal/storage"
)

type reportSummary struct {
	ID            string         `json:"id"`
	Persona       string         `json:"persona"`
	Job           string         `json:"job"`
	TopK          int            `json:"top_k"`
	Provider      string         `json:"provider"`
	DocumentCount int            `json:"document_count"`
	SectionCount  int            `json:"section_count"`
	FailedCount   int            `json:"failed_count"`
	CreatedAt     string         `json:"created_at"`
	Report        *report.Report `json:"report,omitempty"`
}

func toSummary(rec storage.ReportRecord) reportSummary {
	return reportSummary{
		ID:            rec.ID,
		Persona:       rec.Persona,
		Job:           rec.Job,
		TopK:          rec.TopK,
		Provider:      rec.Provider,
		DocumentCount: rec.DocumentCount,
		SectionCount:  rec.SectionCount,
		FailedCount:   rec.FailedCount,
		CreatedAt:     rec.CreatedAt.UTC().Format(time.RFC3339),
		Report:        rec.Report,
	}
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "report history is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := storage.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := s.store.ListReports(r.Context(), limit)
	if err != nil {
		s.log.Error("list_reports_failed", "error", err)
		jsonError(w, "failed to list reports", http.StatusInternalServerError)
		return
	}

	out := make([]reportSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toSummary(rec))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"reports": out,
		"count":   len(out),
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "report history is disabled", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "reportID")
	rec, err := s.store.GetReport(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get_report_failed", "id", id, "error", err)
		jsonError(w, "failed to get report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toSummary(*rec))
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "report history is disabled", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "reportID")
	err := s.store.DeleteReport(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete_report_failed", "id", id, "error", err)
		jsonError(w, "failed to delete report", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type sectionEntry struct {
	ReportID       string `json:"report_id"`
	Document       string `json:"document"`
	PageNumber     int    `json:"page_number"`
	ImportanceRank int    `json:"importance_rank"`
	SectionTitle   string `json:"section_title"`
	CreatedAt      string `json:"created_at"`
}

// handleDocumentSections lists the ranked sections of one document across
// stored reports, newest report first.
func (s *Server) handleDocumentSections(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "report history is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := storage.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	document := chi.URLParam(r, "document")
	sections, err := s.store.FindSections(r.Context(), document, limit)
	if err != nil {
		s.log.Error("find_sections_failed", "document", document, "error", err)
		jsonError(w, "failed to find sections", http.StatusInternalServerError)
		return
	}

	out := make([]sectionEntry, 0, len(sections))
	for _, ss := range sections {
		out = append(out, sectionEntry{
			ReportID:       ss.ReportID,
			Document:       ss.Document,
			PageNumber:     ss.PageNumber,
			ImportanceRank: ss.ImportanceRank,
			SectionTitle:   ss.SectionTitle,
			CreatedAt:      ss.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document": document,
		"sections": out,
		"count":    len(out),
	})
}
