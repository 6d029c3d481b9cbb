package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/docrank/internal/parser"
	"github.com/dshills/docrank/internal/pipeline"
	"github.com/dshills/docrank/internal/report"
	"github.com/dshills/docrank/pkg/types"
)

// handleRank runs one ranking over the uploaded documents and responds with
// the report. Documents are reported in upload order.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required in field \"files\"", http.StatusBadRequest)
		return
	}

	topK := report.DefaultTopK
	if v := r.FormValue("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, fmt.Sprintf("top_k must be a positive integer, got %q", v), http.StatusBadRequest)
			return
		}
		topK = n
	}

	dir, err := os.MkdirTemp("", "docrank-upload-*")
	if err != nil {
		jsonError(w, "failed to stage uploads", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(dir)

	paths := make([]string, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, fh := range files {
		name := sanitizeFilename(fh.Filename)
		if !parser.IsSupported(name) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(name)), http.StatusBadRequest)
			return
		}
		if seen[name] {
			jsonError(w, fmt.Sprintf("duplicate file name: %s", name), http.StatusBadRequest)
			return
		}
		seen[name] = true

		path := filepath.Join(dir, name)
		if err := saveUpload(fh, path); err != nil {
			jsonError(w, "failed to read file "+name, http.StatusInternalServerError)
			return
		}
		paths = append(paths, path)
	}

	res, err := s.runner.Run(r.Context(), pipeline.Request{
		Documents: paths,
		Persona:   r.FormValue("persona"),
		Job:       r.FormValue("job"),
		TopK:      topK,
	})
	if err != nil {
		s.log.Warn("rank_failed", "error", err)
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	if res.ID != "" {
		w.Header().Set("X-Report-ID", res.ID)
	}
	if len(res.Failures) > 0 {
		skipped := make([]string, len(res.Failures))
		for i, f := range res.Failures {
			skipped[i] = f.Document
		}
		w.Header().Set("X-Skipped-Documents", strings.Join(skipped, ","))
	}
	w.Header().Set("Content-Type", "application/json")
	if err := report.Encode(w, res.Report); err != nil {
		s.log.Error("response_write_failed", "error", err)
	}
}

func saveUpload(fh *multipart.FileHeader, path string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// statusFor maps a pipeline error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrEmbeddingFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
