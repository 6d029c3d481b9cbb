package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/docrank/internal/extractor"
	"github.com/dshills/docrank/internal/ranking"
	"github.com/dshills/docrank/internal/report"
	"github.com/dshills/docrank/internal/storage"
	"github.com/dshills/docrank/pkg/types"
)

// Request is one ranking run
type Request struct {
	Documents []string // paths, reported by base name in this order
	Persona   string
	Job       string
	TopK      int // 0 means report.DefaultTopK
}

// Result is the outcome of a successful run
type Result struct {
	ID           string // storage id, empty when no store is configured or saving failed
	Report       *report.Report
	Failures     []*types.DocumentParseError
	SectionCount int // sections ranked, before the top-k cut
	Provider     string
	Duration     time.Duration
}

// Runner wires extraction, ranking, assembly and optional persistence
type Runner struct {
	extractor *extractor.Extractor
	engine    *ranking.Engine
	assembler *report.Assembler
	store     storage.Storage
	logger    *slog.Logger
}

// Options configures a Runner
type Options struct {
	Extractor *extractor.Extractor
	Engine    *ranking.Engine
	Assembler *report.Assembler // nil uses report.NewAssembler()
	Store     storage.Storage   // optional
	Logger    *slog.Logger
}

// NewRunner creates a runner. Extractor and Engine are required.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Extractor == nil {
		return nil, errors.New("pipeline: extractor is required")
	}
	if opts.Engine == nil {
		return nil, errors.New("pipeline: ranking engine is required")
	}
	if opts.Assembler == nil {
		opts.Assembler = report.NewAssembler()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		extractor: opts.Extractor,
		engine:    opts.Engine,
		assembler: opts.Assembler,
		store:     opts.Store,
		logger:    opts.Logger,
	}, nil
}

// Run executes one ranking run.
//
// Invalid persona, job or top-k fail with an error wrapping
// types.ErrInvalidInput before any document is read. Unreadable documents
// are skipped and listed in Result.Failures. An embedding failure is
// returned as *types.EmbeddingError. When no document yields a section the
// report is still produced, with empty arrays.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()

	query, err := types.BuildQuery(req.Persona, req.Job)
	if err != nil {
		return nil, err
	}

	topK := req.TopK
	if topK == 0 {
		topK = report.DefaultTopK
	}
	if topK < 0 {
		return nil, &types.InputError{Field: "top_k", Reason: fmt.Sprintf("must be >= 1, got %d", topK)}
	}

	r.logger.Info("run_started",
		slog.Int("documents", len(req.Documents)),
		slog.Int("top_k", topK),
	)

	extraction, err := r.extractor.ExtractAll(ctx, req.Documents)
	if err != nil {
		return nil, err
	}
	if len(extraction.Sections) == 0 {
		r.logger.Warn("no_sections",
			slog.Int("documents", len(req.Documents)),
			slog.String("error", types.ErrNoSections.Error()),
		)
	}

	ranked, stats, err := r.engine.RankWithStats(ctx, extraction.Sections, query)
	if err != nil {
		return nil, err
	}

	inputDocs := make([]string, len(req.Documents))
	for i, p := range req.Documents {
		inputDocs[i] = extractor.DocumentID(p)
	}

	rep, err := r.assembler.Assemble(inputDocs, query.Persona, query.Job, ranked, topK)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Report:       rep,
		Failures:     extraction.Failures,
		SectionCount: len(ranked),
		Provider:     stats.Provider,
	}

	if r.store != nil {
		rec := &storage.ReportRecord{
			Persona:       query.Persona,
			Job:           query.Job,
			TopK:          topK,
			Provider:      stats.Provider,
			DocumentCount: len(req.Documents),
			SectionCount:  len(ranked),
			FailedCount:   len(extraction.Failures),
			CreatedAt:     time.Now(),
			Report:        rep,
		}
		if err := r.store.SaveReport(ctx, rec); err != nil {
			r.logger.Error("report_save_failed", slog.String("error", err.Error()))
		} else {
			res.ID = rec.ID
		}
	}

	res.Duration = time.Since(startTime)
	r.logger.Info("run_completed",
		slog.String("id", res.ID),
		slog.Int("sections", res.SectionCount),
		slog.Int("failed", len(res.Failures)),
		slog.Int64("duration_ms", res.Duration.Milliseconds()),
	)
	return res, nil
}
