package extractor

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dshills/docrank/internal/parser"
	"github.com/dshills/docrank/pkg/types"
	"golang.org/x/sync/errgroup"
)

// DefaultDocumentTimeout bounds the time spent reading one document
const DefaultDocumentTimeout = 60 * time.Second

// Config contains configuration for the extractor
type Config struct {
	Workers         int           // Documents read concurrently (default: runtime.NumCPU())
	DocumentTimeout time.Duration // Per-document limit (default: 60s)
}

// Extractor turns documents into page sections
type Extractor struct {
	parserFor func(path string) (parser.Parser, error)
	workers   int
	timeout   time.Duration
	logger    *slog.Logger
}

// Statistics describes one ExtractAll call
type Statistics struct {
	DocumentsParsed int
	DocumentsFailed int
	Sections        int
	Duration        time.Duration
}

// Extraction is the result of reading a set of documents. Sections are in
// document order, then page order. Documents that could not be read are
// listed in Failures and contribute no sections.
type Extraction struct {
	Sections []types.Section
	Failures []*types.DocumentParseError
	Stats    Statistics
}

// New creates an extractor using the format parsers from package parser.
// A nil logger uses slog.Default().
func New(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.DocumentTimeout <= 0 {
		cfg.DocumentTimeout = DefaultDocumentTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		parserFor: parser.ForFile,
		workers:   cfg.Workers,
		timeout:   cfg.DocumentTimeout,
		logger:    logger,
	}
}

// DocumentID is the identifier used for path in reports: its base name
func DocumentID(path string) string {
	return filepath.Base(path)
}

// Sections yields one section per page of doc that has non-blank text.
// Pages that fail to extract are skipped. The sequence reads pages lazily
// and can be iterated more than once.
func (e *Extractor) Sections(doc parser.Document, documentID string) iter.Seq[types.Section] {
	return func(yield func(types.Section) bool) {
		for n := 1; n <= doc.NumPages(); n++ {
			text, err := doc.PageText(n)
			if err != nil {
				e.logger.Debug("page_skipped",
					slog.String("document", documentID),
					slog.Int("page", n),
					slog.String("error", err.Error()),
				)
				continue
			}

			section, err := types.NewSection(documentID, n, text)
			if err != nil {
				continue
			}

			if !yield(section) {
				return
			}
		}
	}
}

// ExtractFile opens path, collects its sections and closes it. Reading is
// bounded by the document timeout. Any failure is a *types.DocumentParseError.
//
// The parsers cannot be interrupted, so the timeout abandons the parse
// rather than stopping it: the worker goroutine keeps reading until the
// library returns and only then closes the document.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]types.Section, error) {
	id := DocumentID(path)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		sections []types.Section
		err      error
	}
	done := make(chan result, 1)

	go func() {
		sections, err := e.extract(path, id)
		done <- result{sections: sections, err: err}
	}()

	select {
	case r := <-done:
		return r.sections, r.err
	case <-ctx.Done():
		stage := types.StageTimeout
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			stage = types.StageParse
		}
		return nil, &types.DocumentParseError{Document: id, Stage: stage, Err: ctx.Err()}
	}
}

func (e *Extractor) extract(path, id string) ([]types.Section, error) {
	p, err := e.parserFor(path)
	if err != nil {
		return nil, &types.DocumentParseError{Document: id, Stage: types.StageOpen, Err: err}
	}

	doc, err := p.Open(path)
	if err != nil {
		return nil, &types.DocumentParseError{Document: id, Stage: types.StageOpen, Err: err}
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("document_close_failed", slog.String("document", id), slog.String("error", cerr.Error()))
		}
	}()

	sections := make([]types.Section, 0, doc.NumPages())
	for s := range e.Sections(doc, id) {
		sections = append(sections, s)
	}
	return sections, nil
}

// ExtractAll reads paths concurrently and returns their sections in path
// order. Per-document failures are collected, not returned; the error is
// non-nil only when ctx is cancelled.
func (e *Extractor) ExtractAll(ctx context.Context, paths []string) (*Extraction, error) {
	startTime := time.Now()

	perDoc := make([][]types.Section, len(paths))
	failures := make([]*types.DocumentParseError, len(paths))

	var parsed, failed, sectionCount atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			docStart := time.Now()
			sections, err := e.ExtractFile(gctx, path)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				var perr *types.DocumentParseError
				if !errors.As(err, &perr) {
					perr = &types.DocumentParseError{Document: DocumentID(path), Stage: types.StageParse, Err: err}
				}
				failures[i] = perr
				failed.Add(1)
				e.logger.Warn("document_skipped",
					slog.String("document", perr.Document),
					slog.String("stage", perr.Stage),
					slog.String("error", perr.Err.Error()),
				)
				return nil
			}

			perDoc[i] = sections
			parsed.Add(1)
			sectionCount.Add(int32(len(sections)))
			e.logger.Debug("document_extracted",
				slog.String("document", DocumentID(path)),
				slog.Int("sections", len(sections)),
				slog.Int64("duration_ms", time.Since(docStart).Milliseconds()),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract documents: %w", err)
	}

	out := &Extraction{
		Sections: make([]types.Section, 0, int(sectionCount.Load())),
		Failures: make([]*types.DocumentParseError, 0, int(failed.Load())),
	}
	for i := range paths {
		out.Sections = append(out.Sections, perDoc[i]...)
		if failures[i] != nil {
			out.Failures = append(out.Failures, failures[i])
		}
	}

	out.Stats = Statistics{
		DocumentsParsed: int(parsed.Load()),
		DocumentsFailed: int(failed.Load()),
		Sections:        len(out.Sections),
		Duration:        time.Since(startTime),
	}
	return out, nil
}
