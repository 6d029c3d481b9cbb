package ranking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dshills/docrank/internal/embedder"
	"github.com/dshills/docrank/pkg/types"
)

// Stats describes one ranking pass
type Stats struct {
	Sections int
	Provider string
	Model    string
	Duration time.Duration
}

// Engine scores sections against a query and orders them by relevance
type Engine struct {
	embedder embedder.Embedder
	logger   *slog.Logger
}

// NewEngine creates a ranking engine. A nil logger uses slog.Default().
func NewEngine(emb embedder.Embedder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		embedder: emb,
		logger:   logger,
	}
}

// Rank returns copies of sections with Score set, sorted by score descending.
// Equal scores keep their input order.
func (e *Engine) Rank(ctx context.Context, sections []types.Section, query types.Query) ([]types.Section, error) {
	ranked, _, err := e.RankWithStats(ctx, sections, query)
	return ranked, err
}

// RankWithStats is Rank plus timing and provider details.
// Empty input returns an empty slice without calling the embedder.
func (e *Engine) RankWithStats(ctx context.Context, sections []types.Section, query types.Query) ([]types.Section, Stats, error) {
	startTime := time.Now()
	stats := Stats{Sections: len(sections)}

	if len(sections) == 0 {
		return []types.Section{}, stats, nil
	}

	if e.embedder == nil {
		return nil, stats, &types.EmbeddingError{Stage: types.StageInit, Err: errors.New("embedder not initialized")}
	}
	stats.Provider = e.embedder.Provider()
	stats.Model = e.embedder.Model()

	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Text
	}

	vectors, err := embedder.EmbedTexts(ctx, e.embedder, texts)
	if err != nil {
		return nil, stats, &types.EmbeddingError{Stage: types.StageSections, Err: err}
	}

	queryEmb, err := e.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query.CombinedText})
	if err != nil {
		return nil, stats, &types.EmbeddingError{Stage: types.StageQuery, Err: err}
	}
	if len(queryEmb.Vector) != len(vectors[0]) {
		return nil, stats, &types.EmbeddingError{
			Stage: types.StageQuery,
			Err:   fmt.Errorf("%w: query has %d, sections have %d", embedder.ErrDimensionMismatch, len(queryEmb.Vector), len(vectors[0])),
		}
	}

	scores := Score(queryEmb.Vector, vectors)

	ranked := make([]types.Section, len(sections))
	copy(ranked, sections)
	for i := range ranked {
		ranked[i].Score = scores[i]
	}

	SortByScore(ranked)

	stats.Duration = time.Since(startTime)
	attrs := []any{
		slog.Int("sections", stats.Sections),
		slog.String("provider", stats.Provider),
		slog.Int64("duration_ms", stats.Duration.Milliseconds()),
	}
	if len(ranked) > 0 {
		attrs = append(attrs, slog.String("top", ranked[0].Key()))
	}
	e.logger.Debug("sections_ranked", attrs...)

	return ranked, stats, nil
}

// SortByScore orders sections by score descending, keeping the relative
// order of equal scores.
func SortByScore(sections []types.Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Score > sections[j].Score
	})
}
