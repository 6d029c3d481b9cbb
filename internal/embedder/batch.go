package embedder

import (
	"context"
	"fmt"
)

// EmbedTexts embeds texts in order, splitting them into MaxBatchSize chunks.
// The result is aligned with texts and every vector has the same length.
// An empty input returns an empty result without calling the provider.
func EmbedTexts(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}

	dim := 0
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))

		resp, err := e.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: texts[start:end]})
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrProviderFailed, len(resp.Embeddings), end-start)
		}

		for i, emb := range resp.Embeddings {
			if dim == 0 {
				dim = len(emb.Vector)
			}
			if len(emb.Vector) == 0 || len(emb.Vector) != dim {
				return nil, fmt.Errorf("%w: text %d has %d, expected %d", ErrDimensionMismatch, start+i, len(emb.Vector), dim)
			}
			vectors = append(vectors, emb.Vector)
		}
	}

	return vectors, nil
}
