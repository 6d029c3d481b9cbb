package embedder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHash(t *testing.T) {
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", ComputeHash("hello world"))
	assert.Equal(t, ComputeHash("x"), ComputeHash("x"))
	assert.NotEqual(t, CacheKey(ProviderLocal, "a", "x"), CacheKey(ProviderLocal, "b", "x"))
}

func TestValidateBatchRequest(t *testing.T) {
	tests := []struct {
		name    string
		texts   []string
		wantErr error
	}{
		{name: "valid", texts: []string{"a", "b"}},
		{name: "empty batch", texts: nil, wantErr: ErrInvalidInput},
		{name: "empty text", texts: []string{"a", ""}, wantErr: ErrInvalidInput},
		{name: "too large", texts: make([]string, MaxBatchSize+1), wantErr: ErrBatchTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatchRequest(BatchEmbeddingRequest{Texts: tt.texts})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCache(t *testing.T) {
	cache := NewCache(2)
	emb := &Embedding{Vector: []float32{1, 2, 3}, Dimension: 3}
	cache.Set("k1", emb)

	// Mutating the original after Set must not reach the cache
	emb.Vector[0] = 99

	got, ok := cache.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, got.Vector)

	// Nor may mutating a returned copy
	got.Vector[1] = 42
	again, _ := cache.Get("k1")
	assert.Equal(t, float32(2), again.Vector[1])

	cache.Set("k2", emb)
	cache.Set("k3", emb)
	assert.Equal(t, 2, cache.Size())
	_, ok = cache.Get("k1")
	assert.False(t, ok, "oldest entry should be evicted")

	cache.Clear()
	assert.Zero(t, cache.Size())
}

// countingEmbedder records batch sizes and returns vectors derived from text length
type countingEmbedder struct {
	batches []int
	dims    func(i int) int
	fail    error
}

func (c *countingEmbedder) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	return single(ctx, c, req)
}

func (c *countingEmbedder) GenerateBatch(_ context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if c.fail != nil {
		return nil, c.fail
	}
	c.batches = append(c.batches, len(req.Texts))
	out := make([]*Embedding, len(req.Texts))
	for i, text := range req.Texts {
		dim := 2
		if c.dims != nil {
			dim = c.dims(i)
		}
		v := make([]float32, dim)
		v[0] = float32(len(text))
		out[i] = &Embedding{Vector: v, Dimension: dim}
	}
	return &BatchEmbeddingResponse{Embeddings: out}, nil
}

func (c *countingEmbedder) Dimension() int   { return 2 }
func (c *countingEmbedder) Provider() string { return "counting" }
func (c *countingEmbedder) Model() string    { return "counting" }
func (c *countingEmbedder) Close() error     { return nil }

func TestEmbedTexts(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input skips provider", func(t *testing.T) {
		emb := &countingEmbedder{}
		vectors, err := EmbedTexts(ctx, emb, nil)
		require.NoError(t, err)
		assert.NotNil(t, vectors)
		assert.Empty(t, vectors)
		assert.Empty(t, emb.batches)
	})

	t.Run("splits into batches and keeps order", func(t *testing.T) {
		emb := &countingEmbedder{}
		texts := make([]string, 2*MaxBatchSize+5)
		for i := range texts {
			texts[i] = strings.Repeat("x", i+1)
		}

		vectors, err := EmbedTexts(ctx, emb, texts)
		require.NoError(t, err)
		require.Len(t, vectors, len(texts))
		assert.Equal(t, []int{MaxBatchSize, MaxBatchSize, 5}, emb.batches)
		for i, v := range vectors {
			assert.Equal(t, float32(i+1), v[0])
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		emb := &countingEmbedder{dims: func(i int) int { return 2 + i }}
		_, err := EmbedTexts(ctx, emb, []string{"a", "b"})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("provider error is wrapped", func(t *testing.T) {
		emb := &countingEmbedder{fail: fmt.Errorf("%w: boom", ErrProviderFailed)}
		_, err := EmbedTexts(ctx, emb, []string{"a"})
		assert.True(t, errors.Is(err, ErrProviderFailed))
	})
}
