package embedder

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// LocalProvider is an offline embedder based on feature hashing.
//
// Each text is tokenized into lowercase words, stopwords are dropped and a light
// plural stem is applied. Every token and adjacent-token bigram is hashed with
// xxhash into one of Dimension buckets with a hash-derived sign. The vector is
// L2-normalized, so cosine similarity reflects shared vocabulary.
type LocalProvider struct {
	model     string
	dimension int
	cache     *Cache
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "this": {},
	"to": {}, "was": {}, "were": {}, "will": {}, "with": {},
}

const bigramWeight = 0.5

// NewLocalProvider creates the hashing embedder. dim <= 0 uses LocalDimension.
func NewLocalProvider(dim int, cache *Cache) *LocalProvider {
	if dim <= 0 {
		dim = LocalDimension
	}
	return &LocalProvider{
		model:     DefaultLocalModel,
		dimension: dim,
		cache:     cache,
	}
}

func (l *LocalProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	return single(ctx, l, req)
}

func (l *LocalProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	embeddings, err := generateCached(ctx, l.cache, ProviderLocal, l.model, req.Texts, func(ctx context.Context, texts []string, _ string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			vectors[i] = l.embed(text)
		}
		return vectors, nil
	})
	if err != nil {
		return nil, err
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderLocal,
		Model:      l.model,
	}, nil
}

func (l *LocalProvider) embed(text string) []float32 {
	vector := make([]float32, l.dimension)
	tokens := Tokenize(text)

	for i, tok := range tokens {
		l.add(vector, tok, 1)
		if i > 0 {
			l.add(vector, tokens[i-1]+" "+tok, bigramWeight)
		}
	}

	return NormalizeVector(vector)
}

func (l *LocalProvider) add(vector []float32, feature string, weight float32) {
	h := xxhash.Sum64String(feature)
	idx := h % uint64(l.dimension)
	if h>>63 == 1 {
		weight = -weight
	}
	vector[idx] += weight
}

func (l *LocalProvider) Dimension() int {
	return l.dimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}

// Tokenize lowercases text, splits it on non letter/digit runs, drops
// stopwords and strips simple plural suffixes.
func Tokenize(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := words[:0]
	for _, w := range words {
		if _, stop := stopwords[w]; stop {
			continue
		}
		tokens = append(tokens, stem(w))
	}
	return tokens
}

func stem(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

// NormalizeVector returns v scaled to unit length. A zero vector is returned unchanged.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	if sum == 0 {
		return v
	}

	norm := math.Sqrt(sum)
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = float32(float64(val) / norm)
	}

	return result
}
