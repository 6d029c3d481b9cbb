package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// OllamaProvider embeds through a local Ollama server's batch /api/embed endpoint.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
	cache      *Cache
	retry      RetryConfig
	logger     *slog.Logger
	dimension  atomic.Int64 // learned from the first response
}

// OllamaOptions configures an OllamaProvider
type OllamaOptions struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllamaProvider creates an embedder backed by Ollama
func NewOllamaProvider(opts OllamaOptions, cache *Cache) *OllamaProvider {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	model := opts.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OllamaProvider{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		retry:      DefaultRetryConfig(),
		logger:     loggerOrDefault(opts.Logger),
	}
}

func (o *OllamaProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	return single(ctx, o, req)
}

func (o *OllamaProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = o.model
	}

	embeddings, err := generateCached(ctx, o.cache, ProviderOllama, model, req.Texts, func(ctx context.Context, texts []string, model string) ([][]float32, error) {
		vectors, err := retryWithBackoff(ctx, o.retry, func() ([][]float32, error) {
			return o.encode(ctx, texts, model)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: ollama: %v", ErrProviderFailed, err)
		}
		return vectors, nil
	})
	if err != nil {
		return nil, err
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderOllama,
		Model:      model,
	}, nil
}

func (o *OllamaProvider) encode(ctx context.Context, texts []string, model string) ([][]float32, error) {
	o.logger.Debug("ollama_embed_started",
		slog.Int("text_count", len(texts)),
		slog.String("model", model),
		slog.String("url", o.baseURL),
	)
	start := time.Now()

	body, err := json.Marshal(ollamaEmbedRequest{Model: model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		o.logger.Error("ollama_embed_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil, fmt.Errorf("call ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		o.logger.Error("ollama_embed_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bodyBytes)}
	}

	var respBody ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(respBody.Embeddings) > 0 {
		o.dimension.CompareAndSwap(0, int64(len(respBody.Embeddings[0])))
	}

	o.logger.Debug("ollama_embed_completed",
		slog.Int("embedding_count", len(respBody.Embeddings)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return respBody.Embeddings, nil
}

// Dimension returns the observed vector length, or the all-minilm default
// before the first successful call.
func (o *OllamaProvider) Dimension() int {
	if d := o.dimension.Load(); d > 0 {
		return int(d)
	}
	return OllamaDimension
}

func (o *OllamaProvider) Provider() string {
	return ProviderOllama
}

func (o *OllamaProvider) Model() string {
	return o.model
}

func (o *OllamaProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
