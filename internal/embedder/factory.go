package embedder

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Environment variables
const (
	EnvProvider     = "DOCRANK_EMBEDDING_PROVIDER"
	EnvModel        = "DOCRANK_EMBEDDING_MODEL"
	EnvURL          = "DOCRANK_EMBEDDING_URL"
	EnvJinaAPIKey   = "JINA_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	URL       string
	CacheSize int // 0 disables the cache
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewFromEnv creates an embedder based on environment variables
// Priority:
// 1. DOCRANK_EMBEDDING_PROVIDER (local, ollama, jina, openai)
// 2. Check for API keys: JINA_API_KEY, OPENAI_API_KEY
// 3. Default to local
func NewFromEnv() (Embedder, error) {
	provider := DetectProvider()

	apiKey := ""
	switch provider {
	case ProviderJina:
		apiKey = os.Getenv(EnvJinaAPIKey)
	case ProviderOpenAI:
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}

	return New(Config{
		Provider:  provider,
		Model:     os.Getenv(EnvModel),
		APIKey:    apiKey,
		URL:       os.Getenv(EnvURL),
		CacheSize: DefaultCacheSize,
	})
}

// New creates an embedder with explicit configuration.
// For jina and openai an empty APIKey falls back to the provider's key variable.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderLocal
	}

	opts := APIOptions{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		URL:     cfg.URL,
		Timeout: cfg.Timeout,
		Logger:  cfg.Logger,
	}

	switch provider {
	case ProviderJina:
		if opts.APIKey == "" {
			opts.APIKey = os.Getenv(EnvJinaAPIKey)
		}
		return NewJinaProvider(opts, cache)
	case ProviderOpenAI:
		if opts.APIKey == "" {
			opts.APIKey = os.Getenv(EnvOpenAIAPIKey)
		}
		return NewOpenAIProvider(opts, cache)
	case ProviderOllama:
		return NewOllamaProvider(OllamaOptions{
			BaseURL: cfg.URL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
			Logger:  cfg.Logger,
		}, cache), nil
	case ProviderLocal:
		return NewLocalProvider(LocalDimension, cache), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on current environment
func DetectProvider() string {
	provider := os.Getenv(EnvProvider)
	if provider != "" {
		return strings.ToLower(provider)
	}

	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}

	return ProviderLocal
}

// KnownProvider reports whether name is a supported provider
func KnownProvider(name string) bool {
	switch strings.ToLower(name) {
	case ProviderLocal, ProviderOllama, ProviderJina, ProviderOpenAI:
		return true
	}
	return false
}
