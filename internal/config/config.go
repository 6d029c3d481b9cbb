// Package config loads docrank settings from a YAML file, a .env file and
// DOCRANK_* environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/docrank/internal/embedder"
	"github.com/dshills/docrank/internal/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultConfigFile      = "docrank.yaml"
	DefaultInputDir        = "./data"
	DefaultOutputFile      = "output.json"
	DefaultPersonaFile     = "persona.txt"
	DefaultJobFile         = "job.txt"
	DefaultTopK            = 5
	DefaultDocumentTimeout = 60 * time.Second
	DefaultHTTPAddr        = ":8090"
	DefaultMaxUploadBytes  = 50 << 20
)

// Config is the root application configuration
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Storage   StorageConfig   `yaml:"storage"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
}

// InputConfig locates documents and the persona/job files
type InputConfig struct {
	Dir         string `yaml:"dir"`
	PersonaFile string `yaml:"persona_file"` // relative to Dir unless absolute
	JobFile     string `yaml:"job_file"`     // relative to Dir unless absolute
	OutputFile  string `yaml:"output_file"`
}

// RankingConfig controls extraction and ranking
type RankingConfig struct {
	TopK            int           `yaml:"top_k"`
	Workers         int           `yaml:"workers"`
	DocumentTimeout time.Duration `yaml:"document_timeout"`
}

// EmbeddingConfig selects the embedding provider
type EmbeddingConfig struct {
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	URL       string        `yaml:"url"`
	APIKeyEnv string        `yaml:"api_key_env"`
	CacheSize int           `yaml:"cache_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// StorageConfig controls the report history database
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// HTTPConfig configures the HTTP API
type HTTPConfig struct {
	Addr           string `yaml:"addr"`
	APIKey         string `yaml:"api_key"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Dir:         DefaultInputDir,
			PersonaFile: DefaultPersonaFile,
			JobFile:     DefaultJobFile,
			OutputFile:  DefaultOutputFile,
		},
		Ranking: RankingConfig{
			TopK:            DefaultTopK,
			Workers:         runtime.NumCPU(),
			DocumentTimeout: DefaultDocumentTimeout,
		},
		Embedding: EmbeddingConfig{
			Provider:  embedder.ProviderLocal,
			CacheSize: embedder.DefaultCacheSize,
			Timeout:   embedder.DefaultTimeout,
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    defaultDBPath(),
		},
		HTTP: HTTPConfig{
			Addr:           DefaultHTTPAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logger.FormatText,
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".docrank", "reports.db")
	}
	return filepath.Join(home, ".docrank", "reports.db")
}

// Load reads path (a missing file means defaults), then .env, then the
// environment. The result is not validated; call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Input.Dir = getEnv("DOCRANK_INPUT_DIR", cfg.Input.Dir)
	cfg.Input.OutputFile = getEnv("DOCRANK_OUTPUT_FILE", cfg.Input.OutputFile)
	cfg.Embedding.Provider = getEnv("DOCRANK_EMBEDDING_PROVIDER", cfg.Embedding.Provider)
	cfg.Embedding.Model = getEnv("DOCRANK_EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.URL = getEnv("DOCRANK_EMBEDDING_URL", cfg.Embedding.URL)
	cfg.Storage.Path = getEnv("DOCRANK_DB_PATH", cfg.Storage.Path)
	cfg.HTTP.Addr = getEnv("DOCRANK_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.APIKey = getEnv("DOCRANK_API_KEY", cfg.HTTP.APIKey)
	cfg.Log.Level = getEnv("DOCRANK_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("DOCRANK_LOG_FORMAT", cfg.Log.Format)

	var err error
	if cfg.Ranking.TopK, err = getEnvInt("DOCRANK_TOP_K", cfg.Ranking.TopK); err != nil {
		return err
	}
	if cfg.Ranking.Workers, err = getEnvInt("DOCRANK_WORKERS", cfg.Ranking.Workers); err != nil {
		return err
	}
	if cfg.Ranking.DocumentTimeout, err = getEnvDuration("DOCRANK_DOCUMENT_TIMEOUT", cfg.Ranking.DocumentTimeout); err != nil {
		return err
	}
	if cfg.Storage.Enabled, err = getEnvBool("DOCRANK_STORAGE_ENABLED", cfg.Storage.Enabled); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Ranking.TopK < 1 {
		errs = append(errs, fmt.Errorf("ranking.top_k must be >= 1, got %d", c.Ranking.TopK))
	}
	if c.Ranking.Workers < 1 {
		errs = append(errs, fmt.Errorf("ranking.workers must be >= 1, got %d", c.Ranking.Workers))
	}
	if c.Ranking.DocumentTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ranking.document_timeout must be positive"))
	}
	if !embedder.KnownProvider(c.Embedding.Provider) {
		errs = append(errs, fmt.Errorf("embedding.provider %q is not supported", c.Embedding.Provider))
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		errs = append(errs, fmt.Errorf("storage.path is required when storage is enabled"))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case logger.FormatText, logger.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// EmbedderConfig converts the embedding section for embedder.New.
// The API key is read from APIKeyEnv when set.
func (c *Config) EmbedderConfig() embedder.Config {
	apiKey := ""
	if c.Embedding.APIKeyEnv != "" {
		apiKey = os.Getenv(c.Embedding.APIKeyEnv)
	}
	return embedder.Config{
		Provider:  c.Embedding.Provider,
		Model:     c.Embedding.Model,
		APIKey:    apiKey,
		URL:       c.Embedding.URL,
		CacheSize: c.Embedding.CacheSize,
		Timeout:   c.Embedding.Timeout,
	}
}

// ResolveInputFile returns name relative to the input directory unless it is absolute
func (c *Config) ResolveInputFile(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Input.Dir, name)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}
