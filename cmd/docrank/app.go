package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dshills/docrank/internal/config"
	"github.com/dshills/docrank/internal/embedder"
	"github.com/dshills/docrank/internal/extractor"
	"github.com/dshills/docrank/internal/logger"
	"github.com/dshills/docrank/internal/pipeline"
	"github.com/dshills/docrank/internal/ranking"
	"github.com/dshills/docrank/internal/storage"
	"github.com/dshills/docrank/pkg/types"
)

// app holds what the commands share: config, logger, embedder and store.
// The embedder and store are opened on first use.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger

	emb   embedder.Embedder
	store storage.Storage
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	// stdout carries reports and MCP traffic
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	a.cfg = cfg
	a.logger = log
	return nil
}

// openStore opens the report history when it is enabled; nil otherwise
func (a *app) openStore() (storage.Storage, error) {
	if a.store != nil || !a.cfg.Storage.Enabled {
		return a.store, nil
	}
	store, err := storage.NewSQLiteStorage(a.cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open report history: %w", err)
	}
	a.store = store
	return store, nil
}

// requireStore is openStore for commands that only read history
func (a *app) requireStore() (storage.Storage, error) {
	if !a.cfg.Storage.Enabled {
		return nil, fmt.Errorf("report history is disabled (storage.enabled=false)")
	}
	return a.openStore()
}

// runner builds the pipeline. The embedder is created once and shared by
// every run in the process so its cache is reused.
func (a *app) runner() (*pipeline.Runner, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, &types.InputError{Field: "config", Reason: err.Error()}
	}

	if a.emb == nil {
		ecfg := a.cfg.EmbedderConfig()
		ecfg.Logger = a.logger
		emb, err := embedder.New(ecfg)
		if err != nil {
			return nil, &types.EmbeddingError{Stage: types.StageInit, Err: err}
		}
		a.emb = emb
		a.logger.Info("embedder_ready",
			slog.String("provider", emb.Provider()),
			slog.String("model", emb.Model()),
		)
	}

	// runs go on without history when the database cannot be opened
	store, err := a.openStore()
	if err != nil {
		a.logger.Warn("report_history_unavailable",
			slog.String("path", a.cfg.Storage.Path),
			slog.String("error", err.Error()),
		)
		store = nil
	}

	ext := extractor.New(extractor.Config{
		Workers:         a.cfg.Ranking.Workers,
		DocumentTimeout: a.cfg.Ranking.DocumentTimeout,
	}, a.logger)

	return pipeline.NewRunner(pipeline.Options{
		Extractor: ext,
		Engine:    ranking.NewEngine(a.emb, a.logger),
		Store:     store,
		Logger:    a.logger,
	})
}

func (a *app) close() {
	if a.emb != nil {
		_ = a.emb.Close()
		a.emb = nil
	}
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
}
