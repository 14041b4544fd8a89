package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/nyashahama/overthinker-backend/internal/advisor"
	"github.com/nyashahama/overthinker-backend/internal/analysis"
	"github.com/nyashahama/overthinker-backend/internal/config"
	"github.com/nyashahama/overthinker-backend/internal/db"
	"github.com/nyashahama/overthinker-backend/internal/nlp"
	"github.com/nyashahama/overthinker-backend/internal/store"
	"github.com/nyashahama/overthinker-backend/internal/worker"
)

// app is the wired application graph shared by every subcommand.
type app struct {
	cfg      *config.Config
	analyzer *analysis.Analyzer
	job      *worker.Job
	pool     *worker.Pool
	store    *store.Store // nil without DATABASE_URL
	logger   *slog.Logger
	closers  []func() error
}

// Close releases the model connection and database pool, if any.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

// buildApp loads configuration and the model, then wires the pipeline. The
// database is opened only when withStore is set and DATABASE_URL is present.
func buildApp(ctx context.Context, logger *slog.Logger, withStore bool) (*app, error) {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger.Debug("config loaded", "env", cfg.Env, "model", cfg.ModelName)

	pipeline, err := analysis.LoadConfig(cfg.PipelineConfig)
	if err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	// ── Model ─────────────────────────────────────────────────────────────────
	// Loading is the init barrier: nothing below runs without a model.
	model, closeModel, err := loadModel(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	if closeModel != nil {
		a.closers = append(a.closers, closeModel)
	}
	logger.Info("model loaded", "name", model.Name())

	a.analyzer, err = analysis.New(model, pipeline,
		analysis.WithCacheSize(cfg.CacheSize),
		analysis.WithLogger(logger),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("analyzer: %w", err)
	}

	// ── Database ──────────────────────────────────────────────────────────────
	var saver worker.Saver
	if withStore && cfg.DatabaseURL != "" {
		pool, queries, err := openDB(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.store = store.New(pool, queries)
		saver = a.store
		logger.Info("database connected")
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	a.job = worker.NewJob(a.analyzer, newAdvisor(cfg, logger), saver,
		worker.JobConfig{AdviseTimeout: cfg.AdvisorTimeout}, logger)
	a.pool = worker.NewPool(a.job, cfg.BatchWorkers, logger)

	return a, nil
}

// loadModel returns the configured nlp.Model and, for remote models, a closer.
func loadModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) (nlp.Model, func() error, error) {
	if cfg.ModelName != nlp.CloudModelName {
		m, err := nlp.LoadProse(cfg.ModelName, cfg.ModelPath)
		if err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	}

	tagger, err := nlp.LoadProse("", cfg.ModelPath)
	if err != nil {
		return nil, nil, err
	}
	m, err := nlp.NewCloudModel(ctx, tagger, cfg.LanguageCredentials, nlp.WithCloudLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return m, m.Close, nil
}

// newAdvisor returns nil when no provider is configured. DeepSeek is primary
// and Anthropic the fallback when both keys are set.
func newAdvisor(cfg *config.Config, logger *slog.Logger) advisor.Advisor {
	timeout := advisor.WithTimeout(cfg.AdvisorTimeout)
	switch {
	case cfg.DeepSeekAPIKey != "" && cfg.AnthropicAPIKey != "":
		primary := advisor.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekModel,
			advisor.WithBaseURL(cfg.DeepSeekBaseURL), timeout)
		secondary := advisor.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, timeout)
		logger.Info("advisor: using DeepSeek with Anthropic fallback")
		return advisor.NewFallbackAdvisor(primary, secondary, logger)
	case cfg.DeepSeekAPIKey != "":
		logger.Info("advisor: using DeepSeek only")
		return advisor.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekModel,
			advisor.WithBaseURL(cfg.DeepSeekBaseURL), timeout)
	case cfg.AnthropicAPIKey != "":
		logger.Info("advisor: using Anthropic only")
		return advisor.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, timeout)
	default:
		logger.Debug("advisor: not configured")
		return nil
	}
}

// openDB opens the connection pool and verifies it is reachable.
func openDB(ctx context.Context, dsn string) (*sql.DB, *db.Queries, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := pool.PingContext(pingCtx); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("ping: %w", err), pool.Close())
	}

	return pool, db.New(pool), nil
}
