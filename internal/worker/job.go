// Package worker runs the per-scenario pipeline (analyse, optionally advise,
// optionally persist) and fans it out over batches with a bounded pool. It is
// decoupled from the HTTP layer: api and the CLI hold a *Job or *Pool and
// never reach into the analysis stages directly.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/overthinker-backend/internal/advisor"
	"github.com/nyashahama/overthinker-backend/internal/analysis"
	"github.com/nyashahama/overthinker-backend/internal/store"
)

// ─── DEPENDENCIES ─────────────────────────────────────────────────────────────

// Parser is the analysis step. *analysis.Analyzer satisfies it.
type Parser interface {
	Parse(text string) (analysis.Analysis, error)
}

// Saver persists a finished analysis. *store.Store satisfies it.
type Saver interface {
	SaveAnalysis(ctx context.Context, p store.SaveAnalysisParams) (store.Record, error)
}

// ─── JOB ──────────────────────────────────────────────────────────────────────

// JobConfig holds tuning parameters for a Job.
type JobConfig struct {
	// AdviseTimeout bounds each advisor call. Default: 60s.
	AdviseTimeout time.Duration
}

// DefaultJobConfig returns production defaults.
func DefaultJobConfig() JobConfig {
	return JobConfig{AdviseTimeout: 60 * time.Second}
}

// Request is one scenario to process.
type Request struct {
	Text   string
	Advise bool
}

// Result is the outcome of one Request. ID is nil when nothing was persisted;
// Advice is nil when none was requested or the advisor failed.
type Result struct {
	ID       *uuid.UUID
	Analysis analysis.Analysis
	Advice   *advisor.Advice
	Duration time.Duration
}

// Job holds the dependencies for the analyse-advise-persist pipeline. The
// advisor and saver are optional; pass nil to skip those steps.
type Job struct {
	parser  Parser
	advisor advisor.Advisor
	saver   Saver
	cfg     JobConfig
	logger  *slog.Logger
}

// NewJob constructs a Job. Zero-valued config fields take their defaults.
func NewJob(parser Parser, adv advisor.Advisor, saver Saver, cfg JobConfig, logger *slog.Logger) *Job {
	if cfg.AdviseTimeout <= 0 {
		cfg.AdviseTimeout = DefaultJobConfig().AdviseTimeout
	}
	return &Job{
		parser:  parser,
		advisor: adv,
		saver:   saver,
		cfg:     cfg,
		logger:  logger,
	}
}

// CanAdvise reports whether an advisor is configured.
func (j *Job) CanAdvise() bool { return j.advisor != nil }

// Run executes the pipeline for one scenario:
//
//  1. Analyse the text. A failure here is the only error Run returns.
//  2. Ask the advisor, when requested and configured, under AdviseTimeout.
//  3. Persist the result, when a saver is configured.
//
// Advisor and persistence failures are logged and leave the corresponding
// Result field nil.
func (j *Job) Run(ctx context.Context, req Request) (Result, error) {
	res, err := j.process(ctx, req)
	if err != nil {
		return Result{}, err
	}
	j.persist(ctx, &res)
	j.logDone(res)
	return res, nil
}

// process runs the analyse and advise steps. Nothing is written.
func (j *Job) process(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	// ── 1. Analyse ────────────────────────────────────────────────────────────
	a, err := j.parser.Parse(req.Text)
	if err != nil {
		return Result{}, fmt.Errorf("job: analyse: %w", err)
	}
	res := Result{Analysis: a}

	// ── 2. Advise ─────────────────────────────────────────────────────────────
	if req.Advise && j.advisor != nil {
		res.Advice = j.advise(ctx, a)
	}

	res.Duration = time.Since(start)
	return res, nil
}

// persist saves res when a saver is configured and records its ID.
func (j *Job) persist(ctx context.Context, res *Result) {
	if j.saver == nil {
		return
	}
	start := time.Now()
	rec, err := j.saver.SaveAnalysis(ctx, store.SaveAnalysisParams{Analysis: res.Analysis, Advice: res.Advice})
	if err != nil {
		j.logger.Error("job: persist failed, returning unsaved analysis", "error", err)
	} else {
		res.ID = &rec.ID
	}
	res.Duration += time.Since(start)
}

func (j *Job) logDone(res Result) {
	j.logger.Debug("job: done",
		"intent", res.Analysis.Intent,
		"risk_score", res.Analysis.RiskScore,
		"advised", res.Advice != nil,
		"persisted", res.ID != nil,
		"duration_ms", res.Duration.Milliseconds(),
	)
}

func (j *Job) advise(ctx context.Context, a analysis.Analysis) *advisor.Advice {
	ctx, cancel := context.WithTimeout(ctx, j.cfg.AdviseTimeout)
	defer cancel()

	adv, err := j.advisor.Advise(ctx, a)
	if err != nil {
		j.logger.Warn("job: advisor failed, continuing without advice", "error", err)
		return nil
	}
	return &adv
}
