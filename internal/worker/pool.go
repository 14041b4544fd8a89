package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when NewPool is given a non-positive
// count.
const DefaultWorkers = 4

// Pool runs a Job over many requests with at most Workers in flight.
type Pool struct {
	job     *Job
	workers int
	logger  *slog.Logger
}

// NewPool constructs a Pool around job.
func NewPool(job *Job, workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pool{job: job, workers: workers, logger: logger}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int { return p.workers }

// Run processes reqs and returns results in input order. The first failing
// item cancels the rest and its error is returned, wrapped with the item's
// index. Cancelling ctx stops scheduling and returns ctx's error.
//
// Results are persisted only once every item has been analysed, so a failed
// batch leaves nothing behind in the store.
func (p *Pool) Run(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}

	p.logger.Info("worker: batch starting", "items", len(reqs), "workers", p.workers)

	// ── 1. Analyse and advise ─────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := p.job.process(gctx, req)
			if err != nil {
				return fmt.Errorf("worker: item %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Warn("worker: batch aborted", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// ── 2. Persist ────────────────────────────────────────────────────────────
	// Save failures are per item and non-fatal, as in Job.Run.
	var saves errgroup.Group
	saves.SetLimit(p.workers)
	for i := range results {
		saves.Go(func() error {
			p.job.persist(ctx, &results[i])
			p.job.logDone(results[i])
			return nil
		})
	}
	_ = saves.Wait()

	p.logger.Info("worker: batch finished", "items", len(reqs))
	return results, nil
}
