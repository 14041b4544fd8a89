package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nyashahama/overthinker-backend/internal/advisor"
	"github.com/nyashahama/overthinker-backend/internal/analysis"
	"github.com/nyashahama/overthinker-backend/internal/worker"
)

// Question length bounds, counted in characters after trimming.
const (
	minQuestionLen = 5
	maxQuestionLen = 500
)

// ─── POST /api/analyze ────────────────────────────────────────────────────────

type analyzeRequest struct {
	Question string `json:"question"`

	// Advise asks for a narrative recommendation. Ignored when no advisor is
	// configured.
	Advise bool `json:"advise"`
}

type analyzeResponse struct {
	ID *uuid.UUID `json:"id,omitempty"`
	analysis.Analysis
	Advice *advisor.Advice `json:"advice,omitempty"`

	// ProcessingTime is in seconds.
	ProcessingTime float64 `json:"processing_time"`
}

func newAnalyzeResponse(res worker.Result) analyzeResponse {
	return analyzeResponse{
		ID:             res.ID,
		Analysis:       res.Analysis,
		Advice:         res.Advice,
		ProcessingTime: res.Duration.Seconds(),
	}
}

// handleAnalyze runs one question through the pipeline. The analysis is
// persisted when a database is configured.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	question, err := validateQuestion(req.Question)
	if err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.job.Run(r.Context(), worker.Request{Text: question, Advise: req.Advise})
	if err != nil {
		s.respondAnalyzeErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, newAnalyzeResponse(res))
}

// ─── POST /api/analyze/batch ──────────────────────────────────────────────────

type analyzeBatchRequest struct {
	Questions []string `json:"questions"`
	Advise    bool     `json:"advise"`
}

type analyzeBatchResponse struct {
	Results        []analyzeResponse `json:"results"`
	Total          int               `json:"total"`
	ProcessingTime float64           `json:"processing_time"`
}

// handleAnalyzeBatch runs up to MaxBatchSize questions through the worker
// pool. Results keep request order. Any failing question fails the batch.
func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req analyzeBatchRequest
	if !decode(w, r, &req) {
		return
	}

	if len(req.Questions) == 0 {
		respondErr(w, http.StatusBadRequest, "questions must not be empty")
		return
	}
	if len(req.Questions) > s.cfg.MaxBatchSize {
		respondErr(w, http.StatusBadRequest,
			fmt.Sprintf("at most %d questions per batch, got %d", s.cfg.MaxBatchSize, len(req.Questions)))
		return
	}

	reqs := make([]worker.Request, len(req.Questions))
	for i, q := range req.Questions {
		question, err := validateQuestion(q)
		if err != nil {
			respondErr(w, http.StatusBadRequest, fmt.Sprintf("questions[%d]: %v", i, err))
			return
		}
		reqs[i] = worker.Request{Text: question, Advise: req.Advise}
	}

	start := time.Now()
	results, err := s.pool.Run(r.Context(), reqs)
	if err != nil {
		s.respondAnalyzeErr(w, r, err)
		return
	}

	out := make([]analyzeResponse, len(results))
	for i, res := range results {
		out[i] = newAnalyzeResponse(res)
	}
	respond(w, http.StatusOK, analyzeBatchResponse{
		Results:        out,
		Total:          len(out),
		ProcessingTime: time.Since(start).Seconds(),
	})
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func validateQuestion(q string) (string, error) {
	q = strings.TrimSpace(q)
	switch n := utf8.RuneCountInString(q); {
	case n < minQuestionLen:
		return "", fmt.Errorf("question must be at least %d characters", minQuestionLen)
	case n > maxQuestionLen:
		return "", fmt.Errorf("question must be at most %d characters", maxQuestionLen)
	}
	return q, nil
}

// respondAnalyzeErr maps pipeline errors onto status codes.
func (s *Server) respondAnalyzeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analysis.ErrModelUnavailable):
		s.logger.Error("analyze: model unavailable", "error", err, logField(r))
		respondErr(w, http.StatusServiceUnavailable, "language model unavailable")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.logger.Warn("analyze: request cancelled", "error", err, logField(r))
		respondErr(w, http.StatusServiceUnavailable, "request timed out")
	default:
		s.respondInternalErr(w, r, fmt.Errorf("analyze: %w", err))
	}
}
