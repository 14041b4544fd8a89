package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nyashahama/overthinker-backend/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ─── GET /api/analyses/{analysisID} ──────────────────────────────────────────

// handleGetAnalysis returns one stored analysis. 404 for an unknown id.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "analysisID"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid analysis id")
		return
	}

	rec, err := s.records.GetAnalysis(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("get analysis: %w", err))
		return
	}

	respond(w, http.StatusOK, rec)
}

// ─── GET /api/analyses?limit=N ────────────────────────────────────────────────

type listAnalysesResponse struct {
	Analyses []store.Record `json:"analyses"`
	Total    int            `json:"total"`
}

// handleListAnalyses returns the most recent analyses, newest first.
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			respondErr(w, http.StatusBadRequest,
				fmt.Sprintf("limit must be an integer between 1 and %d", maxListLimit))
			return
		}
		limit = n
	}

	recs, err := s.records.ListRecent(r.Context(), limit)
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("list analyses: %w", err))
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}

	respond(w, http.StatusOK, listAnalysesResponse{Analyses: recs, Total: len(recs)})
}

// ─── GET /api/analyses/stats ──────────────────────────────────────────────────

type analysisStatsResponse struct {
	ByIntent []store.IntentCount `json:"by_intent"`
	Total    int64               `json:"total"`
}

// handleAnalysisStats returns how many stored analyses fell into each intent.
func (s *Server) handleAnalysisStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.records.IntentCounts(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("analysis stats: %w", err))
		return
	}

	resp := analysisStatsResponse{ByIntent: counts}
	if resp.ByIntent == nil {
		resp.ByIntent = []store.IntentCount{}
	}
	for _, c := range counts {
		resp.Total += c.Total
	}
	respond(w, http.StatusOK, resp)
}
