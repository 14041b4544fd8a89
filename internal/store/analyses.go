package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/overthinker-backend/internal/advisor"
	"github.com/nyashahama/overthinker-backend/internal/analysis"
	"github.com/nyashahama/overthinker-backend/internal/db"
	"github.com/nyashahama/overthinker-backend/internal/intent"
)

// ─── TYPES ───────────────────────────────────────────────────────────────────

// Record is one persisted analysis.
type Record struct {
	ID        uuid.UUID         `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Analysis  analysis.Analysis `json:"analysis"`
	Advice    *advisor.Advice   `json:"advice,omitempty"`
}

// IntentCount is one row of the per-intent histogram.
type IntentCount struct {
	Intent intent.Intent `json:"intent"`
	Total  int64         `json:"total"`
}

// SaveAnalysisParams holds everything SaveAnalysis writes.
type SaveAnalysisParams struct {
	Analysis analysis.Analysis

	// Advice is nil when none was requested or the advisor failed.
	Advice *advisor.Advice
}

// ─── WRITES ──────────────────────────────────────────────────────────────────

// SaveAnalysis inserts the analysis row and one row per perspective in a
// single transaction.
func (s *Store) SaveAnalysis(ctx context.Context, p SaveAnalysisParams) (Record, error) {
	snapshot, err := json.Marshal(p.Analysis)
	if err != nil {
		return Record{}, fmt.Errorf("store.SaveAnalysis: marshal result: %w", err)
	}

	var advice sql.NullString
	if p.Advice != nil {
		raw, err := json.Marshal(p.Advice)
		if err != nil {
			return Record{}, fmt.Errorf("store.SaveAnalysis: marshal advice: %w", err)
		}
		advice = sql.NullString{String: string(raw), Valid: true}
	}

	var row db.Analysis
	err = s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		row, err = q.InsertAnalysis(ctx, db.InsertAnalysisParams{
			Question:   p.Analysis.Text,
			Intent:     string(p.Analysis.Intent),
			Confidence: float32(p.Analysis.Confidence),
			Sentiment:  float32(p.Analysis.Sentiment),
			RiskScore:  float32(p.Analysis.RiskScore),
			Result:     pqtype.NullRawMessage{RawMessage: snapshot, Valid: true},
			Advice:     advice,
		})
		if err != nil {
			return fmt.Errorf("insert analysis: %w", err)
		}

		for i, pv := range p.Analysis.Perspectives {
			if _, err := q.InsertPerspective(ctx, db.InsertPerspectiveParams{
				AnalysisID: row.ID,
				Position:   int32(i),
				Label:      string(pv.Label),
				Summary:    pv.Summary,
			}); err != nil {
				return fmt.Errorf("insert perspective %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("store.SaveAnalysis: %w", err)
	}

	return Record{
		ID:        row.ID,
		CreatedAt: row.CreatedAt,
		Analysis:  p.Analysis,
		Advice:    p.Advice,
	}, nil
}

// ─── READS ───────────────────────────────────────────────────────────────────

// GetAnalysis loads one analysis with its perspectives in stored order.
// Returns ErrNotFound when no row has the given id.
func (s *Store) GetAnalysis(ctx context.Context, id uuid.UUID) (Record, error) {
	row, err := s.q.GetAnalysisByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store.GetAnalysis: %w", err)
	}

	rec, err := recordFrom(row)
	if err != nil {
		return Record{}, fmt.Errorf("store.GetAnalysis: %w", err)
	}

	rows, err := s.q.ListPerspectivesByAnalysis(ctx, id)
	if err != nil {
		return Record{}, fmt.Errorf("store.GetAnalysis: perspectives: %w", err)
	}
	rec.Analysis.Perspectives = make([]analysis.Perspective, len(rows))
	for i, r := range rows {
		rec.Analysis.Perspectives[i] = analysis.Perspective{
			Label:   analysis.Label(r.Label),
			Summary: r.Summary,
		}
	}
	return rec, nil
}

// ListRecent returns up to limit analyses, newest first. Perspectives come from
// the stored snapshot.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		return []Record{}, nil
	}
	rows, err := s.q.ListRecentAnalyses(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("store.ListRecent: %w", err)
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := recordFrom(row)
		if err != nil {
			return nil, fmt.Errorf("store.ListRecent: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// IntentCounts returns how many stored analyses fell into each intent, most
// frequent first.
func (s *Store) IntentCounts(ctx context.Context) ([]IntentCount, error) {
	rows, err := s.q.CountAnalysesByIntent(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.IntentCounts: %w", err)
	}
	out := make([]IntentCount, len(rows))
	for i, r := range rows {
		out[i] = IntentCount{Intent: intent.Intent(r.Intent), Total: r.Total}
	}
	return out, nil
}

// ─── MAPPING ─────────────────────────────────────────────────────────────────

// recordFrom decodes the JSONB snapshot. Rows without a snapshot fall back to
// the scalar columns.
func recordFrom(row db.Analysis) (Record, error) {
	rec := Record{ID: row.ID, CreatedAt: row.CreatedAt}

	if row.Result.Valid {
		if err := json.Unmarshal(row.Result.RawMessage, &rec.Analysis); err != nil {
			return Record{}, fmt.Errorf("decode result %s: %w", row.ID, err)
		}
	} else {
		rec.Analysis = analysis.Analysis{
			Text:         row.Question,
			Entities:     []analysis.Entity{},
			Actions:      []analysis.ActionPhrase{},
			Perspectives: []analysis.Perspective{},
			Intent:       intent.Intent(row.Intent),
			Confidence:   float64(row.Confidence),
			Sentiment:    float64(row.Sentiment),
			RiskScore:    float64(row.RiskScore),
		}
	}

	if row.Advice.Valid {
		var adv advisor.Advice
		if err := json.Unmarshal([]byte(row.Advice.String), &adv); err != nil {
			return Record{}, fmt.Errorf("decode advice %s: %w", row.ID, err)
		}
		rec.Advice = &adv
	}
	return rec, nil
}
