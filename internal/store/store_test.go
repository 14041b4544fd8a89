package store_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/overthinker-backend/internal/advisor"
	"github.com/nyashahama/overthinker-backend/internal/analysis"
	"github.com/nyashahama/overthinker-backend/internal/db"
	"github.com/nyashahama/overthinker-backend/internal/intent"
	"github.com/nyashahama/overthinker-backend/internal/store"
)

// ─── TEST INFRASTRUCTURE ──────────────────────────────────────────────────────

// stubQuerier serves canned rows for the read paths. Write methods are never
// reached without a real transaction.
type stubQuerier struct {
	db.Querier
	analyses     map[uuid.UUID]db.Analysis
	perspectives map[uuid.UUID][]db.AnalysisPerspective
	recent       []db.Analysis
	counts       []db.CountAnalysesByIntentRow
	err          error
	gotLimit     int32
}

func (s *stubQuerier) GetAnalysisByID(_ context.Context, id uuid.UUID) (db.Analysis, error) {
	if s.err != nil {
		return db.Analysis{}, s.err
	}
	row, ok := s.analyses[id]
	if !ok {
		return db.Analysis{}, sql.ErrNoRows
	}
	return row, nil
}

func (s *stubQuerier) ListPerspectivesByAnalysis(_ context.Context, id uuid.UUID) ([]db.AnalysisPerspective, error) {
	return s.perspectives[id], nil
}

func (s *stubQuerier) ListRecentAnalyses(_ context.Context, limit int32) ([]db.Analysis, error) {
	s.gotLimit = limit
	return s.recent, s.err
}

func (s *stubQuerier) CountAnalysesByIntent(context.Context) ([]db.CountAnalysesByIntentRow, error) {
	return s.counts, s.err
}

func sampleAnalysis() analysis.Analysis {
	return analysis.Analysis{
		Text:      "Eating wild mushrooms could be dangerous",
		Entities:  []analysis.Entity{},
		Actions:   []analysis.ActionPhrase{{Text: "eating wild mushrooms", Verb: "eat"}},
		Sentiment: -0.25,
		RiskScore: 0.8,
		Perspectives: []analysis.Perspective{
			{Label: analysis.LabelSafety, Summary: "Risk is high (80%): watch out for dangerous."},
		},
		Intent:      intent.Food,
		Confidence:  1,
		Constraints: intent.Constraints{UrgencyLevel: intent.UrgencyNormal},
	}
}

func snapshot(t *testing.T, v any) pqtype.NullRawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}

// ─── UNIT TESTS ───────────────────────────────────────────────────────────────

func TestGetAnalysis_NotFound(t *testing.T) {
	st := store.New(nil, &stubQuerier{})
	_, err := st.GetAnalysis(context.Background(), uuid.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetAnalysis_QueryError(t *testing.T) {
	boom := errors.New("connection reset")
	st := store.New(nil, &stubQuerier{err: boom})
	_, err := st.GetAnalysis(context.Background(), uuid.New())
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
	if errors.Is(err, store.ErrNotFound) {
		t.Error("query error reported as ErrNotFound")
	}
}

func TestGetAnalysis_PerspectivesFromRows(t *testing.T) {
	id := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := sampleAnalysis()
	adv := advisor.Advice{Recommendation: "Buy them from a shop.", Considerations: []string{"poison"}}

	q := &stubQuerier{
		analyses: map[uuid.UUID]db.Analysis{id: {
			ID:        id,
			Question:  a.Text,
			Intent:    string(a.Intent),
			Result:    snapshot(t, a),
			Advice:    sql.NullString{String: `{"recommendation":"Buy them from a shop.","considerations":["poison"]}`, Valid: true},
			CreatedAt: created,
		}},
		perspectives: map[uuid.UUID][]db.AnalysisPerspective{id: {
			{AnalysisID: id, Position: 0, Label: "practical", Summary: "first"},
			{AnalysisID: id, Position: 1, Label: "safety", Summary: "second"},
		}},
	}

	got, err := store.New(nil, q).GetAnalysis(context.Background(), id)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}

	want := a
	want.Perspectives = []analysis.Perspective{
		{Label: analysis.LabelPractical, Summary: "first"},
		{Label: analysis.LabelSafety, Summary: "second"},
	}
	if diff := cmp.Diff(store.Record{ID: id, CreatedAt: created, Analysis: want, Advice: &adv}, got); diff != "" {
		t.Errorf("record (-want +got):\n%s", diff)
	}
}

func TestListRecent(t *testing.T) {
	id := uuid.New()
	q := &stubQuerier{recent: []db.Analysis{{
		ID:         id,
		Question:   "Should I quit my job?",
		Intent:     "career",
		Confidence: 0.5,
		Sentiment:  -0.25,
		RiskScore:  0.5,
	}}}
	st := store.New(nil, q)

	got, err := st.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if q.gotLimit != 10 {
		t.Errorf("limit = %d, want 10", q.gotLimit)
	}
	want := []store.Record{{
		ID: id,
		Analysis: analysis.Analysis{
			Text:         "Should I quit my job?",
			Entities:     []analysis.Entity{},
			Actions:      []analysis.ActionPhrase{},
			Perspectives: []analysis.Perspective{},
			Intent:       intent.Career,
			Confidence:   0.5,
			Sentiment:    -0.25,
			RiskScore:    0.5,
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
}

func TestListRecent_NonPositiveLimit(t *testing.T) {
	q := &stubQuerier{err: errors.New("must not be called")}
	got, err := store.New(nil, q).ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want 0", len(got))
	}
}

func TestListRecent_BadSnapshot(t *testing.T) {
	q := &stubQuerier{recent: []db.Analysis{{
		ID:     uuid.New(),
		Result: pqtype.NullRawMessage{RawMessage: []byte(`{"risk_score":"high"}`), Valid: true},
	}}}
	if _, err := store.New(nil, q).ListRecent(context.Background(), 5); err == nil {
		t.Error("expected decode error, got nil")
	}
}

func TestIntentCounts(t *testing.T) {
	q := &stubQuerier{counts: []db.CountAnalysesByIntentRow{
		{Intent: "food", Total: 3},
		{Intent: "general", Total: 1},
	}}
	got, err := store.New(nil, q).IntentCounts(context.Background())
	if err != nil {
		t.Fatalf("IntentCounts: %v", err)
	}
	want := []store.IntentCount{{Intent: intent.Food, Total: 3}, {Intent: intent.General, Total: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("counts (-want +got):\n%s", diff)
	}
}

// ─── INTEGRATION TESTS ────────────────────────────────────────────────────────

// openTestDB returns a *sql.DB from DATABASE_URL. Skips if the env var is
// not set so the suite still passes without a Postgres instance.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping store integration tests")
	}
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if err := pool.PingContext(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("ping: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestSaveAnalysis_RoundTrip(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	st := store.New(pool, db.New(pool))

	a := sampleAnalysis()
	adv := &advisor.Advice{Recommendation: "Buy them from a shop.", Considerations: []string{}}

	saved, err := st.SaveAnalysis(ctx, store.SaveAnalysisParams{Analysis: a, Advice: adv})
	if err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.ExecContext(context.Background(), `DELETE FROM analyses WHERE id = $1`, saved.ID)
	})
	if saved.ID == uuid.Nil {
		t.Fatal("saved record has nil id")
	}

	got, err := st.GetAnalysis(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if diff := cmp.Diff(a, got.Analysis); diff != "" {
		t.Errorf("analysis (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(adv, got.Advice); diff != "" {
		t.Errorf("advice (-want +got):\n%s", diff)
	}

	recent, err := st.ListRecent(ctx, 50)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	found := false
	for _, r := range recent {
		if r.ID == saved.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("saved analysis %s missing from ListRecent", saved.ID)
	}
}

func TestSaveAnalysis_WithoutAdvice(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	st := store.New(pool, db.New(pool))

	saved, err := st.SaveAnalysis(ctx, store.SaveAnalysisParams{Analysis: sampleAnalysis()})
	if err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.ExecContext(context.Background(), `DELETE FROM analyses WHERE id = $1`, saved.ID)
	})

	got, err := st.GetAnalysis(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if got.Advice != nil {
		t.Errorf("advice = %+v, want nil", got.Advice)
	}
}
