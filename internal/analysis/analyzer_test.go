package analysis_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nyashahama/overthinker-backend/internal/analysis"
	"github.com/nyashahama/overthinker-backend/internal/intent"
	"github.com/nyashahama/overthinker-backend/internal/nlp/nlptest"
)

func newAnalyzer(t *testing.T, opts ...analysis.Option) *analysis.Analyzer {
	t.Helper()
	a, err := analysis.New(nlptest.New(), analysis.DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("analysis.New: %v", err)
	}
	return a
}

// ─── construction ─────────────────────────────────────────────────────────────

func TestNew_NilModel(t *testing.T) {
	_, err := analysis.New(nil, analysis.DefaultConfig())
	if !errors.Is(err, analysis.ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestNew_InvalidConfiguration(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.Perspectives = append(cfg.Perspectives, "spiritual")
	cfg.Risk.Weights.Sentiment = 2

	_, err := analysis.New(nlptest.New(), cfg)
	if !errors.Is(err, analysis.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}

	_, err = analysis.New(nlptest.New(), analysis.DefaultConfig(), analysis.WithCacheSize(-1))
	if !errors.Is(err, analysis.ErrInvalidConfiguration) {
		t.Fatalf("negative cache size: err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestAnalyzer_Metadata(t *testing.T) {
	a := newAnalyzer(t)
	if a.ModelName() != "nlptest" {
		t.Errorf("ModelName = %q, want nlptest", a.ModelName())
	}
	in := a.Intents()
	if len(in) == 0 || in[len(in)-1] != intent.General {
		t.Errorf("Intents = %v, want General last", in)
	}
}

// ─── documented scenarios ─────────────────────────────────────────────────────

func TestParse_WildMushrooms(t *testing.T) {
	a := newAnalyzer(t)
	res, err := a.Parse("Eating wild mushrooms could be dangerous")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	for _, e := range res.Entities {
		if e.Category == analysis.CategoryPerson || e.Category == analysis.CategoryOrganization {
			t.Errorf("unexpected person/org entity %+v", e)
		}
	}
	if res.RiskScore <= 0.5 {
		t.Errorf("risk_score = %v, want > 0.5", res.RiskScore)
	}
	if res.Sentiment >= 0 {
		t.Errorf("sentiment = %v, want < 0", res.Sentiment)
	}
	if res.Intent != intent.Food {
		t.Errorf("intent = %q, want food", res.Intent)
	}
}

func TestParse_GreatLunch(t *testing.T) {
	a := newAnalyzer(t)
	res, err := a.Parse("I had a great lunch today")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.RiskScore > 0.05 {
		t.Errorf("risk_score = %v, want near 0", res.RiskScore)
	}
	if res.Sentiment <= 0 {
		t.Errorf("sentiment = %v, want > 0", res.Sentiment)
	}
}

// ─── properties ───────────────────────────────────────────────────────────────

func TestParse_EmptyInput(t *testing.T) {
	a := newAnalyzer(t)
	for _, text := range []string{"", "   ", "\n\t"} {
		res, err := a.Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		if len(res.Entities) != 0 || len(res.Actions) != 0 || len(res.Perspectives) != 0 {
			t.Errorf("Parse(%q) = %+v, want empty sequences", text, res)
		}
		if res.Sentiment != 0 || res.RiskScore != 0 {
			t.Errorf("Parse(%q): sentiment=%v risk=%v, want 0/0", text, res.Sentiment, res.RiskScore)
		}
	}
}

func TestParse_Bounded(t *testing.T) {
	a := newAnalyzer(t)
	for _, text := range []string{
		"Should I gamble my savings in Mumbai? It is risky, deadly and toxic!",
		"I absolutely love this wonderful, perfect, safe, happy plan.",
		"not not not never no",
		"1234 $$$ ???",
	} {
		res, err := a.Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		if res.Sentiment < -1 || res.Sentiment > 1 {
			t.Errorf("sentiment %v outside [-1,1] for %q", res.Sentiment, text)
		}
		if res.RiskScore < 0 || res.RiskScore > 1 {
			t.Errorf("risk_score %v outside [0,1] for %q", res.RiskScore, text)
		}
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Errorf("confidence %v outside [0,1] for %q", res.Confidence, text)
		}
	}
}

func TestParse_Deterministic(t *testing.T) {
	a := newAnalyzer(t)
	b := newAnalyzer(t)
	text := "Should Alice quit Google and drive to Bangalore for a risky startup?"

	first, err := a.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := a.Parse(text)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
	other, err := b.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(first, other); diff != "" {
		t.Errorf("separate analyzers disagree (-a +b):\n%s", diff)
	}
}

func TestParse_HazardPhraseNeverLowersRisk(t *testing.T) {
	a := newAnalyzer(t)
	tests := []struct {
		base, hazard string
	}{
		{"I had a great lunch today.", " It was toxic."},
		{"Should I climb the mountain?", " It is dangerous."},
		{"Should I invest my savings?", " It is a high risk bet."},
		{"Eating wild mushrooms could be dangerous.", " They are poisonous."},
		{"It is not dangerous.", " It is deadly."},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			without, err := a.Parse(tt.base)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			with, err := a.Parse(tt.base + tt.hazard)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if with.RiskScore < without.RiskScore {
				t.Errorf("risk fell from %v to %v after adding %q", without.RiskScore, with.RiskScore, tt.hazard)
			}
		})
	}
}

func TestParse_HazardPhraseNeverLowersRiskOfNegativeText(t *testing.T) {
	a := newAnalyzer(t)
	base := "I gamble, gamble and gamble near Everest. Terrible."

	without, err := a.Parse(base)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, hazard := range []string{" Loss.", " Some debt.", " It is unstable."} {
		with, err := a.Parse(base + hazard)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		// The mild hazard word pulls the mean polarity toward zero.
		if with.Sentiment <= without.Sentiment {
			t.Errorf("%q: sentiment %v, want above %v", hazard, with.Sentiment, without.Sentiment)
		}
		if with.RiskScore < without.RiskScore {
			t.Errorf("risk fell from %v to %v after adding %q", without.RiskScore, with.RiskScore, hazard)
		}
	}
}

func TestParse_PerspectivesForNonEmptyInput(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.Perspectives = []analysis.Label{analysis.LabelSafety}
	a, err := analysis.New(nlptest.New(), cfg)
	if err != nil {
		t.Fatalf("analysis.New: %v", err)
	}

	res, err := a.Parse("hmm")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Perspectives) != 1 || res.Perspectives[0].Label != analysis.LabelSafety {
		t.Errorf("Perspectives = %+v, want one safety perspective", res.Perspectives)
	}
}

func TestParse_ModelFailureAborts(t *testing.T) {
	a, err := analysis.New(&nlptest.Model{Unavailable: true}, analysis.DefaultConfig())
	if err != nil {
		t.Fatalf("analysis.New: %v", err)
	}
	res, err := a.Parse("Should I go?")
	if !errors.Is(err, analysis.ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
	if diff := cmp.Diff(analysis.Analysis{}, res); diff != "" {
		t.Errorf("partial result returned:\n%s", diff)
	}
}

// ─── cache ────────────────────────────────────────────────────────────────────

func TestParse_CacheReturnsIndependentCopies(t *testing.T) {
	a := newAnalyzer(t, analysis.WithCacheSize(8))
	text := "Should Alice drive to Paris?"

	first, err := a.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want, _ := newAnalyzer(t).Parse(text)

	if len(first.Entities) == 0 || len(first.Perspectives) == 0 {
		t.Fatalf("expected entities and perspectives, got %+v", first)
	}
	first.Entities[0].Text = "mutated"
	first.Perspectives[0].Summary = "mutated"

	second, err := a.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Errorf("cached result was aliased (-want +got):\n%s", diff)
	}
}

func TestParse_Concurrent(t *testing.T) {
	a := newAnalyzer(t, analysis.WithCacheSize(4))
	texts := []string{
		"Should I buy a new phone?",
		"Eating wild mushrooms could be dangerous",
		"Should I take the bus to Delhi quickly?",
		"I had a great lunch today",
		"Should I quit my job at Google?",
	}
	want := make([]analysis.Analysis, len(texts))
	for i, text := range texts {
		res, err := newAnalyzer(t).Parse(text)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		want[i] = res
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, text := range texts {
				res, err := a.Parse(text)
				if err != nil {
					errs <- err.Error()
					return
				}
				if !cmp.Equal(want[i], res) {
					errs <- "mismatch for " + text
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
