package analysis_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nyashahama/overthinker-backend/internal/analysis"
	"github.com/nyashahama/overthinker-backend/internal/intent"
)

var allLabels = []analysis.Label{
	analysis.LabelPractical, analysis.LabelFinancial, analysis.LabelEmotional,
	analysis.LabelSafety, analysis.LabelEthical, analysis.LabelLongTerm, analysis.LabelSocial,
}

func TestNewSynthesizer_InvalidLabels(t *testing.T) {
	tests := map[string][]analysis.Label{
		"unknown":   {analysis.LabelPractical, "spiritual"},
		"duplicate": {analysis.LabelSafety, analysis.LabelSafety},
	}
	for name, labels := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := analysis.NewSynthesizer(labels)
			if !errors.Is(err, analysis.ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestSynthesize_NoActiveLabels(t *testing.T) {
	s, err := analysis.NewSynthesizer(nil)
	if err != nil {
		t.Fatalf("NewSynthesizer(nil): %v", err)
	}
	got := s.Synthesize(analysis.Signals{Text: "Should I eat wild mushrooms?", Risk: 0.8})
	if got == nil || len(got) != 0 {
		t.Errorf("Synthesize = %#v, want empty non-nil slice", got)
	}
}

func TestSynthesize_EmptyInput(t *testing.T) {
	s, err := analysis.NewSynthesizer(allLabels)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}
	got := s.Synthesize(analysis.Signals{Text: "   "})
	if got == nil || len(got) != 0 {
		t.Errorf("Synthesize(empty) = %#v, want empty non-nil slice", got)
	}
}

func TestSynthesize_OnePerLabelInOrder(t *testing.T) {
	labels := []analysis.Label{analysis.LabelSafety, analysis.LabelPractical, analysis.LabelSocial}
	s, err := analysis.NewSynthesizer(labels)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	got := s.Synthesize(analysis.Signals{Text: "Should I go?"})
	if len(got) != len(labels) {
		t.Fatalf("got %d perspectives, want %d", len(got), len(labels))
	}
	for i, p := range got {
		if p.Label != labels[i] {
			t.Errorf("perspectives[%d].Label = %q, want %q", i, p.Label, labels[i])
		}
		if strings.TrimSpace(p.Summary) == "" {
			t.Errorf("perspectives[%d] (%s) has an empty summary", i, p.Label)
		}
	}
}

// Every rule must produce text for every combination of branches it reads.
func TestSynthesize_RulesNeverEmpty(t *testing.T) {
	s, err := analysis.NewSynthesizer(allLabels)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	ents := [][]analysis.Entity{
		nil,
		{{Text: "Paris", Category: analysis.CategoryLocation}},
		{{Text: "Alice", Category: analysis.CategoryPerson}, {Text: "Google", Category: analysis.CategoryOrganization}},
	}
	cons := []intent.Constraints{
		{},
		{TimeSensitive: true},
		{BudgetConscious: true, BudgetAmount: "$500"},
	}
	intents := []intent.Intent{
		intent.Transportation, intent.Purchase, intent.Food, intent.Career,
		intent.Health, intent.Relationship, intent.General,
	}

	for _, e := range ents {
		for _, c := range cons {
			for _, in := range intents {
				for _, risk := range []float64{0, 0.45, 0.9} {
					sig := analysis.Signals{
						Text: "scenario", Entities: e, Intent: in, Constraints: c,
						Risk: risk, Sentiment: risk - 0.5,
					}
					for _, p := range s.Synthesize(sig) {
						if p.Summary == "" {
							t.Errorf("%s empty for intent=%s risk=%v", p.Label, in, risk)
						}
					}
				}
			}
		}
	}
}

func TestSynthesize_TailoredSummaries(t *testing.T) {
	s, err := analysis.NewSynthesizer(allLabels)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	got := s.Synthesize(analysis.Signals{
		Text:        "Should I take a cab to Paris quickly? It is dangerous",
		Entities:    []analysis.Entity{{Text: "Paris", Category: analysis.CategoryLocation}},
		Risk:        0.8,
		Hazards:     []string{"dangerous"},
		Intent:      intent.Transportation,
		Constraints: intent.Constraints{TimeSensitive: true},
	})

	byLabel := make(map[analysis.Label]string, len(got))
	for _, p := range got {
		byLabel[p.Label] = p.Summary
	}
	if !strings.Contains(byLabel[analysis.LabelPractical], "Paris") {
		t.Errorf("practical = %q, want it to name the destination", byLabel[analysis.LabelPractical])
	}
	if !strings.Contains(byLabel[analysis.LabelSafety], "dangerous") {
		t.Errorf("safety = %q, want it to name the hazard", byLabel[analysis.LabelSafety])
	}
	if !strings.Contains(byLabel[analysis.LabelSafety], "high") {
		t.Errorf("safety = %q, want a high risk band", byLabel[analysis.LabelSafety])
	}
}
