package analysis_test

import (
	"errors"
	"testing"

	"github.com/nyashahama/overthinker-backend/internal/analysis"
)

func TestScore(t *testing.T) {
	s, err := analysis.NewScorer()
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}

	tests := []struct {
		text string
		want float64
	}{
		{"", 0},
		{"the table by the window", 0},
		{"great", 0.8},
		{"I had a great lunch today", 0.8},
		{"very great", 1},
		{"slightly bad", -0.35},
		{"not good", -0.35},
		{"It isn't good", -0.35},
		{"good. not bad", 0.525},
		{"not here. good", 0.7},
		{"not the big red nice one", 0.6},
		{"enjoying it", 0.4},
		{"Eating wild mushrooms could be dangerous", -0.25},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := s.Score(tt.text); !approx(got, tt.want) {
				t.Errorf("Score(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScore_Bounded(t *testing.T) {
	s, err := analysis.NewScorer()
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	for _, text := range []string{
		"extremely extremely awesome perfect best",
		"absolutely terrible horrible awful worst",
		"not not not bad",
		"!!!",
	} {
		if got := s.Score(text); got < -1 || got > 1 {
			t.Errorf("Score(%q) = %v, outside [-1,1]", text, got)
		}
	}
}

func TestNewScorerFromYAML_Invalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":          "polarity: [",
		"empty polarity":    "negation_factor: -0.5\nnegation_window: 3\n",
		"polarity too high": "polarity: {good: 2}\nnegation_factor: -0.5\nnegation_window: 3\n",
		"bad intensifier":   "polarity: {good: 0.5}\nintensifiers: {very: 0}\nnegation_factor: -0.5\nnegation_window: 3\n",
		"positive factor":   "polarity: {good: 0.5}\nnegation_factor: 0.5\nnegation_window: 3\n",
		"zero window":       "polarity: {good: 0.5}\nnegation_factor: -0.5\nnegation_window: 0\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := analysis.NewScorerFromYAML([]byte(doc))
			if !errors.Is(err, analysis.ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}
