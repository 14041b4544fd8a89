package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nyashahama/overthinker-backend/internal/advisor"
	"github.com/nyashahama/overthinker-backend/internal/analysis"
	"github.com/nyashahama/overthinker-backend/internal/worker"
)

// printResult writes the human-readable report for one scenario.
func printResult(w io.Writer, res worker.Result) {
	a := res.Analysis

	fmt.Fprintf(w, "Scenario:    %s\n", a.Text)
	fmt.Fprintf(w, "Risk score:  %.0f%%\n", a.RiskScore*100)
	fmt.Fprintf(w, "Sentiment:   %+.2f (%s)\n", a.Sentiment, mood(a.Sentiment))
	fmt.Fprintf(w, "Intent:      %s (confidence %.0f%%)\n", a.Intent, a.Confidence*100)

	ents := make([]string, len(a.Entities))
	for i, e := range a.Entities {
		ents[i] = fmt.Sprintf("%s (%s)", e.Text, e.Category)
	}
	fmt.Fprintf(w, "Entities:    %s\n", listOrNone(ents))

	acts := make([]string, len(a.Actions))
	for i, act := range a.Actions {
		acts[i] = act.Text
	}
	fmt.Fprintf(w, "Actions:     %s\n", listOrNone(acts))

	if c := a.Constraints; c.PrimaryConcern != "" || c.BudgetAmount != "" || c.TimeConstraint != "" {
		fmt.Fprintf(w, "Constraints: urgency %s", c.UrgencyLevel)
		if c.PrimaryConcern != "" {
			fmt.Fprintf(w, ", focus %s", c.PrimaryConcern)
		}
		if c.BudgetAmount != "" {
			fmt.Fprintf(w, ", budget %s", c.BudgetAmount)
		}
		if c.TimeConstraint != "" {
			fmt.Fprintf(w, ", by %s", c.TimeConstraint)
		}
		fmt.Fprintln(w)
	}

	if len(a.Perspectives) > 0 {
		fmt.Fprintln(w, "\nPerspectives:")
		for _, p := range a.Perspectives {
			fmt.Fprintf(w, "  - %s: %s\n", p.Label, p.Summary)
		}
	}

	if res.Advice != nil {
		fmt.Fprintf(w, "\nAdvice: %s\n", res.Advice.Recommendation)
		for _, c := range res.Advice.Considerations {
			fmt.Fprintf(w, "  * %s\n", c)
		}
	}
}

func mood(sentiment float64) string {
	switch {
	case sentiment > 0.05:
		return "positive"
	case sentiment < -0.05:
		return "negative"
	default:
		return "neutral"
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// jsonResult is the --json shape of one scenario.
type jsonResult struct {
	analysis.Analysis
	Advice *advisor.Advice `json:"advice,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
