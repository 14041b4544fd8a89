package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nyashahama/overthinker-backend/internal/analysis"
)

const systemPrompt = `You are a calm, practical decision coach for everyday choices.
You will receive a scenario someone is overthinking, together with an automated analysis:
its intent category, risk score (0-100%), sentiment (-1 to 1), detected entities and actions,
stated constraints, and a few rule-based perspectives.

Your job is to produce:
1. A recommendation: 2-3 sentences. Be direct and specific to the scenario. If the risk score is
   high, put safety first.
2. A considerations array: 3-5 short points (one sentence each) the person should weigh, most
   important first. Do not repeat the perspectives verbatim.

Respond ONLY with valid JSON matching this exact schema, no markdown fences, no preamble:
{
  "recommendation": "...",
  "considerations": ["...", "..."]
}`

// buildPrompt serialises an analysis into a compact prompt string.
func buildPrompt(a analysis.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scenario: %s\n", a.Text)
	fmt.Fprintf(&sb, "intent: %s (confidence %.0f%%)\n", a.Intent, a.Confidence*100)
	fmt.Fprintf(&sb, "risk_score: %.0f%%\n", a.RiskScore*100)
	fmt.Fprintf(&sb, "sentiment: %.2f\n", a.Sentiment)

	if len(a.Entities) > 0 {
		ents := make([]string, len(a.Entities))
		for i, e := range a.Entities {
			ents[i] = fmt.Sprintf("%s (%s)", e.Text, e.Category)
		}
		fmt.Fprintf(&sb, "entities: %s\n", strings.Join(ents, ", "))
	}
	if len(a.Actions) > 0 {
		acts := make([]string, len(a.Actions))
		for i, act := range a.Actions {
			acts[i] = act.Text
		}
		fmt.Fprintf(&sb, "actions: %s\n", strings.Join(acts, "; "))
	}

	c := a.Constraints
	fmt.Fprintf(&sb, "urgency: %s\n", c.UrgencyLevel)
	if c.PrimaryConcern != "" {
		fmt.Fprintf(&sb, "primary_concern: %s\n", c.PrimaryConcern)
	}
	if c.BudgetAmount != "" {
		fmt.Fprintf(&sb, "budget: %s\n", c.BudgetAmount)
	}
	if c.TimeConstraint != "" {
		fmt.Fprintf(&sb, "time_constraint: %s\n", c.TimeConstraint)
	}

	if len(a.Perspectives) > 0 {
		sb.WriteString("perspectives:\n")
		for _, p := range a.Perspectives {
			fmt.Fprintf(&sb, "- %s: %s\n", p.Label, p.Summary)
		}
	}
	return sb.String()
}

// parseAdvice decodes the model's JSON answer, tolerating markdown fences.
func parseAdvice(raw string) (Advice, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var adv Advice
	if err := json.Unmarshal([]byte(raw), &adv); err != nil {
		return Advice{}, fmt.Errorf("parse response JSON: %w (raw: %.200s)", err, raw)
	}
	if strings.TrimSpace(adv.Recommendation) == "" {
		return Advice{}, fmt.Errorf("parse response JSON: empty recommendation")
	}
	if adv.Considerations == nil {
		adv.Considerations = []string{}
	}
	return adv, nil
}
