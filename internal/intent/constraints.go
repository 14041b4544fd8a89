package intent

import (
	"regexp"
	"strings"

	"github.com/mingrammer/commonregex"
)

// Constraints are the decision preferences a scenario expresses.
type Constraints struct {
	TimeSensitive      bool   `json:"time_sensitive"`
	BudgetConscious    bool   `json:"budget_conscious"`
	QualityFocused     bool   `json:"quality_focused"`
	ConvenienceFocused bool   `json:"convenience_focused"`
	UrgencyLevel       string `json:"urgency_level"`
	PrimaryConcern     string `json:"primary_concern,omitempty"`
	BudgetAmount       string `json:"budget_amount,omitempty"`
	TimeConstraint     string `json:"time_constraint,omitempty"`
}

// Concern names, also used as PrimaryConcern values.
const (
	ConcernTime        = "time_sensitive"
	ConcernBudget      = "budget_conscious"
	ConcernQuality     = "quality_focused"
	ConcernConvenience = "convenience"
)

const (
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
)

type concernKeywords struct {
	name     string
	keywords []string
}

// Order breaks ties when picking the primary concern.
var concerns = []concernKeywords{
	{ConcernTime, []string{"urgent", "quick", "fast", "asap", "immediately", "hurry", "rush",
		"quickly", "soon", "right now"}},
	{ConcernBudget, []string{"cheap", "affordable", "budget", "save money", "economical",
		"inexpensive", "low cost", "under"}},
	{ConcernQuality, []string{"best", "quality", "premium", "reliable", "durable", "long-term",
		"high quality", "top rated", "excellent"}},
	{ConcernConvenience, []string{"easy", "convenient", "simple", "hassle free", "comfortable",
		"effortless"}},
}

// commonregex only knows dollar prices.
var localPriceRe = regexp.MustCompile(`(?i)(?:(?:rs\.?|inr|₹|€|£)\s?\d[\d,]*(?:\.\d+)?|\d[\d,]*(?:\.\d+)?\s?(?:rupees|dollars|euros|pounds|bucks))`)

// ExtractConstraints reads urgency, budget, quality and convenience cues out
// of text. Keywords match whole words; "long-term" also matches "long term".
func ExtractConstraints(text string) Constraints {
	c := Constraints{UrgencyLevel: UrgencyNormal}

	padded := pad(strings.ReplaceAll(text, "-", " "))
	best, bestHits := "", 0
	for _, group := range concerns {
		hits := 0
		for _, kw := range group.keywords {
			if strings.Contains(padded, " "+strings.ReplaceAll(kw, "-", " ")+" ") {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		switch group.name {
		case ConcernTime:
			c.TimeSensitive = true
			c.UrgencyLevel = UrgencyHigh
		case ConcernBudget:
			c.BudgetConscious = true
		case ConcernQuality:
			c.QualityFocused = true
		case ConcernConvenience:
			c.ConvenienceFocused = true
		}
		if hits > bestHits {
			best, bestHits = group.name, hits
		}
	}
	c.PrimaryConcern = best

	if m := commonregex.PriceRegex.FindString(text); m != "" {
		c.BudgetAmount = strings.TrimSpace(m)
	} else if m := localPriceRe.FindString(text); m != "" {
		c.BudgetAmount = strings.TrimSpace(m)
	}

	if m := commonregex.DateRegex.FindString(text); m != "" {
		c.TimeConstraint = strings.TrimSpace(m)
	} else if m := commonregex.TimeRegex.FindString(text); m != "" {
		c.TimeConstraint = strings.TrimSpace(m)
	}

	return c
}
