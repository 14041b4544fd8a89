package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyashahama/overthinker-backend/internal/intent"
)

// Signals are everything a perspective rule may look at.
type Signals struct {
	Text        string
	Entities    []Entity
	Actions     []ActionPhrase
	Sentiment   float64
	Risk        float64
	Hazards     []string // affirmed hazard cues, in text order
	Intent      intent.Intent
	Constraints intent.Constraints
}

func (s Signals) empty() bool {
	return strings.TrimSpace(s.Text) == "" && len(s.Entities) == 0 && len(s.Actions) == 0
}

// rule renders one perspective. Rules are pure and never return "".
type rule func(Signals) string

// perspectiveRules is the registry of every known label. Config.Perspectives
// selects and orders the active subset.
var perspectiveRules = map[Label]rule{
	LabelPractical: practicalView,
	LabelFinancial: financialView,
	LabelEmotional: emotionalView,
	LabelSafety:    safetyView,
	LabelEthical:   ethicalView,
	LabelLongTerm:  longTermView,
	LabelSocial:    socialView,
}

// Synthesizer turns pipeline signals into labelled perspectives.
type Synthesizer struct {
	labels []Label
}

// NewSynthesizer returns a Synthesizer emitting labels in the given order.
// Unknown or duplicate labels are ErrInvalidConfiguration. An empty list is
// valid and yields no perspectives.
func NewSynthesizer(labels []Label) (*Synthesizer, error) {
	if errs := validateLabels(labels); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
	}
	return &Synthesizer{labels: append([]Label(nil), labels...)}, nil
}

func validateLabels(labels []Label) []error {
	var errs []error
	seen := make(map[Label]struct{}, len(labels))
	for i, l := range labels {
		if _, ok := perspectiveRules[l]; !ok {
			errs = append(errs, fmt.Errorf("perspectives[%d]: unknown label %q", i, l))
		}
		if _, dup := seen[l]; dup {
			errs = append(errs, fmt.Errorf("perspectives[%d]: duplicate label %q", i, l))
		}
		seen[l] = struct{}{}
	}
	return errs
}

// Labels returns the active labels in output order.
func (s *Synthesizer) Labels() []Label {
	return append([]Label(nil), s.labels...)
}

// Synthesize returns one perspective per active label, or an empty slice when
// the scenario carries no content at all.
func (s *Synthesizer) Synthesize(sig Signals) []Perspective {
	if sig.empty() {
		return []Perspective{}
	}
	out := make([]Perspective, 0, len(s.labels))
	for _, l := range s.labels {
		out = append(out, Perspective{Label: l, Summary: perspectiveRules[l](sig)})
	}
	return out
}

// ─── RULES ────────────────────────────────────────────────────────────────────

func practicalView(s Signals) string {
	switch s.Intent {
	case intent.Transportation:
		dest := firstEntity(s.Entities, CategoryLocation, "your destination")
		switch {
		case s.Constraints.TimeSensitive:
			return fmt.Sprintf("Time matters here, so a car or rideshare gives the most direct route to %s.", dest)
		case s.Constraints.BudgetConscious:
			return fmt.Sprintf("To reach %s cheaply, public transport or a bike is usually the better fit.", dest)
		default:
			return fmt.Sprintf("Getting to %s is a trade-off between time, cost and comfort; decide which one matters most today.", dest)
		}
	case intent.Food:
		return "Pick the option you can actually prepare or get to in the time you have, and check what it takes before committing."
	case intent.Purchase:
		return "Separate the need from the want, then compare at least two alternatives before buying."
	}
	if a := firstAction(s.Actions); a != "" {
		return fmt.Sprintf("Break \"%s\" into concrete next steps and check what each one needs before you start.", a)
	}
	return "Identify the most efficient next step and what it needs from you."
}

func financialView(s Signals) string {
	switch {
	case s.Constraints.BudgetAmount != "":
		return fmt.Sprintf("You mentioned %s; make sure the full cost, including anything recurring, stays inside it.", s.Constraints.BudgetAmount)
	case s.Intent == intent.Purchase:
		return "Think in cost per use: a durable item that costs more up front can be cheaper over its lifetime."
	case s.Constraints.BudgetConscious:
		return "Money is a stated concern, so favour the cheapest option that still does the job."
	case s.Intent == intent.Career:
		return "Account for income gaps, benefits and switching costs before deciding."
	case s.Risk >= 0.6:
		return "High-risk choices tend to carry hidden costs; price in the downside, not just the upfront spend."
	}
	return "Consider the opportunity cost: what else the same money or time could do for you."
}

func emotionalView(s Signals) string {
	switch {
	case s.Sentiment > 0.1:
		return "You sound positive about this. Enjoy it, but make sure the excitement is not hiding any drawbacks."
	case s.Sentiment < -0.1:
		return "There is some unease in how you describe this. Name what worries you most before deciding."
	}
	return "Ask yourself which outcome you would be happiest with a week from now."
}

func safetyView(s Signals) string {
	if len(s.Hazards) > 0 {
		return fmt.Sprintf("Risk is %s (%.0f%%): watch out for %s.", riskBand(s.Risk), s.Risk*100, strings.Join(s.Hazards, ", "))
	}
	if place := firstEntity(s.Entities, CategoryLocation, ""); place != "" && s.Risk >= 0.3 {
		return fmt.Sprintf("Risk is %s (%.0f%%); check conditions around %s before you go.", riskBand(s.Risk), s.Risk*100, place)
	}
	return fmt.Sprintf("Risk is %s (%.0f%%); no explicit hazards were mentioned.", riskBand(s.Risk), s.Risk*100)
}

func ethicalView(s Signals) string {
	if p := firstEntity(s.Entities, CategoryPerson, ""); p != "" {
		return fmt.Sprintf("Be fair to %s: would they agree with how this decision affects them?", p)
	}
	if s.Intent == intent.Purchase || s.Intent == intent.Food {
		return "Consider where this comes from and its environmental impact."
	}
	return "Check that the choice is one you would be comfortable explaining to others."
}

func longTermView(s Signals) string {
	switch s.Intent {
	case intent.Career:
		return "Look past the next paycheck: where does each option leave your skills in five years?"
	case intent.Health:
		return "Small daily choices compound; favour the option you can keep up for months."
	case intent.Relationship:
		return "Think about how this shapes the relationship over time, not just this week."
	}
	if s.Risk >= 0.6 {
		return "A single bad outcome here could be hard to undo; weigh that more than short-term convenience."
	}
	return "Consider how this decision affects your future options and habits."
}

func socialView(s Signals) string {
	var people []string
	for _, e := range s.Entities {
		if e.Category == CategoryPerson || e.Category == CategoryOrganization {
			people = append(people, e.Text)
		}
	}
	if len(people) > 0 {
		return fmt.Sprintf("This involves %s; consider how they will be affected.", strings.Join(people, ", "))
	}
	if s.Intent == intent.Relationship {
		return "Talk it through with the people involved before deciding."
	}
	return "Think about how this impacts the people around you."
}

// ─── HELPERS ──────────────────────────────────────────────────────────────────

func riskBand(r float64) string {
	switch {
	case r >= 0.6:
		return "high"
	case r >= 0.3:
		return "moderate"
	}
	return "low"
}

func firstEntity(ents []Entity, cat Category, fallback string) string {
	for _, e := range ents {
		if e.Category == cat {
			return e.Text
		}
	}
	return fallback
}

func firstAction(acts []ActionPhrase) string {
	if len(acts) == 0 {
		return ""
	}
	return acts[0].Text
}
