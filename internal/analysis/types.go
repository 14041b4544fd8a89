// Package analysis implements the scenario analysis pipeline: entity and
// action extraction, sentiment scoring, risk estimation and perspective
// synthesis, composed behind the Analyzer facade.
//
// Every stage is deterministic. The only process-wide state is the injected
// nlp.Model, which is read-only after loading.
package analysis

import (
	"errors"

	"github.com/nyashahama/overthinker-backend/internal/intent"
	"github.com/nyashahama/overthinker-backend/internal/nlp"
)

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrModelUnavailable is nlp.ErrModelUnavailable, re-exported so callers of
// this package can test for it without importing nlp.
var ErrModelUnavailable = nlp.ErrModelUnavailable

// ErrInvalidConfiguration is returned by constructors when the risk weights,
// hazard vocabulary, lexicon or perspective list are malformed. It is never
// returned from a per-call method.
var ErrInvalidConfiguration = errors.New("analysis: invalid configuration")

// ─── ENTITIES & ACTIONS ──────────────────────────────────────────────────────

// Category is the coarse entity class used downstream of the extractor.
type Category string

const (
	CategoryPerson       Category = "person"
	CategoryOrganization Category = "organization"
	CategoryLocation     Category = "location"
	CategoryOther        Category = "other"
)

// Entity is a named-entity span found in the scenario text. Start and End are
// byte offsets into the input, or -1 when the span could not be located.
type Entity struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
}

// ActionPhrase is a head verb plus its direct object, e.g. "buy a new car".
type ActionPhrase struct {
	Text string `json:"text"`
	Verb string `json:"verb"`
}

// ─── PERSPECTIVES ────────────────────────────────────────────────────────────

// Label names one angle of analysis.
type Label string

const (
	LabelPractical Label = "practical"
	LabelFinancial Label = "financial"
	LabelEmotional Label = "emotional"
	LabelSafety    Label = "safety"
	LabelEthical   Label = "ethical"
	LabelLongTerm  Label = "long_term"
	LabelSocial    Label = "social"
)

// Perspective is one labelled summary of the scenario.
type Perspective struct {
	Label   Label  `json:"label"`
	Summary string `json:"summary"`
}

// ─── RESULT ──────────────────────────────────────────────────────────────────

// Analysis is the full result of Analyzer.Parse. The caller owns it; nothing
// inside is shared with the analyzer or with other results.
type Analysis struct {
	Text         string             `json:"text"`
	Entities     []Entity           `json:"entities"`
	Actions      []ActionPhrase     `json:"actions"`
	Sentiment    float64            `json:"sentiment"`
	RiskScore    float64            `json:"risk_score"`
	Perspectives []Perspective      `json:"perspectives"`
	Intent       intent.Intent      `json:"intent"`
	Confidence   float64            `json:"confidence"`
	Constraints  intent.Constraints `json:"constraints"`
}

// clone returns a deep copy of a so cached results never alias caller data.
func (a Analysis) clone() Analysis {
	out := a
	out.Entities = append([]Entity(nil), a.Entities...)
	out.Actions = append([]ActionPhrase(nil), a.Actions...)
	out.Perspectives = append([]Perspective(nil), a.Perspectives...)
	if out.Entities == nil {
		out.Entities = []Entity{}
	}
	if out.Actions == nil {
		out.Actions = []ActionPhrase{}
	}
	if out.Perspectives == nil {
		out.Perspectives = []Perspective{}
	}
	return out
}
