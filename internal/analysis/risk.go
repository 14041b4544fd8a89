package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nyashahama/overthinker-backend/internal/nlp"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// RiskAssessment is the breakdown behind a risk score. Score is the only
// value exposed on Analysis; the rest feeds perspective rules and debugging.
type RiskAssessment struct {
	Score      float64
	Hazard     float64 // h after negation damping
	Mitigation float64 // noisy-OR of negated cue severities
	Entity     float64
	Action     float64
	Pressure   float64 // sentiment pressure
	Cues       []string
	Negated    []string
}

// cue is a compiled hazard term: its stem sequence and severity.
type cue struct {
	term     string
	stems    []string
	severity float64
}

// Estimator maps hazard vocabulary, negation, entities, actions and sentiment
// onto a risk score in [0, 1]. It is immutable and safe for concurrent use.
type Estimator struct {
	cfg      RiskConfig
	cues     []cue // longest first, then most severe
	actions  map[string]float64
	places   []string
	negators map[string]struct{}
}

// NewEstimator validates cfg and compiles its vocabularies. Any problem is
// ErrInvalidConfiguration.
func NewEstimator(cfg RiskConfig) (*Estimator, error) {
	if errs := cfg.validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
	}

	e := &Estimator{
		cfg:      cfg,
		cues:     compileCues(cfg.Hazards),
		actions:  make(map[string]float64, len(cfg.RiskyActions)),
		negators: make(map[string]struct{}, len(cfg.Negators)),
	}
	for _, verb := range sortedKeys(cfg.RiskyActions) {
		st := nlp.Stem(verb)
		if sev := cfg.RiskyActions[verb]; sev > e.actions[st] {
			e.actions[st] = sev
		}
	}
	for _, n := range cfg.Negators {
		e.negators[strings.ToLower(n)] = struct{}{}
	}
	for _, p := range cfg.HazardousPlaces {
		if w := strings.Join(nlp.Words(p), " "); w != "" {
			e.places = append(e.places, w)
		}
	}
	return e, nil
}

// compileCues stems every hazard term. Terms that share a stem sequence
// ("danger", "dangerous") collapse into one cue carrying the highest severity,
// so inflections of one word never count twice.
func compileCues(hazards map[string]float64) []cue {
	byKey := make(map[string]cue, len(hazards))
	for _, term := range sortedKeys(hazards) {
		stems := nlp.StemAll(term)
		if len(stems) == 0 {
			continue
		}
		key := strings.Join(stems, " ")
		if cur, ok := byKey[key]; ok && cur.severity >= hazards[term] {
			continue
		}
		byKey[key] = cue{term: term, stems: stems, severity: hazards[term]}
	}

	cues := make([]cue, 0, len(byKey))
	for _, c := range byKey {
		cues = append(cues, c)
	}
	sort.Slice(cues, func(a, b int) bool {
		if len(cues[a].stems) != len(cues[b].stems) {
			return len(cues[a].stems) > len(cues[b].stems)
		}
		if cues[a].severity != cues[b].severity {
			return cues[a].severity > cues[b].severity
		}
		return cues[a].term < cues[b].term
	})
	return cues
}

// ─── CORE ─────────────────────────────────────────────────────────────────────

// Estimate returns the risk score of a scenario.
func (e *Estimator) Estimate(text string, entities []Entity, actions []ActionPhrase, sentiment float64) float64 {
	return e.Assess(text, entities, actions, sentiment).Score
}

// Assess returns the risk score together with its component signals.
//
// Affirmed hazard cues set a floor h; context signals fill the remaining
// headroom: risk = h + (1-h) * (We*e + Wa*a + Ws*p). Every term is
// non-negative and noisy-OR is increasing in each severity, so an extra
// affirmed cue can only raise the score as long as sentiment stays put.
// Callers scoring sentiment from the same text pass Scorer.ScoreContext,
// which leaves cue words out, so a cue cannot move p either.
func (e *Estimator) Assess(text string, entities []Entity, actions []ActionPhrase, sentiment float64) RiskAssessment {
	ra := RiskAssessment{Cues: []string{}, Negated: []string{}}

	affirmed, negated := 0.0, 0.0
	for _, m := range e.matchCues(nlp.Words(text)) {
		if m.negated {
			negated = noisyOr(negated, m.severity)
			ra.Negated = append(ra.Negated, m.term)
			continue
		}
		affirmed = noisyOr(affirmed, m.severity)
		ra.Cues = append(ra.Cues, m.term)
	}
	ra.Mitigation = negated
	ra.Hazard = affirmed * (1 - e.cfg.NegationDamping*negated)

	for _, ent := range entities {
		ra.Entity = noisyOr(ra.Entity, e.entityWeight(ent))
	}
	for _, act := range actions {
		ra.Action = noisyOr(ra.Action, e.actions[nlp.Stem(act.Verb)])
	}
	ra.Pressure = e.pressure(sentiment)

	w := e.cfg.Weights
	context := w.Entity*ra.Entity + w.Action*ra.Action + w.Sentiment*ra.Pressure
	ra.Score = round4(clamp01(ra.Hazard + (1-ra.Hazard)*context))
	return ra
}

// ─── SIGNALS ──────────────────────────────────────────────────────────────────

type cueMatch struct {
	at, width int    // word index and length of the match
	term      string // surface words as written
	severity  float64
	negated   bool
}

// matchCues scans words left to right. At each position at most one cue
// matches (longest, then most severe) and a multi-word match consumes its
// words.
func (e *Estimator) matchCues(words []string) []cueMatch {
	stems := make([]string, len(words))
	for i, w := range words {
		if nlp.IsBoundary(w) {
			stems[i] = w
			continue
		}
		stems[i] = nlp.Stem(w)
	}

	var out []cueMatch
	for i := 0; i < len(stems); {
		c, ok := e.cueAt(stems, i)
		if !ok {
			i++
			continue
		}
		out = append(out, cueMatch{
			at:       i,
			width:    len(c.stems),
			term:     strings.Join(words[i:i+len(c.stems)], " "),
			severity: c.severity,
			negated:  negatedAt(words, i, e.cfg.NegationWindow, e.negators),
		})
		i += len(c.stems)
	}
	return out
}

// cueWords marks every word covered by a hazard cue, affirmed or negated.
func (e *Estimator) cueWords(words []string) []bool {
	mask := make([]bool, len(words))
	for _, m := range e.matchCues(words) {
		for k := m.at; k < m.at+m.width; k++ {
			mask[k] = true
		}
	}
	return mask
}

func (e *Estimator) cueAt(stems []string, i int) (cue, bool) {
next:
	for _, c := range e.cues {
		if i+len(c.stems) > len(stems) {
			continue
		}
		for k, s := range c.stems {
			if stems[i+k] != s {
				continue next
			}
		}
		return c, true
	}
	return cue{}, false
}

func (e *Estimator) entityWeight(ent Entity) float64 {
	w := e.cfg.EntityCategories[ent.Category]
	padded := " " + strings.Join(nlp.Words(ent.Text), " ") + " "
	for _, p := range e.places {
		if strings.Contains(padded, " "+p+" ") && e.cfg.HazardousPlaceWeight > w {
			return e.cfg.HazardousPlaceWeight
		}
	}
	return w
}

// pressure is 0 at or above the threshold and rises linearly to 1 at -1.
func (e *Estimator) pressure(sentiment float64) float64 {
	thr := e.cfg.NegativeSentimentThreshold
	if sentiment >= thr {
		return 0
	}
	return clamp01((thr - sentiment) / (thr + 1))
}

// ─── HELPERS ──────────────────────────────────────────────────────────────────

// noisyOr combines two independent probabilities: 1 - (1-a)(1-b).
func noisyOr(a, b float64) float64 {
	return 1 - (1-a)*(1-b)
}

// clamp01 constrains v to [0, 1].
func clamp01(v float64) float64 {
	return clampUnit(v, 0)
}
