// Package intent classifies a scenario into a decision category and pulls out
// the constraints (urgency, budget, quality, convenience) it expresses.
//
// It does not import the analysis package: callers hand it plain Features, so
// the classifier can be tested on hand-built inputs.
package intent

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nyashahama/overthinker-backend/internal/nlp"
)

// ─── CONSTANTS ────────────────────────────────────────────────────────────────

// Signal weights.
const (
	verbWeight     = 4
	nounWeight     = 3
	phraseWeight   = 6
	entityWeight   = 3
	modifierWeight = 2
	missedWeight   = 2

	// fullScore is the raw score treated as full confidence.
	fullScore = 12.0
	// gapScale converts the lead over the runner-up into extra confidence.
	gapScale = 20.0
	// strongScore boosts confidence by strongBoost once reached.
	strongScore = 15
	strongBoost = 1.2

	fallbackConfidence = 0.3
)

//go:embed patterns.yaml
var defaultPatterns []byte

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Intent is a decision category.
type Intent string

const (
	Transportation Intent = "transportation"
	Purchase       Intent = "purchase"
	Food           Intent = "food"
	Career         Intent = "career"
	Health         Intent = "health"
	Relationship   Intent = "relationship"
	General        Intent = "general"
)

// EntityRef is the slice of an extracted entity the classifier needs.
type EntityRef struct {
	Text     string
	Location bool
}

// Features is the classifier input, built by the caller from the text and the
// model annotation.
type Features struct {
	Text     string
	Tokens   []string // every surface token
	Verbs    []string // verb tokens
	Nouns    []string // noun tokens
	Entities []EntityRef
}

type patternFile struct {
	Intents []patternSpec `yaml:"intents"`
}

type patternSpec struct {
	Name             Intent   `yaml:"name"`
	LocationEntities bool     `yaml:"location_entities"`
	Verbs            []string `yaml:"verbs"`
	Nouns            []string `yaml:"nouns"`
	Phrases          []string `yaml:"phrases"`
	Modifiers        []string `yaml:"modifiers"`
}

// pattern is a compiled patternSpec.
type pattern struct {
	name       Intent
	locations  bool
	verbStems  map[string]struct{}
	nounStems  map[string]struct{}
	nounWords  []string
	phrases    []string // longest first
	modifiers  []string
	entityText map[string]struct{}
}

// Classifier scores text against every intent pattern. It is immutable and
// safe for concurrent use.
type Classifier struct {
	patterns []pattern
}

// NewClassifier returns a Classifier built from the embedded patterns.
func NewClassifier() (*Classifier, error) {
	return NewClassifierFromYAML(defaultPatterns)
}

// ErrInvalidPatterns wraps every problem found in a patterns document.
var ErrInvalidPatterns = errors.New("intent: invalid patterns")

// NewClassifierFromYAML builds a Classifier from a patterns document. All
// problems are reported at once, joined, wrapped in ErrInvalidPatterns.
func NewClassifierFromYAML(data []byte) (*Classifier, error) {
	var pf patternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrInvalidPatterns, err)
	}

	var errs []error
	if len(pf.Intents) == 0 {
		errs = append(errs, errors.New("at least one intent must be defined"))
	}
	seen := make(map[Intent]struct{}, len(pf.Intents))
	c := &Classifier{patterns: make([]pattern, 0, len(pf.Intents))}
	for i, spec := range pf.Intents {
		switch _, dup := seen[spec.Name]; {
		case spec.Name == "":
			errs = append(errs, fmt.Errorf("intents[%d]: no name", i))
			continue
		case spec.Name == General:
			errs = append(errs, fmt.Errorf("intents[%d]: %q is the fallback and cannot have patterns", i, General))
			continue
		case dup:
			errs = append(errs, fmt.Errorf("intents[%d]: duplicate intent %q", i, spec.Name))
			continue
		}
		seen[spec.Name] = struct{}{}
		c.patterns = append(c.patterns, compile(spec))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatterns, errors.Join(errs...))
	}
	return c, nil
}

func compile(spec patternSpec) pattern {
	p := pattern{
		name:       spec.Name,
		locations:  spec.LocationEntities,
		verbStems:  stemSet(spec.Verbs),
		nounStems:  stemSet(spec.Nouns),
		entityText: make(map[string]struct{}, len(spec.Nouns)),
	}
	for _, n := range spec.Nouns {
		n = strings.ToLower(n)
		p.nounWords = append(p.nounWords, n)
		p.entityText[n] = struct{}{}
	}
	p.phrases = append(p.phrases, lowerAll(spec.Phrases)...)
	sort.SliceStable(p.phrases, func(a, b int) bool { return len(p.phrases[a]) > len(p.phrases[b]) })
	p.modifiers = lowerAll(spec.Modifiers)
	return p
}

// Intents lists every intent the classifier can return, General last.
func (c *Classifier) Intents() []Intent {
	out := make([]Intent, 0, len(c.patterns)+1)
	for _, p := range c.patterns {
		out = append(out, p.name)
	}
	return append(out, General)
}

// Classify returns the best matching intent and a confidence in [0, 1].
// Text that matches nothing is General with confidence 0.3.
func (c *Classifier) Classify(f Features) (Intent, float64) {
	padded := pad(f.Text)
	lowerText := strings.ToLower(f.Text)

	verbStems := make([]string, len(f.Verbs))
	for i, v := range f.Verbs {
		verbStems[i] = nlp.Stem(v)
	}
	nounStems := make([]string, len(f.Nouns))
	for i, n := range f.Nouns {
		nounStems[i] = nlp.Stem(n)
	}
	tokenSet := make(map[string]struct{}, len(f.Tokens))
	for _, t := range f.Tokens {
		tokenSet[strings.ToLower(t)] = struct{}{}
	}

	scores := make([]int, len(c.patterns))
	for i, p := range c.patterns {
		score := 0

		for _, v := range verbStems {
			if _, ok := p.verbStems[v]; ok {
				score += verbWeight
			}
		}
		for _, n := range nounStems {
			if _, ok := p.nounStems[n]; ok {
				score += nounWeight
			}
		}
		for _, ph := range p.phrases {
			if strings.Contains(padded, " "+ph+" ") {
				score += phraseWeight
				break
			}
		}
		for _, e := range f.Entities {
			if _, ok := p.entityText[strings.ToLower(e.Text)]; ok {
				score += entityWeight
			}
			if p.locations && e.Location {
				score += entityWeight
			}
		}
		for _, m := range p.modifiers {
			if strings.Contains(padded, " "+m+" ") {
				score += modifierWeight
			}
		}
		for _, n := range p.nounWords {
			if _, tok := tokenSet[n]; !tok && strings.Contains(lowerText, n) {
				score += missedWeight
			}
		}

		scores[i] = score
	}

	best := -1
	for i, s := range scores {
		if s > 0 && (best < 0 || s > scores[best]) {
			best = i
		}
	}
	if best < 0 {
		return General, fallbackConfidence
	}

	sorted := append([]int(nil), scores...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	maxScore := scores[best]
	second := 0
	if len(sorted) > 1 {
		second = sorted[1]
	}

	var confidence float64
	if second == 0 {
		confidence = min(float64(maxScore)/fullScore, 1)
	} else {
		confidence = min(float64(maxScore)/fullScore+float64(maxScore-second)/gapScale, 1)
	}
	if maxScore >= strongScore {
		confidence = min(confidence*strongBoost, 1)
	}
	return c.patterns[best].name, confidence
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func stemSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[nlp.Stem(w)] = struct{}{}
	}
	return set
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// pad lower-cases text, keeps only words and joins them with single spaces,
// surrounded by one space on each side so " phrase " matches whole words.
func pad(text string) string {
	var words []string
	for _, w := range nlp.Words(text) {
		if !nlp.IsBoundary(w) || w == "but" {
			words = append(words, w)
		}
	}
	return " " + strings.Join(words, " ") + " "
}
