package analysis

import (
	_ "embed"
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/nyashahama/overthinker-backend/internal/nlp"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

type lexiconFile struct {
	Polarity       map[string]float64 `yaml:"polarity"`
	Intensifiers   map[string]float64 `yaml:"intensifiers"`
	Negators       []string           `yaml:"negators"`
	NegationFactor float64            `yaml:"negation_factor"`
	NegationWindow int                `yaml:"negation_window"`
}

// Scorer computes lexical sentiment polarity in [-1, 1]. It averages the
// polarity of every lexicon word in the text, scaling a word by the
// intensifier right before it and flipping it by the negation factor when a
// negator appears shortly before it in the same clause.
//
// Scorer is immutable and safe for concurrent use.
type Scorer struct {
	polarity     map[string]float64
	stemPolarity map[string]float64
	intensifiers map[string]float64
	negators     map[string]struct{}
	factor       float64
	window       int
}

// NewScorer returns a Scorer over the embedded lexicon.
func NewScorer() (*Scorer, error) {
	return NewScorerFromYAML(defaultLexiconYAML)
}

// NewScorerFromYAML builds a Scorer from a lexicon document shaped like
// lexicon.yaml. Malformed lexicons are ErrInvalidConfiguration.
func NewScorerFromYAML(data []byte) (*Scorer, error) {
	var lf lexiconFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("%w: parse lexicon: %v", ErrInvalidConfiguration, err)
	}

	var errs []error
	if len(lf.Polarity) == 0 {
		errs = append(errs, errors.New("lexicon: polarity must not be empty"))
	}
	for _, w := range sortedKeys(lf.Polarity) {
		if !inRange(lf.Polarity[w], -1, 1) {
			errs = append(errs, fmt.Errorf("lexicon: polarity[%q]=%v out of range [-1,1]", w, lf.Polarity[w]))
		}
	}
	for _, w := range sortedKeys(lf.Intensifiers) {
		if m := lf.Intensifiers[w]; m <= 0 || math.IsNaN(m) {
			errs = append(errs, fmt.Errorf("lexicon: intensifiers[%q]=%v must be > 0", w, m))
		}
	}
	if lf.NegationFactor < -1 || lf.NegationFactor >= 0 || math.IsNaN(lf.NegationFactor) {
		errs = append(errs, fmt.Errorf("lexicon: negation_factor=%v must be in [-1,0)", lf.NegationFactor))
	}
	if lf.NegationWindow < 1 {
		errs = append(errs, fmt.Errorf("lexicon: negation_window=%d must be >= 1", lf.NegationWindow))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
	}

	s := &Scorer{
		polarity:     lf.Polarity,
		stemPolarity: make(map[string]float64, len(lf.Polarity)),
		intensifiers: lf.Intensifiers,
		negators:     make(map[string]struct{}, len(lf.Negators)),
		factor:       lf.NegationFactor,
		window:       lf.NegationWindow,
	}
	if s.intensifiers == nil {
		s.intensifiers = map[string]float64{}
	}
	for _, n := range lf.Negators {
		s.negators[n] = struct{}{}
	}

	// Several words can share a stem; the strongest polarity wins so the
	// result does not depend on map order.
	for _, w := range sortedKeys(lf.Polarity) {
		st := nlp.Stem(w)
		p := lf.Polarity[w]
		if cur, ok := s.stemPolarity[st]; !ok || math.Abs(p) > math.Abs(cur) {
			s.stemPolarity[st] = p
		}
	}
	return s, nil
}

// Score returns the polarity of text. Text without lexicon words is 0.
func (s *Scorer) Score(text string) float64 {
	return s.scoreWords(nlp.Words(text), nil)
}

// ScoreContext returns the polarity of text with the words of est's hazard
// cues left unscored. This is the sentiment risk pressure is computed from:
// a hazard term's own polarity must never dilute the pressure of the text
// around it.
func (s *Scorer) ScoreContext(text string, est *Estimator) float64 {
	words := nlp.Words(text)
	return s.scoreWords(words, est.cueWords(words))
}

// scoreWords averages the polarity of words. skip, when non-nil, marks words
// that keep their place for negation windows but are not scored.
func (s *Scorer) scoreWords(words []string, skip []bool) float64 {
	sum, n := 0.0, 0
	for i, w := range words {
		if skip != nil && skip[i] {
			continue
		}
		if _, ok := s.intensifiers[w]; ok {
			continue
		}
		if _, ok := s.negators[w]; ok {
			continue
		}
		p, ok := s.lookup(w)
		if !ok {
			continue
		}

		if i > 0 {
			if m, ok := s.intensifiers[words[i-1]]; ok {
				p *= m
			}
		}
		if negatedAt(words, i, s.window, s.negators) {
			p *= s.factor
		}

		sum += clampUnit(p, -1)
		n++
	}

	if n == 0 {
		return 0
	}
	return round4(clampUnit(sum/float64(n), -1))
}

func (s *Scorer) lookup(w string) (float64, bool) {
	if p, ok := s.polarity[w]; ok {
		return p, true
	}
	p, ok := s.stemPolarity[nlp.Stem(w)]
	return p, ok
}

// negatedAt reports whether a negator appears within window words before
// words[i] without a clause boundary in between.
func negatedAt(words []string, i, window int, negators map[string]struct{}) bool {
	for j := i - 1; j >= 0 && j >= i-window; j-- {
		if nlp.IsBoundary(words[j]) {
			return false
		}
		if _, ok := negators[words[j]]; ok {
			return true
		}
	}
	return false
}

// clampUnit constrains v to [lo, 1].
func clampUnit(v, lo float64) float64 {
	if v < lo {
		return lo
	}
	if v > 1 {
		return 1
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
