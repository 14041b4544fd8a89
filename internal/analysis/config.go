package analysis

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultConfigYAML []byte

// weightSumTolerance absorbs float noise in hand-written YAML weights.
const weightSumTolerance = 1e-9

// Config is the tunable part of the pipeline. It is loaded once at startup and
// validated by New; a bad Config is ErrInvalidConfiguration, never a per-call
// failure.
//
// YAML shape: see defaults.yaml.
type Config struct {
	Risk         RiskConfig `yaml:"risk"`
	Perspectives []Label    `yaml:"perspectives"`
}

// RiskWeights are the context-signal weights of the risk estimator. The hazard
// signal is not weighted: it sets the floor that context signals build on.
type RiskWeights struct {
	Entity    float64 `yaml:"entity"`
	Action    float64 `yaml:"action"`
	Sentiment float64 `yaml:"sentiment"`
}

// RiskConfig parameterises the risk estimator.
type RiskConfig struct {
	Weights                    RiskWeights          `yaml:"weights"`
	Negators                   []string             `yaml:"negators"`
	NegationWindow             int                  `yaml:"negation_window"`
	NegationDamping            float64              `yaml:"negation_damping"`
	NegativeSentimentThreshold float64              `yaml:"negative_sentiment_threshold"`
	Hazards                    map[string]float64   `yaml:"hazards"`
	RiskyActions               map[string]float64   `yaml:"risky_actions"`
	EntityCategories           map[Category]float64 `yaml:"entity_categories"`
	HazardousPlaces            []string             `yaml:"hazardous_places"`
	HazardousPlaceWeight       float64              `yaml:"hazardous_place_weight"`
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() Config {
	var cfg Config
	// The embedded document is covered by tests; a decode failure here is a
	// build defect.
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		panic(fmt.Sprintf("analysis: embedded defaults.yaml: %v", err))
	}
	return cfg
}

// LoadConfig returns DefaultConfig with the YAML file at path decoded on top of
// it. An empty path returns the defaults. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfiguration, path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every weight, severity and label. It reports all problems at
// once, joined, wrapped in ErrInvalidConfiguration.
func (c Config) Validate() error {
	errs := c.Risk.validate()
	errs = append(errs, validateLabels(c.Perspectives)...)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
}

func (r RiskConfig) validate() []error {
	var errs []error

	for _, w := range []struct {
		name string
		v    float64
	}{
		{"entity", r.Weights.Entity},
		{"action", r.Weights.Action},
		{"sentiment", r.Weights.Sentiment},
	} {
		if !inRange(w.v, 0, 1) {
			errs = append(errs, fmt.Errorf("risk.weights.%s=%v out of range [0,1]", w.name, w.v))
		}
	}
	sum := r.Weights.Entity + r.Weights.Action + r.Weights.Sentiment
	if sum <= 0 || sum > 1+weightSumTolerance {
		errs = append(errs, fmt.Errorf("risk.weights: entity+action+sentiment=%v must be in (0,1]", sum))
	}

	if len(r.Negators) == 0 {
		errs = append(errs, errors.New("risk.negators: list must not be empty"))
	}
	if r.NegationWindow < 1 {
		errs = append(errs, fmt.Errorf("risk.negation_window=%d must be >= 1", r.NegationWindow))
	}
	if !inRange(r.NegationDamping, 0, 1) {
		errs = append(errs, fmt.Errorf("risk.negation_damping=%v out of range [0,1]", r.NegationDamping))
	}
	if r.NegativeSentimentThreshold <= -1 || r.NegativeSentimentThreshold > 0 || math.IsNaN(r.NegativeSentimentThreshold) {
		errs = append(errs, fmt.Errorf("risk.negative_sentiment_threshold=%v must be in (-1,0]", r.NegativeSentimentThreshold))
	}

	if len(r.Hazards) == 0 {
		errs = append(errs, errors.New("risk.hazards: vocabulary must not be empty"))
	}
	errs = append(errs, validateSeverities("risk.hazards", r.Hazards)...)
	errs = append(errs, validateSeverities("risk.risky_actions", r.RiskyActions)...)

	for _, cat := range sortedKeys(r.EntityCategories) {
		switch cat {
		case CategoryPerson, CategoryOrganization, CategoryLocation, CategoryOther:
		default:
			errs = append(errs, fmt.Errorf("risk.entity_categories: unknown category %q", cat))
		}
		if w := r.EntityCategories[cat]; !inRange(w, 0, 1) {
			errs = append(errs, fmt.Errorf("risk.entity_categories[%s]=%v out of range [0,1]", cat, w))
		}
	}
	if !inRange(r.HazardousPlaceWeight, 0, 1) {
		errs = append(errs, fmt.Errorf("risk.hazardous_place_weight=%v out of range [0,1]", r.HazardousPlaceWeight))
	}

	return errs
}

func validateSeverities(field string, m map[string]float64) []error {
	var errs []error
	for _, k := range sortedKeys(m) {
		if k == "" {
			errs = append(errs, fmt.Errorf("%s: empty term", field))
			continue
		}
		if s := m[k]; s <= 0 || s > 1 || math.IsNaN(s) {
			errs = append(errs, fmt.Errorf("%s[%q]=%v out of range (0,1]", field, k, s))
		}
	}
	return errs
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	return keys
}
