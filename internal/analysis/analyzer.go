package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/nyashahama/overthinker-backend/internal/intent"
	"github.com/nyashahama/overthinker-backend/internal/nlp"
)

// Analyzer is the scenario analysis facade. Build one per process with New
// after the model has loaded, then call Parse from any number of goroutines.
type Analyzer struct {
	model      nlp.Model
	extractor  *Extractor
	scorer     *Scorer
	estimator  *Estimator
	classifier *intent.Classifier
	synth      *Synthesizer
	cache      *lru.Cache // nil when disabled
	log        *slog.Logger
}

type options struct {
	cacheSize int
	logger    *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithCacheSize memoises up to n results keyed by exact text. 0 disables the
// cache, which is the default.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithLogger sets the logger used for per-call debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New validates cfg and wires every stage around model. A nil model is
// ErrModelUnavailable; a bad cfg is ErrInvalidConfiguration.
func New(model nlp.Model, cfg Config, opts ...Option) (*Analyzer, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	if model == nil {
		return nil, fmt.Errorf("analysis.New: %w", ErrModelUnavailable)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if o.cacheSize < 0 {
		return nil, fmt.Errorf("%w: cache size %d must be >= 0", ErrInvalidConfiguration, o.cacheSize)
	}

	scorer, err := NewScorer()
	if err != nil {
		return nil, err
	}
	estimator, err := NewEstimator(cfg.Risk)
	if err != nil {
		return nil, err
	}
	synth, err := NewSynthesizer(cfg.Perspectives)
	if err != nil {
		return nil, err
	}
	classifier, err := intent.NewClassifier()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	a := &Analyzer{
		model:      model,
		extractor:  NewExtractor(model),
		scorer:     scorer,
		estimator:  estimator,
		classifier: classifier,
		synth:      synth,
		log:        o.logger,
	}
	if o.cacheSize > 0 {
		if a.cache, err = lru.New(o.cacheSize); err != nil {
			return nil, fmt.Errorf("analysis.New: cache: %w", err)
		}
	}
	return a, nil
}

// ModelName returns the name of the injected model.
func (a *Analyzer) ModelName() string { return a.model.Name() }

// Intents lists every intent Parse can report.
func (a *Analyzer) Intents() []intent.Intent { return a.classifier.Intents() }

// Parse runs the pipeline over text: extraction, sentiment, risk, intent and
// constraints, then perspectives. The first failing stage aborts the call and
// its error is returned wrapped; there is no partial result.
func (a *Analyzer) Parse(text string) (Analysis, error) {
	if a.cache != nil {
		if v, ok := a.cache.Get(text); ok {
			return v.(Analysis).clone(), nil
		}
	}

	start := time.Now()

	entities, actions, doc, err := a.extractor.extract(text)
	if err != nil {
		return Analysis{}, fmt.Errorf("parse: %w", err)
	}

	sentiment := a.scorer.Score(text)
	risk := a.estimator.Assess(text, entities, actions, a.scorer.ScoreContext(text, a.estimator))

	in, confidence := a.classifier.Classify(features(text, doc, entities))
	constraints := intent.ExtractConstraints(text)

	res := Analysis{
		Text:        text,
		Entities:    entities,
		Actions:     actions,
		Sentiment:   sentiment,
		RiskScore:   risk.Score,
		Intent:      in,
		Confidence:  round4(confidence),
		Constraints: constraints,
	}
	res.Perspectives = a.synth.Synthesize(Signals{
		Text:        text,
		Entities:    entities,
		Actions:     actions,
		Sentiment:   sentiment,
		Risk:        risk.Score,
		Hazards:     risk.Cues,
		Intent:      in,
		Constraints: constraints,
	})

	a.log.Debug("scenario analysed",
		"intent", in,
		"risk", res.RiskScore,
		"sentiment", res.Sentiment,
		"entities", len(entities),
		"duration", time.Since(start),
	)

	if a.cache != nil {
		a.cache.Add(text, res.clone())
	}
	return res, nil
}

// features builds classifier input from the model annotation.
func features(text string, doc nlp.Document, entities []Entity) intent.Features {
	f := intent.Features{Text: text}
	for _, t := range doc.Tokens {
		f.Tokens = append(f.Tokens, t.Text)
		switch {
		case nlp.IsVerb(t.Tag):
			f.Verbs = append(f.Verbs, strings.ToLower(t.Text))
		case nlp.IsNoun(t.Tag):
			f.Nouns = append(f.Nouns, strings.ToLower(t.Text))
		}
	}
	for _, e := range entities {
		f.Entities = append(f.Entities, intent.EntityRef{Text: e.Text, Location: e.Category == CategoryLocation})
	}
	return f
}
