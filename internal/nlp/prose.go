package nlp

import (
	"fmt"
	"os"

	"github.com/jdkato/prose/v2"
)

// DefaultModelName is the name of the English model embedded in prose.
const DefaultModelName = "en-prose"

// warmupText is annotated once at load time so a broken embedded model fails
// at startup rather than on the first request.
const warmupText = "Alice drove to Paris to buy a new car."

// ProseModel is the production Model backed by github.com/jdkato/prose/v2.
// It is immutable after LoadProse returns.
type ProseModel struct {
	name  string
	model *prose.Model // nil means the embedded default model
}

// LoadProse loads the named model. An empty path selects the embedded English
// model, which only answers to DefaultModelName. A non-empty path must point at
// a directory previously written by prose's Model.Write.
//
// Every failure wraps ErrModelUnavailable.
func LoadProse(name, path string) (m *ProseModel, err error) {
	if name == "" {
		name = DefaultModelName
	}

	// prose panics on unreadable model data instead of returning an error.
	defer func() {
		if p := recover(); p != nil {
			m = nil
			err = fmt.Errorf("%w: load %q: %v", ErrModelUnavailable, name, p)
		}
	}()

	pm := &ProseModel{name: name}

	if path != "" {
		info, statErr := os.Stat(path)
		if statErr != nil {
			return nil, fmt.Errorf("%w: load %q: %v", ErrModelUnavailable, name, statErr)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: load %q: %s is not a directory", ErrModelUnavailable, name, path)
		}
		pm.model = prose.ModelFromDisk(path)
	} else if name != DefaultModelName {
		return nil, fmt.Errorf("%w: unknown model %q and no MODEL_PATH given", ErrModelUnavailable, name)
	}

	if _, err := pm.Annotate(warmupText); err != nil {
		return nil, err
	}
	return pm, nil
}

// Name returns the model name given to LoadProse.
func (m *ProseModel) Name() string {
	if m == nil {
		return ""
	}
	return m.name
}

// Annotate tokenizes, tags and runs entity extraction over text.
func (m *ProseModel) Annotate(text string) (Document, error) {
	if m == nil {
		return Document{}, ErrModelUnavailable
	}

	opts := []prose.DocOpt{prose.WithSegmentation(false)}
	if m.model != nil {
		opts = append(opts, prose.UsingModel(m.model))
	}

	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return Document{}, fmt.Errorf("nlp: annotate: %w", err)
	}

	toks := doc.Tokens()
	out := Document{
		Tokens:   make([]Token, 0, len(toks)),
		Entities: make([]Span, 0),
	}
	for _, t := range toks {
		out.Tokens = append(out.Tokens, Token{Text: t.Text, Tag: t.Tag})
	}
	for _, e := range doc.Entities() {
		out.Entities = append(out.Entities, Span{Text: e.Text, Label: e.Label})
	}
	return out, nil
}
