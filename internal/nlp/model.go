// Package nlp defines the language-model boundary used by the analysis
// pipeline. The pipeline never talks to a concrete tagger directly: it receives
// a Model at construction time, which keeps model loading an explicit startup
// step and lets tests substitute the rule-based model in nlptest.
package nlp

import (
	"errors"
	"strings"
)

// ErrModelUnavailable is returned when the language model has not been loaded
// or could not be loaded. It is fatal for the call that sees it; callers must
// not retry.
var ErrModelUnavailable = errors.New("nlp: language model unavailable")

// Token is a single word or punctuation mark with its Penn Treebank tag.
type Token struct {
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

// Span is a named-entity span as labelled by the model. Label uses the model's
// own vocabulary (PERSON, GPE, ORG, ...); the analysis package maps it onto
// its fixed category set.
type Span struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Document is the annotation of one piece of text.
type Document struct {
	Tokens   []Token
	Entities []Span
}

// Model tokenizes, tags and extracts entities from text.
//
// Implementations must be safe for concurrent use once loaded; Annotate must
// not mutate any state shared between calls.
type Model interface {
	// Name identifies the loaded model, e.g. "en-prose".
	Name() string

	// Annotate returns the document annotation for text. It returns an error
	// wrapping ErrModelUnavailable when the model is not loaded.
	Annotate(text string) (Document, error)
}

// ─── TAG HELPERS ─────────────────────────────────────────────────────────────

// IsVerb reports whether tag is a verb tag (VB, VBD, VBG, VBN, VBP, VBZ).
func IsVerb(tag string) bool { return strings.HasPrefix(tag, "VB") }

// IsNoun reports whether tag is a common or proper noun tag.
func IsNoun(tag string) bool { return strings.HasPrefix(tag, "NN") }

// IsAdjective reports whether tag is an adjective tag (JJ, JJR, JJS).
func IsAdjective(tag string) bool { return strings.HasPrefix(tag, "JJ") }

// IsPronoun reports whether tag is a personal pronoun (PRP, not PRP$).
func IsPronoun(tag string) bool { return tag == "PRP" }

// IsModal reports whether tag marks a modal verb (could, should, must ...).
func IsModal(tag string) bool { return tag == "MD" }
