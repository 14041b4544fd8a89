// Package nlptest provides a small, deterministic rule-based nlp.Model for
// tests. It knows a fixed dictionary of tags and entities and is good enough to
// drive the analysis pipeline without loading a statistical model.
package nlptest

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/nyashahama/overthinker-backend/internal/nlp"
)

var tokenRe = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)?|\$?\d+(?:[.,]\d+)*%?|[^\sA-Za-z\d]`)

// Model is a dictionary-driven nlp.Model. The zero value is not usable; call New.
type Model struct {
	// Tags maps lower-cased words to Penn Treebank tags. Words not found here
	// are tagged by suffix heuristics.
	Tags map[string]string

	// Entities maps exact surface text to an entity label (PERSON, GPE, ORG ...).
	Entities map[string]string

	// Unavailable makes every Annotate call fail with nlp.ErrModelUnavailable.
	Unavailable bool
}

// New returns a Model preloaded with the default dictionaries.
func New() *Model {
	tags := make(map[string]string, len(defaultTags))
	for k, v := range defaultTags {
		tags[k] = v
	}
	ents := make(map[string]string, len(defaultEntities))
	for k, v := range defaultEntities {
		ents[k] = v
	}
	return &Model{Tags: tags, Entities: ents}
}

// Name implements nlp.Model.
func (m *Model) Name() string { return "nlptest" }

// Annotate implements nlp.Model.
func (m *Model) Annotate(text string) (nlp.Document, error) {
	if m == nil || m.Unavailable {
		return nlp.Document{}, nlp.ErrModelUnavailable
	}

	doc := nlp.Document{Tokens: []nlp.Token{}, Entities: []nlp.Span{}}
	for i, raw := range Tokenize(text) {
		doc.Tokens = append(doc.Tokens, nlp.Token{Text: raw, Tag: m.tag(raw, i == 0)})
	}

	type hit struct {
		at   int
		span nlp.Span
	}
	var hits []hit
	for surface, label := range m.Entities {
		if at := strings.Index(text, surface); at >= 0 {
			hits = append(hits, hit{at: at, span: nlp.Span{Text: surface, Label: label}})
		}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].at != hits[b].at {
			return hits[a].at < hits[b].at
		}
		return hits[a].span.Text < hits[b].span.Text
	})
	for _, h := range hits {
		doc.Entities = append(doc.Entities, h.span)
	}
	return doc, nil
}

// Tokenize splits text into words, numbers and punctuation, separating the
// "n't" clitic the way Treebank tokenizers do.
func Tokenize(text string) []string {
	var out []string
	for _, tok := range tokenRe.FindAllString(text, -1) {
		lower := strings.ToLower(tok)
		if len(tok) > 3 && strings.HasSuffix(lower, "n't") {
			out = append(out, tok[:len(tok)-3], tok[len(tok)-3:])
			continue
		}
		out = append(out, tok)
	}
	return out
}

func (m *Model) tag(tok string, first bool) string {
	lower := strings.ToLower(tok)
	if t, ok := m.Tags[lower]; ok {
		return t
	}

	r := []rune(tok)
	switch {
	case !unicode.IsLetter(r[0]) && !unicode.IsDigit(r[0]) && r[0] != '$':
		return "."
	case unicode.IsDigit(r[0]) || r[0] == '$':
		return "CD"
	case unicode.IsUpper(r[0]) && !first:
		return "NNP"
	case strings.HasSuffix(lower, "ing"):
		return "VBG"
	case strings.HasSuffix(lower, "ed"):
		return "VBD"
	case strings.HasSuffix(lower, "ly"):
		return "RB"
	case strings.HasSuffix(lower, "ous") || strings.HasSuffix(lower, "ful"):
		return "JJ"
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss"):
		return "NNS"
	default:
		return "NN"
	}
}

var defaultEntities = map[string]string{
	"Alice":     "PERSON",
	"Bob":       "PERSON",
	"Paris":     "GPE",
	"London":    "GPE",
	"Mumbai":    "GPE",
	"Delhi":     "GPE",
	"Bangalore": "GPE",
	"Everest":   "GPE",
	"Google":    "ORG",
	"Uber":      "ORG",
	"Swiggy":    "ORG",
	"Zomato":    "ORG",
}

var defaultTags = map[string]string{
	// determiners and possessives
	"a": "DT", "an": "DT", "the": "DT", "this": "DT", "that": "DT", "some": "DT", "every": "DT",
	"my": "PRP$", "your": "PRP$", "his": "PRP$", "her": "PRP$", "our": "PRP$", "their": "PRP$",
	// pronouns
	"i": "PRP", "you": "PRP", "he": "PRP", "she": "PRP", "it": "PRP", "we": "PRP",
	"they": "PRP", "me": "PRP", "him": "PRP", "them": "PRP", "us": "PRP",
	// modals
	"could": "MD", "should": "MD", "would": "MD", "can": "MD", "ca": "MD", "will": "MD",
	"may": "MD", "might": "MD", "must": "MD", "shall": "MD",
	// auxiliaries
	"be": "VB", "is": "VBZ", "am": "VBP", "are": "VBP", "was": "VBD", "were": "VBD",
	"been": "VBN", "being": "VBG", "do": "VBP", "does": "VBZ", "did": "VBD",
	"have": "VBP", "has": "VBZ", "had": "VBD",
	// verbs
	"eat": "VB", "buy": "VB", "take": "VB", "go": "VB", "drive": "VB", "quit": "VB",
	"invest": "VB", "climb": "VB", "swim": "VB", "walk": "VB", "cook": "VB", "order": "VB",
	"join": "VB", "see": "VB", "ride": "VB", "fly": "VB", "gamble": "VB", "borrow": "VB",
	"sign": "VB", "accept": "VB", "leave": "VB", "switch": "VB", "travel": "VB", "get": "VB",
	"make": "VB", "run": "VB", "sell": "VB", "repair": "VB", "kill": "VB", "kills": "VBZ",
	"ask": "VB", "propose": "VB", "commute": "VB", "need": "VBP",
	// adjectives
	"wild": "JJ", "great": "JJ", "dangerous": "JJ", "new": "JJ", "old": "JJ",
	"expensive": "JJ", "cheap": "JJ", "good": "JJ", "bad": "JJ", "safe": "JJ",
	"risky": "JJ", "toxic": "JJ", "happy": "JJ", "sad": "JJ", "terrible": "JJ",
	"best": "JJS", "quick": "JJ", "fast": "JJ", "nice": "JJ", "awful": "JJ", "lovely": "JJ",
	"poisonous": "JJ", "deadly": "JJ", "stable": "JJ", "remote": "JJ", "whole": "JJ",
	// adverbs and particles
	"not": "RB", "never": "RB", "very": "RB", "really": "RB", "extremely": "RB", "n't": "RB",
	"too": "RB", "so": "RB", "now": "RB",
	// nouns that suffix rules would mis-tag
	"today": "NN", "tonight": "NN", "tomorrow": "NN", "lunch": "NN", "bus": "NN",
	"savings": "NNS", "news": "NN", "business": "NN",
	// function words
	"to": "TO", "or": "CC", "and": "CC", "but": "CC", "in": "IN", "on": "IN", "at": "IN",
	"for": "IN", "from": "IN", "of": "IN", "with": "IN", "without": "IN", "by": "IN",
	"if": "IN", "than": "IN", "vs": "CC",
	"what": "WP", "how": "WRB", "why": "WRB", "when": "WRB",
}
