package analysis

import (
	"fmt"
	"strings"

	"github.com/nyashahama/overthinker-backend/internal/nlp"
)

// auxiliaries never head an action phrase on their own.
var auxiliaries = map[string]struct{}{
	"be": {}, "is": {}, "am": {}, "are": {}, "was": {}, "were": {}, "been": {}, "being": {},
	"'s": {}, "'re": {}, "'m": {},
	"do": {}, "does": {}, "did": {},
}

// haveForms are auxiliaries only when a verb follows ("have eaten").
var haveForms = map[string]struct{}{"have": {}, "has": {}, "had": {}, "having": {}}

// Extractor tags entities and action phrases using the injected model.
type Extractor struct {
	model nlp.Model
}

// NewExtractor returns an Extractor over model. A nil model is accepted here
// and reported as ErrModelUnavailable on first use, so that the facade owns the
// single startup check.
func NewExtractor(model nlp.Model) *Extractor {
	return &Extractor{model: model}
}

// Extract returns the entities and action phrases of text. Blank text yields
// empty sequences without consulting the model.
func (x *Extractor) Extract(text string) ([]Entity, []ActionPhrase, error) {
	ents, acts, _, err := x.extract(text)
	return ents, acts, err
}

// extract also returns the raw annotation so the facade can feed the intent
// classifier without annotating twice.
func (x *Extractor) extract(text string) ([]Entity, []ActionPhrase, nlp.Document, error) {
	if strings.TrimSpace(text) == "" {
		return []Entity{}, []ActionPhrase{}, nlp.Document{}, nil
	}
	if x.model == nil {
		return nil, nil, nlp.Document{}, fmt.Errorf("extract: %w", ErrModelUnavailable)
	}

	doc, err := x.model.Annotate(text)
	if err != nil {
		return nil, nil, nlp.Document{}, fmt.Errorf("extract: %w", err)
	}

	return entitiesFrom(text, doc.Entities), actionsFrom(doc.Tokens), doc, nil
}

// categorize maps model entity labels onto Category.
func categorize(label string) Category {
	switch strings.ToUpper(label) {
	case "PERSON", "PER":
		return CategoryPerson
	case "ORG", "ORGANIZATION", "NORP":
		return CategoryOrganization
	case "GPE", "LOC", "LOCATION", "FAC":
		return CategoryLocation
	default:
		return CategoryOther
	}
}

func entitiesFrom(text string, spans []nlp.Span) []Entity {
	out := make([]Entity, 0, len(spans))
	seen := make(map[string]struct{}, len(spans))
	cursor := 0

	for _, s := range spans {
		surface := strings.TrimSpace(s.Text)
		if surface == "" {
			continue
		}
		cat := categorize(s.Label)
		key := string(cat) + "\x00" + surface
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		start, end := -1, -1
		if at := strings.Index(text[cursor:], surface); at >= 0 {
			start = cursor + at
			end = start + len(surface)
			cursor = end
		} else if at := strings.Index(text, surface); at >= 0 {
			start, end = at, at+len(surface)
		}

		out = append(out, Entity{Text: surface, Category: cat, Start: start, End: end})
	}
	return out
}

func actionsFrom(tokens []nlp.Token) []ActionPhrase {
	out := make([]ActionPhrase, 0)
	for i, t := range tokens {
		if !nlp.IsVerb(t.Tag) || isAuxiliary(tokens, i) {
			continue
		}
		verb := strings.ToLower(t.Text)
		phrase := verb
		if obj := objectAfter(tokens, i+1); obj != "" {
			phrase += " " + obj
		}
		out = append(out, ActionPhrase{Text: phrase, Verb: verb})
	}
	return out
}

func isAuxiliary(tokens []nlp.Token, i int) bool {
	w := strings.ToLower(tokens[i].Text)
	if _, ok := auxiliaries[w]; ok {
		return true
	}
	if _, ok := haveForms[w]; ok {
		for j := i + 1; j < len(tokens); j++ {
			tag := tokens[j].Tag
			if tag == "RB" || tag == "PRP" {
				continue
			}
			return nlp.IsVerb(tag)
		}
	}
	return false
}

// objectAfter returns the noun phrase starting at tokens[from]: optional
// determiners, possessives, numbers and adjectives followed by one or more
// nouns, or a single pronoun. It returns "" when no noun phrase starts there.
func objectAfter(tokens []nlp.Token, from int) string {
	var words []string
	i := from
	for ; i < len(tokens); i++ {
		tag := tokens[i].Tag
		if tag == "DT" || tag == "PRP$" || tag == "CD" || nlp.IsAdjective(tag) {
			words = append(words, tokens[i].Text)
			continue
		}
		break
	}

	if i < len(tokens) && nlp.IsPronoun(tokens[i].Tag) && len(words) == 0 {
		return tokens[i].Text
	}

	nouns := 0
	for ; i < len(tokens) && nlp.IsNoun(tokens[i].Tag); i++ {
		words = append(words, tokens[i].Text)
		nouns++
	}
	if nouns == 0 {
		return ""
	}
	return strings.Join(words, " ")
}
