package nlp

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

var wordRe = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)?|[.!?;]`)

// Words returns the lower-cased words of text in order, with the "n't" clitic
// split off ("isn't" -> "is", "n't") and sentence punctuation kept as its own
// token so callers can stop look-behind windows at clause boundaries.
//
// It does not need a loaded Model: lexical scorers use it directly.
func Words(text string) []string {
	raw := wordRe.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		w = strings.ToLower(w)
		if len(w) > 3 && strings.HasSuffix(w, "n't") {
			out = append(out, w[:len(w)-3], "n't")
			continue
		}
		out = append(out, w)
	}
	return out
}

// IsBoundary reports whether w ends a clause for look-behind purposes.
func IsBoundary(w string) bool {
	switch w {
	case ".", "!", "?", ";", "but":
		return true
	}
	return false
}

// Stem returns the Snowball (Porter2) English stem of a lower-cased word.
func Stem(word string) string {
	return english.Stem(strings.ToLower(word), true)
}

// StemAll stems every word of a space separated phrase.
func StemAll(phrase string) []string {
	fields := strings.Fields(strings.ToLower(phrase))
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = Stem(f)
	}
	return out
}
