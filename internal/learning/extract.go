package learning

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var wordPattern = regexp.MustCompile(`\p{L}+`)

// TopicKeywords are matched as substrings of the lower-cased user message.
var TopicKeywords = []string{
	"greeting", "saludos", "numbers", "números", "grammar", "gramática",
	"travel", "viaje", "pronunciation", "pronunciación", "conversation",
	"conversación", "verb", "verbo", "noun", "sustantivo", "food", "comida",
	"family", "familia", "time", "tiempo", "weather", "clima", "colors", "colores",
}

// extractWords returns the letter runs of text longer than two runes, in
// order of appearance. Duplicates are kept; the caller dedups.
func extractWords(text string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(text, -1) {
		if utf8.RuneCountInString(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

// matchTopics returns the keywords contained in text. "numbersomething"
// matches "numbers".
func matchTopics(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range TopicKeywords {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

func appendDistinct(dst []string, items ...string) []string {
	for _, it := range items {
		if !slices.Contains(dst, it) {
			dst = append(dst, it)
		}
	}
	return dst
}
