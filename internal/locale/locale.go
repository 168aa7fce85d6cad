package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is the teaching-language preference: the language explanations
// are given in, not the language being taught.
type Language string

const (
	English Language = "English"
	Spanish Language = "Spanish"
)

// Default is used when no preference has been stored yet.
const Default = English

var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

var names = map[string]Language{
	"english": English,
	"inglés":  English,
	"ingles":  English,
	"spanish": Spanish,
	"español": Spanish,
	"espanol": Spanish,
}

// Parse resolves a language name ("Spanish", "español") or a BCP-47 tag
// ("es", "es-MX", "en-GB"). ok is false when nothing supported matches.
func Parse(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if l, ok := names[strings.ToLower(s)]; ok {
		return l, true
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	return fromTag(supported[idx]), true
}

// MustParse is Parse with a fallback to Default.
func MustParse(s string) Language {
	if l, ok := Parse(s); ok {
		return l
	}
	return Default
}

func fromTag(t language.Tag) Language {
	if t == language.Spanish {
		return Spanish
	}
	return English
}

// Tag returns the BCP-47 tag of the language.
func (l Language) Tag() language.Tag {
	if l == Spanish {
		return language.Spanish
	}
	return language.English
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == English || l == Spanish
}

func (l Language) String() string { return string(l) }

// Supported lists every language a user can switch to.
func Supported() []Language {
	return []Language{English, Spanish}
}
