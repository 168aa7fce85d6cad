package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Language
		ok   bool
	}{
		{"English", English, true},
		{"spanish", Spanish, true},
		{"Español", Spanish, true},
		{"es", Spanish, true},
		{"es-MX", Spanish, true},
		{"en-GB", English, true},
		{"  Spanish ", Spanish, true},
		{"", "", false},
		{"!!", "", false},
	}
	for _, c := range cases {
		got, ok := Parse(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestMustParseFallsBack(t *testing.T) {
	assert.Equal(t, Default, MustParse("??"))
	assert.Equal(t, Spanish, MustParse("es"))
}

func TestFormatDatePerLocale(t *testing.T) {
	d := time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "3/7/2024", English.FormatDate(d))
	assert.Equal(t, "7/3/2024", Spanish.FormatDate(d))
}

func TestFault(t *testing.T) {
	assert.Equal(t, "Error: API error: 401 - bad key. Please check your API key and try again.",
		English.Fault("API error: 401 - bad key"))
	assert.Contains(t, Spanish.Fault("x"), "verifica tu API key")
}

func TestTextsForUnknownFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, english.NewStudent, TextsFor(Language("Klingon")).NewStudent)
	assert.False(t, Language("Klingon").Valid())
}

func TestMissingCredentialNamesNoProvider(t *testing.T) {
	for _, l := range Supported() {
		msg := TextsFor(l).MissingCredential
		for _, provider := range []string{"Gemini", "OpenAI", "Yandex"} {
			assert.NotContains(t, msg, provider, l)
		}
		assert.Contains(t, msg, "API key")
	}
}
