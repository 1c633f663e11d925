package langdetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixedGuess(tag string, ok bool) GuessFunc {
	return func(string) (string, bool) { return tag, ok }
}

func TestDetector_Detect(t *testing.T) {
	tests := []struct {
		name     string
		guess    GuessFunc
		text     string
		want     string
		fallback bool
	}{
		{"supported german", fixedGuess("de", true), "Hallo Welt", "de", false},
		{"supported french", fixedGuess("fr", true), "Bonjour", "fr", false},
		{"unsupported language", fixedGuess("es", true), "Hola", "en", true},
		{"unreliable guess", fixedGuess("de", false), "Hallo", "en", true},
		{"empty tag", fixedGuess("", true), "???", "en", true},
		{"blank text", fixedGuess("de", true), "   \n\t", "en", true},
		{"empty text", fixedGuess("de", true), "", "en", true},
		{
			"panicking detector",
			func(string) (string, bool) { panic("model exploded") },
			"text",
			"en",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(WithGuessFunc(tt.guess))
			got := d.Detect(tt.text)
			assert.Equal(t, tt.want, got.Tag)
			assert.Equal(t, tt.fallback, got.Fallback)
		})
	}
}

func TestDetector_BlankTextSkipsGuess(t *testing.T) {
	called := false
	d := New(WithGuessFunc(func(string) (string, bool) {
		called = true
		return "de", true
	}))

	d.Detect("  ")

	assert.False(t, called)
}

func TestWithDefault(t *testing.T) {
	d := New(WithDefault("fr"), WithGuessFunc(fixedGuess("", false)))
	assert.Equal(t, "fr", d.Default())
	assert.Equal(t, "fr", d.DetectTag("whatever"))

	// Unsupported defaults are ignored
	d = New(WithDefault("xx"))
	assert.Equal(t, DefaultLanguage, d.Default())
}

func TestDetector_Whatlanggo(t *testing.T) {
	d := New()

	german := "Die Bundesregierung hat heute neue Maßnahmen beschlossen, die den Ausbau " +
		"erneuerbarer Energien in den kommenden Jahren deutlich beschleunigen sollen."
	french := "Le gouvernement a annoncé aujourd'hui de nouvelles mesures qui doivent " +
		"accélérer nettement le développement des énergies renouvelables dans les années à venir."
	english := "The government announced new measures today that are meant to speed up " +
		"the expansion of renewable energy considerably over the coming years."

	assert.Equal(t, "de", d.DetectTag(german))
	assert.Equal(t, "fr", d.DetectTag(french))
	assert.Equal(t, "en", d.DetectTag(english))
}

func TestSupportedLanguages(t *testing.T) {
	assert.Equal(t, []string{"de", "en", "fr"}, SupportedLanguages())
	assert.True(t, IsSupported("en"))
	assert.False(t, IsSupported("es"))
	assert.False(t, IsSupported(""))
}
