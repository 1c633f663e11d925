// Package langdetect guesses the language of a text from a small supported set.
package langdetect

import (
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// DefaultLanguage is used whenever detection fails or is not supported.
const DefaultLanguage = "en"

// Language tags with a sentence model.
var supportedLanguages = map[string]bool{
	"en": true,
	"de": true,
	"fr": true,
}

// IsSupported reports whether tag is one of the supported languages.
func IsSupported(tag string) bool {
	return supportedLanguages[tag]
}

// SupportedLanguages returns the supported language tags in sorted order.
func SupportedLanguages() []string {
	langs := make([]string, 0, len(supportedLanguages))
	for lang := range supportedLanguages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Detection is the outcome of a detection. Fallback is set when Tag is the
// default rather than the detected language.
type Detection struct {
	Tag      string
	Fallback bool
}

// GuessFunc returns an ISO 639-1 tag for text, or false when it has no
// confident answer.
type GuessFunc func(text string) (string, bool)

// Detector maps guesses onto the supported set.
type Detector struct {
	defaultTag string
	guess      GuessFunc
}

// Option configures a Detector.
type Option func(*Detector)

// WithDefault sets the fallback language. Unsupported tags are ignored.
func WithDefault(tag string) Option {
	return func(d *Detector) {
		if IsSupported(tag) {
			d.defaultTag = tag
		}
	}
}

// WithGuessFunc replaces the underlying detector.
func WithGuessFunc(fn GuessFunc) Option {
	return func(d *Detector) {
		if fn != nil {
			d.guess = fn
		}
	}
}

// New creates a Detector backed by whatlanggo.
func New(opts ...Option) *Detector {
	d := &Detector{
		defaultTag: DefaultLanguage,
		guess:      whatlangGuess,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Default returns the fallback language tag.
func (d *Detector) Default() string {
	return d.defaultTag
}

// Detect returns the supported language of text, falling back to the
// default for blank text, unreliable guesses and unsupported languages.
func (d *Detector) Detect(text string) Detection {
	if strings.TrimSpace(text) == "" {
		return d.fallback()
	}

	tag, ok := d.safeGuess(text)
	if !ok || !IsSupported(tag) {
		return d.fallback()
	}
	return Detection{Tag: tag}
}

// DetectTag is Detect without the fallback flag.
func (d *Detector) DetectTag(text string) string {
	return d.Detect(text).Tag
}

func (d *Detector) fallback() Detection {
	return Detection{Tag: d.defaultTag, Fallback: true}
}

// safeGuess turns a panicking detector into a failed guess.
func (d *Detector) safeGuess(text string) (tag string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			tag, ok = "", false
		}
	}()
	return d.guess(text)
}

func whatlangGuess(text string) (string, bool) {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "", false
	}
	tag := info.Lang.Iso6391()
	return tag, tag != ""
}
