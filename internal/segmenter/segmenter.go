// Package segmenter splits text into sentences with per-language models.
//
// Models are loaded once into a Registry and never modified afterwards, so a
// single Registry can be shared by concurrent callers.
package segmenter

import (
	"embed"
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Model splits text into raw sentence strings.
type Model interface {
	Tokenize(text string) []string
}

// Punkt training data for languages the sentences module ships without an
// embedded asset. English is built by its english package.
//
//go:embed data/*.json
var trainingData embed.FS

var trainingFiles = map[string]string{
	"de": "data/german.json",
	"fr": "data/french.json",
}

// Registry holds one sentence model per language tag.
type Registry struct {
	models map[string]Model
}

// NewRegistry creates a Registry from already built models.
func NewRegistry(models map[string]Model) *Registry {
	copied := make(map[string]Model, len(models))
	for tag, m := range models {
		copied[tag] = m
	}
	return &Registry{models: copied}
}

// LoadRegistry loads the punkt models for tags.
func LoadRegistry(tags ...string) (*Registry, error) {
	models := make(map[string]Model, len(tags))
	for _, tag := range tags {
		m, err := loadPunkt(tag)
		if err != nil {
			return nil, fmt.Errorf("loading %s sentence model: %w", tag, err)
		}
		models[tag] = m
	}
	return &Registry{models: models}, nil
}

// Has reports whether a model is loaded for tag.
func (r *Registry) Has(tag string) bool {
	_, ok := r.models[tag]
	return ok
}

// Segment splits text into trimmed, non-empty sentences in source order.
// It returns an empty slice when tag has no model or the model fails.
func (r *Registry) Segment(text, tag string) []string {
	m, ok := r.models[tag]
	if !ok || strings.TrimSpace(text) == "" {
		return []string{}
	}

	raw, ok := safeTokenize(m, text)
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func safeTokenize(m Model, text string) (out []string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			out, ok = nil, false
		}
	}()
	return m.Tokenize(text), true
}

type punktModel struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func (p punktModel) Tokenize(text string) []string {
	sents := p.tokenizer.Tokenize(text)
	out := make([]string, len(sents))
	for i, s := range sents {
		out[i] = s.Text
	}
	return out
}

func loadPunkt(tag string) (Model, error) {
	if tag == "en" {
		// The english package adds abbreviation and punctuation rules on top
		// of the bare training data.
		tokenizer, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			return nil, err
		}
		return punktModel{tokenizer: tokenizer}, nil
	}

	file, ok := trainingFiles[tag]
	if !ok {
		return nil, fmt.Errorf("no training data for language %q", tag)
	}
	b, err := trainingData.ReadFile(file)
	if err != nil {
		return nil, err
	}
	training, err := sentences.LoadTraining(b)
	if err != nil {
		return nil, err
	}
	return punktModel{tokenizer: sentences.NewSentenceTokenizer(training)}, nil
}
