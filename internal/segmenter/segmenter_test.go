package segmenter

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type modelFunc func(string) []string

func (f modelFunc) Tokenize(text string) []string { return f(text) }

func splitOnPeriod(text string) []string {
	return strings.SplitAfter(text, ".")
}

func TestRegistry_Segment(t *testing.T) {
	r := NewRegistry(map[string]Model{"en": modelFunc(splitOnPeriod)})

	got := r.Segment("One. Two.  Three.", "en")

	assert.Equal(t, []string{"One.", "Two.", "Three."}, got)
}

func TestRegistry_SegmentDegradesToEmpty(t *testing.T) {
	r := NewRegistry(map[string]Model{
		"en": modelFunc(splitOnPeriod),
		"de": modelFunc(func(string) []string { panic("broken model") }),
	})

	tests := []struct {
		name string
		text string
		tag  string
	}{
		{"unknown language", "Uno. Dos.", "es"},
		{"blank text", "   ", "en"},
		{"model panics", "Eins. Zwei.", "de"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Segment(tt.text, tt.tag)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestNewRegistry_CopiesModels(t *testing.T) {
	models := map[string]Model{"en": modelFunc(splitOnPeriod)}
	r := NewRegistry(models)

	delete(models, "en")

	assert.True(t, r.Has("en"))
}

func TestLoadRegistry_Punkt(t *testing.T) {
	r, err := LoadRegistry("en", "de", "fr")
	require.NoError(t, err)

	for _, tag := range []string{"en", "de", "fr"} {
		assert.True(t, r.Has(tag), tag)
	}

	english := r.Segment("The sky was grey all morning. He left early. Nobody noticed!", "en")
	require.Len(t, english, 3)
	assert.Equal(t, "He left early.", english[1])

	german := r.Segment("Das ist der erste Satz. Hier kommt der zweite Satz.", "de")
	assert.Equal(t, []string{"Das ist der erste Satz.", "Hier kommt der zweite Satz."}, german)

	french := r.Segment("Le chat dort sur le canapé. Il fait beau aujourd'hui.", "fr")
	assert.Equal(t, []string{"Le chat dort sur le canapé.", "Il fait beau aujourd'hui."}, french)
}

func TestLoadRegistry_UnknownLanguage(t *testing.T) {
	_, err := LoadRegistry("xx")
	assert.Error(t, err)
}

func TestRegistry_ConcurrentSegment(t *testing.T) {
	r := NewRegistry(map[string]Model{"en": modelFunc(splitOnPeriod)})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, r.Segment("A. B. C.", "en"), 3)
		}()
	}
	wg.Wait()
}
