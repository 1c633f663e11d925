package threader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadkit/bsky-threader/internal/chunker"
	"github.com/threadkit/bsky-threader/internal/langdetect"
	"github.com/threadkit/bsky-threader/internal/segmenter"
)

type fakeDetector struct {
	tag   string
	calls int
}

func (d *fakeDetector) Detect(string) langdetect.Detection {
	d.calls++
	return langdetect.Detection{Tag: d.tag}
}

type fakeSegmenter struct {
	sentences []string
	gotTag    string
}

func (s *fakeSegmenter) Segment(_, tag string) []string {
	s.gotTag = tag
	return s.sentences
}

func sentence(ch string, n int) string {
	return strings.Repeat(ch, n-1) + "."
}

func TestProcess_ShortTextIsUnmarked(t *testing.T) {
	det := &fakeDetector{tag: "en"}
	p := New(det, &fakeSegmenter{}, 300)

	got := p.Process("Hello world.")

	assert.Equal(t, []string{"Hello world."}, got.Chunks)
	assert.Equal(t, 1, got.ChunkCount)
	assert.Equal(t, "Hello world.", got.OriginalText)
	assert.Zero(t, det.calls, "short text must not run detection")
}

func TestProcess_ExactLimitIsUnmarked(t *testing.T) {
	text := strings.Repeat("a", 300)
	p := New(&fakeDetector{tag: "en"}, &fakeSegmenter{}, 300)

	got := p.Process(text)

	assert.Equal(t, []string{text}, got.Chunks)
}

func TestProcess_LongTextIsPackedAndMarked(t *testing.T) {
	s1, s2, s3 := sentence("a", 200), sentence("b", 150), sentence("c", 50)
	seg := &fakeSegmenter{sentences: []string{s1, s2, s3}}
	p := New(&fakeDetector{tag: "de"}, seg, 300)

	got := p.Process(s1 + " " + s2 + " " + s3)

	assert.Equal(t, "de", seg.gotTag)
	assert.Equal(t, "de", got.Language)
	assert.Equal(t, 2, got.ChunkCount)
	assert.Equal(t, []string{"1/2 " + s1, "2/2 " + s2 + " " + s3}, got.Chunks)
}

func TestProcess_OversizedSentence(t *testing.T) {
	s := sentence("x", 400)
	p := New(&fakeDetector{tag: "en"}, &fakeSegmenter{sentences: []string{s}}, 300)

	got := p.Process(s)

	require.Equal(t, 1, got.ChunkCount)
	assert.Equal(t, "1/1 "+s, got.Chunks[0])
}

func TestProcess_NoSentences(t *testing.T) {
	p := New(&fakeDetector{tag: "en"}, &fakeSegmenter{}, 10)

	got := p.Process(strings.Repeat("z", 50))

	assert.NotNil(t, got.Chunks)
	assert.Empty(t, got.Chunks)
	assert.Equal(t, 0, got.ChunkCount)
}

func TestProcess_MarkerReserve(t *testing.T) {
	// Two sentences that fit 300 together but not once "1/1 " is added.
	s1, s2 := sentence("a", 150), sentence("b", 148)
	seg := &fakeSegmenter{sentences: []string{s1, s2}}
	text := s1 + " " + s2 + " tail"

	plain := New(&fakeDetector{tag: "en"}, seg, 300).Process(text)
	assert.Equal(t, 1, plain.ChunkCount)

	reserved := New(&fakeDetector{tag: "en"}, seg, 300, WithMarkerReserve()).Process(text)
	require.Equal(t, 2, reserved.ChunkCount)
	for _, c := range reserved.Chunks {
		assert.LessOrEqual(t, chunker.Len(c), 300)
	}
}

func TestProcess_MarkerReserveTwoDigitCount(t *testing.T) {
	// Ten chunks need a six-character marker ("10/10 ").
	var sentences []string
	for i := 0; i < 10; i++ {
		sentences = append(sentences, sentence("s", 90))
	}
	seg := &fakeSegmenter{sentences: sentences}

	got := New(&fakeDetector{tag: "en"}, seg, 100, WithMarkerReserve()).Process(strings.Repeat("x", 200))

	require.Equal(t, 10, got.ChunkCount)
	for _, c := range got.Chunks {
		assert.LessOrEqual(t, chunker.Len(c), 100)
	}
}

func TestProcess_DefaultMaxLength(t *testing.T) {
	p := New(&fakeDetector{tag: "en"}, &fakeSegmenter{}, 0)
	assert.Equal(t, 300, p.MaxLength())
}

func TestProcess_EndToEnd(t *testing.T) {
	reg, err := segmenter.LoadRegistry(langdetect.SupportedLanguages()...)
	require.NoError(t, err)
	p := New(langdetect.New(), reg, 300)

	text := strings.Repeat("This sentence talks about decentralized social networks and their benefits. ", 10)
	got := p.Process(text)

	require.Greater(t, got.ChunkCount, 1)
	assert.Equal(t, "en", got.Language)

	var rebuilt []string
	for i, c := range got.Chunks {
		prefix := chunker.Marker(i+1, got.ChunkCount)
		require.True(t, strings.HasPrefix(c, prefix), c)
		body := strings.TrimPrefix(c, prefix)
		assert.LessOrEqual(t, chunker.Len(body), 300)
		assert.LessOrEqual(t, chunker.Len(c), 300+chunker.Len(prefix))
		rebuilt = append(rebuilt, body)
	}
	assert.Equal(t, strings.TrimSpace(text), strings.Join(rebuilt, " "))

	// Deterministic for identical input
	assert.Equal(t, got, p.Process(text))
}

func TestProcess_GermanAndFrench(t *testing.T) {
	reg, err := segmenter.LoadRegistry(langdetect.SupportedLanguages()...)
	require.NoError(t, err)
	p := New(langdetect.New(), reg, 170)

	tests := []struct {
		lang      string
		sentences []string
	}{
		{
			lang: "de",
			sentences: []string{
				"Die Bundesregierung hat heute neue Maßnahmen beschlossen, die den Ausbau " +
					"erneuerbarer Energien in den kommenden Jahren deutlich beschleunigen sollen.",
				"Die Opposition kritisiert den Plan als zu langsam.",
			},
		},
		{
			lang: "fr",
			sentences: []string{
				"Le gouvernement a annoncé aujourd'hui de nouvelles mesures qui doivent " +
					"accélérer nettement le développement des énergies renouvelables dans les années à venir.",
				"Les syndicats saluent une décision attendue depuis longtemps.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			got := p.Process(strings.Join(tt.sentences, " "))

			assert.Equal(t, tt.lang, got.Language)
			require.Equal(t, 2, got.ChunkCount)
			assert.Equal(t, "1/2 "+tt.sentences[0], got.Chunks[0])
			assert.Equal(t, "2/2 "+tt.sentences[1], got.Chunks[1])
		})
	}
}

func TestPosts_NearLimitSentencesFitWithMarker(t *testing.T) {
	// Two of these fit 300 unmarked; the marker must force them apart.
	s1, s2, s3 := sentence("a", 148), sentence("b", 148), sentence("c", 148)
	seg := &fakeSegmenter{sentences: []string{s1, s2, s3}}
	p := New(&fakeDetector{tag: "en"}, seg, 300)

	posts := p.Posts(s1 + " " + s2 + " " + s3)

	require.Len(t, posts, 3)
	for _, post := range posts {
		assert.LessOrEqual(t, chunker.Len(post), 300, post[:8])
	}
	assert.Equal(t, "1/3 "+s1, posts[0])
}

func TestPosts_OversizedSentenceIsSplitBetweenWords(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("decentralized ", 40)) + "."
	short := "Short closing sentence."
	seg := &fakeSegmenter{sentences: []string{long, short}}
	p := New(&fakeDetector{tag: "en"}, seg, 300)
	text := long + " " + short

	posts := p.Posts(text)

	require.GreaterOrEqual(t, len(posts), 2)
	var bodies []string
	for i, post := range posts {
		assert.LessOrEqual(t, chunker.Len(post), 300)
		prefix := chunker.Marker(i+1, len(posts))
		require.True(t, strings.HasPrefix(post, prefix), post)
		bodies = append(bodies, strings.TrimPrefix(post, prefix))
	}
	assert.Equal(t, text, strings.Join(bodies, " "))
}

func TestPosts_ShortTextAndNoSentences(t *testing.T) {
	p := New(&fakeDetector{tag: "en"}, &fakeSegmenter{}, 20)

	assert.Equal(t, []string{"Hello world."}, p.Posts("Hello world."))
	assert.Empty(t, p.Posts(strings.Repeat("z", 50)))
}

func TestPosts_NoRoomForMarker(t *testing.T) {
	seg := &fakeSegmenter{sentences: []string{"ab cd ef."}}
	p := New(&fakeDetector{tag: "en"}, seg, 3)

	assert.Equal(t, []string{"ab", "cd", "ef."}, p.Posts("ab cd ef."))
}

func TestPosts_EndToEndWithinLimit(t *testing.T) {
	reg, err := segmenter.LoadRegistry(langdetect.SupportedLanguages()...)
	require.NoError(t, err)
	p := New(langdetect.New(), reg, 300)

	text := strings.Repeat("This sentence talks about decentralized social networks and their benefits. ", 12)
	posts := p.Posts(text)

	require.Greater(t, len(posts), 1)
	for _, post := range posts {
		assert.LessOrEqual(t, chunker.Len(post), 300)
	}
}
