// Package threader turns long text into a numbered sequence of post chunks.
package threader

import (
	"strings"

	"github.com/threadkit/bsky-threader/internal/chunker"
	"github.com/threadkit/bsky-threader/internal/domain"
	"github.com/threadkit/bsky-threader/internal/langdetect"
	"github.com/threadkit/bsky-threader/internal/logger"
)

// Detector picks the language used for segmentation.
type Detector interface {
	Detect(text string) langdetect.Detection
}

// Segmenter splits text into sentences for a language.
type Segmenter interface {
	Segment(text, tag string) []string
}

// Processor runs detect -> segment -> pack -> format.
// It holds no mutable state and is safe for concurrent use.
type Processor struct {
	detector      Detector
	segmenter     Segmenter
	maxLength     int
	reserveMarker bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithMarkerReserve packs chunks so that they stay within the limit after the
// "i/N " marker is added. Without it only the unmarked chunk text is bounded.
func WithMarkerReserve() Option {
	return func(p *Processor) {
		p.reserveMarker = true
	}
}

// New creates a Processor. maxLength <= 0 uses the platform default.
func New(detector Detector, segmenter Segmenter, maxLength int, opts ...Option) *Processor {
	if maxLength <= 0 {
		maxLength = domain.DefaultMaxLength
	}
	p := &Processor{
		detector:  detector,
		segmenter: segmenter,
		maxLength: maxLength,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxLength returns the chunk length limit.
func (p *Processor) MaxLength() int {
	return p.maxLength
}

// Process splits text into chunks.
// Text that already fits is returned as-is, without a position marker.
// Longer text is split on sentence boundaries and every chunk is marked "i/N".
// If no sentences are found the result has no chunks.
func (p *Processor) Process(text string) domain.ThreadDescriptor {
	if chunker.Len(text) <= p.maxLength {
		return domain.ThreadDescriptor{
			OriginalText: text,
			Chunks:       []string{text},
			ChunkCount:   1,
		}
	}

	sentences, tag := p.sentences(text)
	if len(sentences) == 0 {
		return domain.ThreadDescriptor{
			OriginalText: text,
			Chunks:       []string{},
			ChunkCount:   0,
			Language:     tag,
		}
	}

	chunks := chunker.Format(p.pack(sentences))
	logger.Debug("text processed",
		"language", tag,
		"sentences", len(sentences),
		"chunks", len(chunks))

	return domain.ThreadDescriptor{
		OriginalText: text,
		Chunks:       chunks,
		ChunkCount:   len(chunks),
		Language:     tag,
	}
}

// sentences detects the language of text and segments it.
func (p *Processor) sentences(text string) ([]string, string) {
	detection := p.detector.Detect(text)
	if detection.Fallback {
		logger.Debug("language detection fell back to default", "language", detection.Tag)
	}

	sentences := p.segmenter.Segment(text, detection.Tag)
	if len(sentences) == 0 {
		logger.Warn("no sentences found", "language", detection.Tag, "length", chunker.Len(text))
	}
	return sentences, detection.Tag
}

func (p *Processor) pack(sentences []string) []string {
	if !p.reserveMarker {
		return chunker.Pack(sentences, p.maxLength)
	}

	// The marker width depends on the chunk count, so repack until it settles.
	reserve := chunker.Len(chunker.Marker(1, 1))
	for {
		if p.maxLength-reserve <= 0 {
			return chunker.Pack(sentences, p.maxLength)
		}
		chunks := chunker.Pack(sentences, p.maxLength-reserve)
		needed := chunker.Len(chunker.Marker(len(chunks), len(chunks)))
		if needed <= reserve {
			return chunks
		}
		reserve = needed
	}
}

// Chunks returns just the chunks of text as Process builds them.
func (p *Processor) Chunks(text string) []string {
	return p.Process(text).Chunks
}

// Posts returns the texts to publish for text. Unlike Process, every post
// including its "i/N " marker is at most MaxLength long: the marker width is
// always reserved and sentences longer than a post are split between words.
// Text that fits is returned as-is. No sentences yields no posts.
func (p *Processor) Posts(text string) []string {
	if chunker.Len(text) <= p.maxLength {
		return []string{text}
	}

	sentences, _ := p.sentences(text)
	if len(sentences) == 0 {
		return nil
	}

	reserve := chunker.Len(chunker.Marker(1, 1))
	for {
		limit := p.maxLength - reserve
		if limit <= 0 {
			// No room left for a marker next to any text.
			return chunker.SplitWords(strings.Join(sentences, " "), p.maxLength)
		}
		chunks := chunker.Pack(splitLong(sentences, limit), limit)
		needed := chunker.Len(chunker.Marker(len(chunks), len(chunks)))
		if needed <= reserve {
			return chunker.Format(chunks)
		}
		reserve = needed
	}
}

// splitLong breaks sentences longer than limit into word-boundary pieces.
func splitLong(sentences []string, limit int) []string {
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if chunker.Len(s) > limit {
			out = append(out, chunker.SplitWords(s, limit)...)
			continue
		}
		out = append(out, s)
	}
	return out
}
