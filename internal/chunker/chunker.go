// Package chunker packs sentences into post-sized chunks and numbers them.
package chunker

import (
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
)

// DefaultMaxLength is the default maximum length per chunk.
// Bluesky posts are limited to 300 graphemes.
const DefaultMaxLength = 300

// Len returns the length of text as the target platform counts it,
// in grapheme clusters.
func Len(text string) int {
	return uniseg.GraphemeClusterCount(text)
}

// Pack greedily groups sentences into chunks of at most maxLength,
// joining sentences with a single space.
// Each sentence is kept whole - never split mid-sentence. A sentence longer
// than maxLength ends up alone in its own chunk.
func Pack(sentences []string, maxLength int) []string {
	if len(sentences) == 0 {
		return nil
	}

	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		currentLen = 0
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		sentenceLen := Len(sentence)

		// Start a new chunk when the sentence plus its separator does not fit
		if currentLen > 0 && currentLen+1+sentenceLen > maxLength {
			flush()
		}

		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += sentenceLen
	}

	// Flush remaining chunk
	flush()

	return chunks
}

// Format prefixes every chunk with its position, e.g. "2/5 ".
func Format(chunks []string) []string {
	if len(chunks) == 0 {
		return nil
	}

	formatted := make([]string, len(chunks))
	for i, chunk := range chunks {
		formatted[i] = Marker(i+1, len(chunks)) + chunk
	}
	return formatted
}

// Marker returns the positional prefix Format puts in front of chunk i of n.
func Marker(i, n int) string {
	return strconv.Itoa(i) + "/" + strconv.Itoa(n) + " "
}
