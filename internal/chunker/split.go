package chunker

import (
	"strings"

	"github.com/rivo/uniseg"
)

// SplitWords splits text into pieces of at most maxLength at the last space
// before the limit. A run without any space is cut hard at maxLength.
func SplitWords(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	clusters := graphemes(text)
	var pieces []string

	for len(clusters) > maxLength {
		splitAt := lastSpace(clusters[:maxLength])
		if splitAt <= 0 {
			splitAt = maxLength
		}
		if piece := strings.TrimSpace(strings.Join(clusters[:splitAt], "")); piece != "" {
			pieces = append(pieces, piece)
		}
		clusters = graphemes(strings.TrimSpace(strings.Join(clusters[splitAt:], "")))
	}

	if rest := strings.TrimSpace(strings.Join(clusters, "")); rest != "" {
		pieces = append(pieces, rest)
	}
	return pieces
}

func graphemes(text string) []string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	return clusters
}

func lastSpace(clusters []string) int {
	for i := len(clusters) - 1; i >= 0; i-- {
		if clusters[i] == " " {
			return i
		}
	}
	return -1
}
