package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// readInput returns text from --file, the first argument, or in.
func readInput(file string, args []string, in io.Reader) (string, error) {
	var text string
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		text = string(data)
	} else if len(args) > 0 {
		text = args[0]
	} else {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text provided")
	}
	return text, nil
}

// printChunks writes chunks separated by a blank line.
func printChunks(w io.Writer, chunks []string) {
	for i, c := range chunks {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w, c)
	}
}
