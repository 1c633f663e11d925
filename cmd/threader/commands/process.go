package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var (
	processFile string
	processJSON bool
)

// NewProcessCmd creates the process command
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [text]",
		Short: "Split text into numbered thread chunks",
		Long: `Split text into sentence-aligned chunks prefixed with "i/N".
Text that fits in a single post is returned unchanged.

Examples:
  threader process "First sentence. Second sentence."
  threader process --file draft.txt --json
  cat draft.txt | threader process`,
		Args: cobra.MaximumNArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().StringVar(&processFile, "file", "", "Read text from file")
	cmd.Flags().BoolVar(&processJSON, "json", false, "Print the thread descriptor as JSON")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	text, err := readInput(processFile, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	h, _, err := newHandler()
	if err != nil {
		return err
	}

	desc, err := h.Process(text)
	if err != nil {
		return err
	}

	if processJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	}
	printChunks(cmd.OutOrStdout(), desc.Chunks)
	return nil
}
