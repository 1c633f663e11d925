package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/threadkit/bsky-threader/internal/bluesky"
	"github.com/threadkit/bsky-threader/internal/domain"
)

var (
	publishFile   string
	publishDryRun bool
)

// NewPublishCmd creates the publish command
func NewPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [text]",
		Short: "Publish text as a Bluesky thread",
		Long: `Split text and post it to Bluesky as a reply-chained thread.

Credentials come from BLUESKY_USERNAME and BLUESKY_PASSWORD. If a post
fails midway the posts already created are printed; publishing the same
text again duplicates them.

Examples:
  threader publish --dry-run "A long text. With several sentences."
  threader publish --file draft.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPublish,
	}

	cmd.Flags().StringVar(&publishFile, "file", "", "Read text from file")
	cmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Print the posts without publishing")

	return cmd
}

func runPublish(cmd *cobra.Command, args []string) error {
	text, err := readInput(publishFile, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	h, _, err := newHandler()
	if err != nil {
		return err
	}

	if publishDryRun {
		chunks, err := h.Preview(text)
		if err != nil {
			return err
		}
		printChunks(cmd.OutOrStdout(), chunks)
		return nil
	}

	result, err := h.Publish(cmd.Context(), text)
	if refs, ok := bluesky.PartialRefs(err); ok {
		printRefs(cmd.OutOrStdout(), refs)
		return err
	}
	if err != nil {
		return err
	}

	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Published %d posts (run %s)\n", len(result.Refs), result.RunID)
	}
	printRefs(cmd.OutOrStdout(), result.Refs)
	return nil
}

func printRefs(w io.Writer, refs domain.ThreadRefs) {
	for _, ref := range refs {
		_, _ = fmt.Fprintln(w, ref.URI)
	}
}
