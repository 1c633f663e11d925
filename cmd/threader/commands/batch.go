package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/threadkit/bsky-threader/internal/logger"
	"github.com/threadkit/bsky-threader/internal/store"
)

var (
	batchInput  string
	batchOutput string
)

// NewBatchCmd creates the batch command
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process a file of scraped posts",
		Long: `Read a JSON array of scraped posts and write their thread chunks.

Defaults come from TWEETS_INPUT and TWEETS_OUTPUT.

Examples:
  threader batch
  threader batch --input tweets.json --output processed_tweets.json`,
		Args: cobra.NoArgs,
		RunE: runBatch,
	}

	cmd.Flags().StringVar(&batchInput, "input", "", "Scraped posts file (default $TWEETS_INPUT)")
	cmd.Flags().StringVar(&batchOutput, "output", "", "Processed records file (default $TWEETS_OUTPUT)")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	h, cfg, err := newHandler()
	if err != nil {
		return err
	}

	input, output := batchInput, batchOutput
	if input == "" {
		input = cfg.TweetsInput
	}
	if output == "" {
		output = cfg.TweetsOutput
	}

	records, err := store.ReadTweets(input)
	if err != nil {
		return err
	}

	processed := h.ProcessBatch(records)
	if err := store.WriteProcessed(output, processed); err != nil {
		return err
	}

	logger.Info("batch processed", "input", input, "output", output, "records", len(records), "written", len(processed))
	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Processed %d of %d posts into %s\n", len(processed), len(records), output)
	}
	return nil
}
