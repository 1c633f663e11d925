// Package commands implements the threader CLI.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/threadkit/bsky-threader/internal/config"
	"github.com/threadkit/bsky-threader/internal/handler"
	"github.com/threadkit/bsky-threader/internal/logger"
)

var (
	envFile   string
	logLevel  string
	maxLength int
	quiet     bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threader",
		Short: "Split long posts into numbered Bluesky threads",
		Long: `threader splits long text into sentence-aligned chunks numbered "i/N"
and publishes them to Bluesky as a reply-chained thread.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Load environment from this file if it exists")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().IntVar(&maxLength, "max-length", 0, "Maximum chunk length in characters (overrides THREAD_MAX_LENGTH)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results")

	cmd.AddCommand(NewProcessCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewPublishCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. An interrupt cancels in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig reads configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if maxLength > 0 {
		cfg.MaxLength = maxLength
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.JSON = cfg.LogFormat == "json"
	logger.Init(logCfg)

	return cfg, nil
}

// newHandler loads configuration and wires a handler from it.
func newHandler() (*handler.Handler, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	h, err := handler.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return h, cfg, nil
}
