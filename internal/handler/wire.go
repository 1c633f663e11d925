package handler

import (
	"context"
	"fmt"

	"github.com/threadkit/bsky-threader/internal/bluesky"
	"github.com/threadkit/bsky-threader/internal/chunker"
	"github.com/threadkit/bsky-threader/internal/config"
	"github.com/threadkit/bsky-threader/internal/langdetect"
	"github.com/threadkit/bsky-threader/internal/segmenter"
	"github.com/threadkit/bsky-threader/internal/threader"
)

// NewFromConfig wires the detector, sentence models, processor and Bluesky
// client described by cfg. Sentence models are loaded once here.
func NewFromConfig(cfg *config.Config) (*Handler, error) {
	detector := langdetect.New(langdetect.WithDefault(cfg.DefaultLanguage))

	registry, err := segmenter.LoadRegistry(langdetect.SupportedLanguages()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence models: %w", err)
	}

	var opts []threader.Option
	if cfg.ReserveMarker {
		opts = append(opts, threader.WithMarkerReserve())
	}
	processor := threader.New(detector, registry, cfg.MaxLength, opts...)

	client := bluesky.NewClient(cfg.PDSURL,
		bluesky.WithTimeout(cfg.Timeout),
		bluesky.WithLoginRetries(cfg.LoginRetries, 0))

	return New(processor, detector, NewPublisherFactory(cfg, client, processor),
		WithPreview(PostSplitter(cfg, processor))), nil
}

// PostSplitter returns the function that turns text into posts. Every post it
// produces fits cfg.MaxLength.
func PostSplitter(cfg *config.Config, processor *threader.Processor) bluesky.SplitFunc {
	if cfg.Splitter == config.SplitterWords {
		return func(text string) []string {
			return chunker.SplitWords(text, cfg.MaxLength)
		}
	}
	return processor.Posts
}

// NewPublisherFactory returns a factory that logs in once per call, so
// concurrent requests never share a session. Chunks longer than
// cfg.MaxLength are rejected before the first post.
func NewPublisherFactory(cfg *config.Config, client *bluesky.Client, processor *threader.Processor) PublisherFactory {
	split := PostSplitter(cfg, processor)

	return func(ctx context.Context, lang string) (ThreadPublisher, error) {
		if err := cfg.RequireCredentials(); err != nil {
			return nil, err
		}
		session, err := client.Login(ctx, cfg.Handle, cfg.Password)
		if err != nil {
			return nil, err
		}

		opts := []bluesky.PublisherOption{
			bluesky.WithPostInterval(cfg.PostInterval),
			bluesky.WithMaxLength(cfg.MaxLength),
		}
		if lang != "" {
			opts = append(opts, bluesky.WithLangs(lang))
		}
		return bluesky.NewPublisher(client, session, split, opts...), nil
	}
}
