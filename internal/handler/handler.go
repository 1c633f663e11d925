// Package handler validates requests and dispatches them to the thread
// processor and publisher.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/threadkit/bsky-threader/internal/domain"
	"github.com/threadkit/bsky-threader/internal/logger"
)

// Actions accepted by Handle.
const (
	ActionProcess = "process"
	ActionPublish = "publish"
	ActionBatch   = "batch"
)

// Request is the input to the thread builder.
type Request struct {
	Action    string               `json:"action,omitempty"`
	TweetText string               `json:"tweet_text,omitempty"`
	Text      string               `json:"text,omitempty"`
	Chunks    []string             `json:"chunks,omitempty"`
	Refs      domain.ThreadRefs    `json:"refs,omitempty"`
	Tweets    []domain.TweetRecord `json:"tweets,omitempty"`
}

// ErrorResponse is the body returned for a failed request.
type ErrorResponse struct {
	Error      string            `json:"error"`
	StatusCode int               `json:"statusCode"`
	Refs       domain.ThreadRefs `json:"refs,omitempty"`
}

// NewErrorResponse describes err for the caller. A partially published
// thread reports the posts that were created.
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Error:      err.Error(),
		StatusCode: domain.StatusCode(err),
	}
	var partial *domain.PartialThreadError
	if errors.As(err, &partial) {
		resp.Refs = partial.Refs
	}
	return resp
}

// Processor turns text into chunks.
type Processor interface {
	Process(text string) domain.ThreadDescriptor
}

// ThreadPublisher posts a thread for one authenticated account.
type ThreadPublisher interface {
	Publish(ctx context.Context, text string) (*domain.PublishResult, error)
	PublishChunks(ctx context.Context, chunks []string) (*domain.PublishResult, error)
	Resume(ctx context.Context, refs domain.ThreadRefs, chunks []string) (*domain.PublishResult, error)
}

// PublisherFactory logs in and returns a publisher tagging posts with lang.
type PublisherFactory func(ctx context.Context, lang string) (ThreadPublisher, error)

// LanguageDetector picks the language tag of a text.
type LanguageDetector interface {
	DetectTag(text string) string
}

// Handler serves process, batch and publish requests.
type Handler struct {
	processor  Processor
	detector   LanguageDetector
	publishers PublisherFactory
	preview    func(text string) []string
}

// Option configures a Handler.
type Option func(*Handler)

// WithPreview sets how Preview splits text. It should match the split used
// by the publishers.
func WithPreview(split func(text string) []string) Option {
	return func(h *Handler) {
		h.preview = split
	}
}

// New creates a Handler. publishers may be nil when publishing is disabled.
func New(processor Processor, detector LanguageDetector, publishers PublisherFactory, opts ...Option) *Handler {
	h := &Handler{
		processor:  processor,
		detector:   detector,
		publishers: publishers,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle dispatches req by its action. An empty action means process.
func (h *Handler) Handle(ctx context.Context, req Request) (any, error) {
	// Validate request
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	switch req.Action {
	case "", ActionProcess:
		return h.Process(req.TweetText)
	case ActionBatch:
		return h.ProcessBatch(req.Tweets), nil
	case ActionPublish:
		if len(req.Refs) > 0 {
			return h.Resume(ctx, req.Refs, req.Chunks)
		}
		if len(req.Chunks) > 0 {
			return h.PublishChunks(ctx, req.Chunks)
		}
		return h.Publish(ctx, req.Text)
	}
	return nil, &domain.ValidationError{Field: "action", Message: fmt.Sprintf("%q is not supported", req.Action)}
}

// Process splits text into post chunks. Text that yields no chunks is
// reported as a ProcessingError.
func (h *Handler) Process(text string) (*domain.ThreadDescriptor, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.Required("tweet_text")
	}

	desc := h.processor.Process(text)
	if desc.ChunkCount == 0 {
		return nil, &domain.ProcessingError{Message: "could not process text: no sentences found"}
	}
	return &desc, nil
}

// ProcessBatch processes scraped records in order. Records without content
// are skipped; records that yield no chunks are kept with an empty chunk list.
func (h *Handler) ProcessBatch(records []domain.TweetRecord) []domain.ProcessedRecord {
	out := make([]domain.ProcessedRecord, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.Content) == "" {
			logger.Warn("skipping record without content", "tweet_id", rec.TweetID)
			continue
		}

		desc := h.processor.Process(rec.Content)
		if desc.ChunkCount == 0 {
			logger.Warn("record could not be processed", "tweet_id", rec.TweetID)
		}
		out = append(out, domain.ProcessedRecord{
			TweetID:      rec.TweetID,
			OriginalText: desc.OriginalText,
			Chunks:       desc.Chunks,
			ChunkCount:   desc.ChunkCount,
			Timestamp:    rec.Timestamp,
			Media:        rec.Media,
		})
	}
	return out
}

// Preview returns the posts Publish would create for text, without posting.
func (h *Handler) Preview(text string) ([]string, error) {
	if h.preview == nil {
		desc, err := h.Process(text)
		if err != nil {
			return nil, err
		}
		return desc.Chunks, nil
	}

	if strings.TrimSpace(text) == "" {
		return nil, domain.Required("text")
	}
	posts := h.preview(text)
	if len(posts) == 0 {
		return nil, &domain.ProcessingError{Message: "could not process text: no sentences found"}
	}
	return posts, nil
}

// Publish posts text as a thread.
func (h *Handler) Publish(ctx context.Context, text string) (*domain.PublishResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.Required("text")
	}
	pub, err := h.publisher(ctx, h.detectTag(text))
	if err != nil {
		return nil, err
	}
	return pub.Publish(ctx, text)
}

// PublishChunks posts already processed chunks as a thread.
func (h *Handler) PublishChunks(ctx context.Context, chunks []string) (*domain.PublishResult, error) {
	if len(chunks) == 0 {
		return nil, domain.Required("chunks")
	}
	pub, err := h.publisher(ctx, h.detectTag(strings.Join(chunks, " ")))
	if err != nil {
		return nil, err
	}
	return pub.PublishChunks(ctx, chunks)
}

// Resume continues a partially published thread with the chunks after refs.
func (h *Handler) Resume(ctx context.Context, refs domain.ThreadRefs, chunks []string) (*domain.PublishResult, error) {
	if len(chunks) == 0 {
		return nil, domain.Required("chunks")
	}
	pub, err := h.publisher(ctx, h.detectTag(strings.Join(chunks, " ")))
	if err != nil {
		return nil, err
	}
	return pub.Resume(ctx, refs, chunks)
}

func (h *Handler) publisher(ctx context.Context, lang string) (ThreadPublisher, error) {
	if h.publishers == nil {
		return nil, errors.New("publishing is not configured")
	}
	return h.publishers(ctx, lang)
}

func (h *Handler) detectTag(text string) string {
	if h.detector == nil {
		return ""
	}
	return h.detector.DetectTag(text)
}

// validateRequest checks the request is valid.
func validateRequest(req Request) error {
	switch req.Action {
	case "", ActionProcess:
		if strings.TrimSpace(req.TweetText) == "" {
			return domain.Required("tweet_text")
		}
	case ActionPublish:
		if strings.TrimSpace(req.Text) == "" && len(req.Chunks) == 0 {
			return &domain.ValidationError{Field: "text", Message: "or chunks is required"}
		}
		if len(req.Refs) > 0 && len(req.Chunks) == 0 {
			return &domain.ValidationError{Field: "chunks", Message: "are required to resume a thread"}
		}
		for i, c := range req.Chunks {
			if strings.TrimSpace(c) == "" {
				return &domain.ValidationError{Field: fmt.Sprintf("chunks[%d]", i), Message: "must not be empty"}
			}
		}
	case ActionBatch:
		if req.Tweets == nil {
			return domain.Required("tweets")
		}
	default:
		return &domain.ValidationError{Field: "action", Message: fmt.Sprintf("%q is not supported", req.Action)}
	}
	return nil
}
