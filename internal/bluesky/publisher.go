package bluesky

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/threadkit/bsky-threader/internal/chunker"
	"github.com/threadkit/bsky-threader/internal/domain"
	"github.com/threadkit/bsky-threader/internal/logger"
)

// Poster creates a single post.
type Poster interface {
	CreatePost(ctx context.Context, s *Session, p Post) (domain.PostReference, error)
}

// SplitFunc turns text into the chunks to post, in order.
type SplitFunc func(text string) []string

// Publisher posts chunks as a reply chain: every post replies to the
// previous one and references the first post as root.
//
// Posts of one thread are strictly sequential. A failure stops the thread and
// leaves already created posts in place; nothing is rolled back.
type Publisher struct {
	poster  Poster
	session *Session
	split   SplitFunc
	limiter *rate.Limiter
	langs   []string
	maxLen  int
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPostInterval spaces consecutive posts by at least d.
func WithPostInterval(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithLangs tags every post with the given languages.
func WithLangs(langs ...string) PublisherOption {
	return func(p *Publisher) {
		p.langs = langs
	}
}

// WithMaxLength rejects threads with a chunk longer than n before anything
// is posted.
func WithMaxLength(n int) PublisherOption {
	return func(p *Publisher) {
		p.maxLen = n
	}
}

// NewPublisher creates a Publisher posting as session.
func NewPublisher(poster Poster, session *Session, split SplitFunc, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		poster:  poster,
		session: session,
		split:   split,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish splits text and posts it as a thread.
//
// If posting stops after at least one post was created the error is a
// *domain.PartialThreadError holding the created references. Publishing the
// same text again creates duplicate posts; use Resume to continue instead.
func (p *Publisher) Publish(ctx context.Context, text string) (*domain.PublishResult, error) {
	if text == "" {
		return nil, domain.Required("text")
	}
	return p.PublishChunks(ctx, p.split(text))
}

// PublishChunks posts already split chunks as a new thread.
func (p *Publisher) PublishChunks(ctx context.Context, chunks []string) (*domain.PublishResult, error) {
	return p.Resume(ctx, nil, chunks)
}

// Resume continues a partially published thread. refs are the posts created
// so far for chunks; posting restarts at chunks[len(refs)].
func (p *Publisher) Resume(ctx context.Context, refs domain.ThreadRefs, chunks []string) (*domain.PublishResult, error) {
	if len(chunks) == 0 {
		return nil, &domain.ProcessingError{Message: "could not split text into chunks"}
	}
	if len(refs) > len(chunks) {
		return nil, &domain.ValidationError{Field: "refs", Message: "has more entries than chunks"}
	}
	if err := p.checkLengths(chunks[len(refs):], len(refs)); err != nil {
		return nil, err
	}

	result := &domain.PublishResult{
		RunID:  uuid.NewString(),
		Chunks: chunks,
		Refs:   make(domain.ThreadRefs, len(refs), len(chunks)),
	}
	copy(result.Refs, refs)

	log := logger.With("run_id", result.RunID, "handle", p.session.Handle())
	log.Info("publishing thread", "posts", len(chunks), "resume_at", len(refs))

	for i := len(refs); i < len(chunks); i++ {
		ref, err := p.postOne(ctx, chunks[i], result.Refs.ReplyTo())
		if err != nil {
			log.Error("thread stopped", "post", i+1, "of", len(chunks), "error", err)
			return result, p.failure(result, len(chunks), err)
		}
		result.Refs = append(result.Refs, ref)
		log.Debug("post created", "post", i+1, "uri", ref.URI)
	}

	log.Info("thread published", "posts", len(result.Refs))
	return result, nil
}

func (p *Publisher) checkLengths(chunks []string, offset int) error {
	if p.maxLen <= 0 {
		return nil
	}
	for i, c := range chunks {
		if n := chunker.Len(c); n > p.maxLen {
			return &domain.ValidationError{
				Field:   fmt.Sprintf("chunks[%d]", offset+i),
				Message: fmt.Sprintf("is %d characters long, limit is %d", n, p.maxLen),
			}
		}
	}
	return nil
}

func (p *Publisher) postOne(ctx context.Context, text string, reply *domain.ReplyRef) (domain.PostReference, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return domain.PostReference{}, &domain.NetworkError{Op: opCreateRecord, Err: err}
		}
	}
	return p.poster.CreatePost(ctx, p.session, Post{
		Text:  text,
		Reply: reply,
		Langs: p.langs,
	})
}

func (p *Publisher) failure(result *domain.PublishResult, total int, err error) error {
	if len(result.Refs) == 0 {
		return err
	}
	refs := make(domain.ThreadRefs, len(result.Refs))
	copy(refs, result.Refs)
	return &domain.PartialThreadError{Refs: refs, Total: total, Err: err}
}

// PartialRefs returns the references created before err, if err reports a
// partially published thread.
func PartialRefs(err error) (domain.ThreadRefs, bool) {
	var partial *domain.PartialThreadError
	if errors.As(err, &partial) {
		return partial.Refs, true
	}
	return nil, false
}
