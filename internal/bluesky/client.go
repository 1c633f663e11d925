// Package bluesky talks to an AT Protocol PDS and publishes reply-chained threads.
package bluesky

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/threadkit/bsky-threader/internal/domain"
	"github.com/threadkit/bsky-threader/internal/logger"
)

const (
	// DefaultPDSURL is the public Bluesky PDS.
	DefaultPDSURL = "https://bsky.social"

	// PostCollection is the record collection for posts.
	PostCollection = "app.bsky.feed.post"

	opCreateSession = "com.atproto.server.createSession"
	opCreateRecord  = "com.atproto.repo.createRecord"
)

// Session is an authenticated PDS session. It is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	handle    string
	did       string
	accessJwt string
}

// NewSession creates a session from existing credentials.
func NewSession(handle, did, accessJwt string) *Session {
	return &Session{handle: handle, did: did, accessJwt: accessJwt}
}

// Handle returns the account handle.
func (s *Session) Handle() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}

// DID returns the account DID, used as the record repo.
func (s *Session) DID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.did
}

func (s *Session) accessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessJwt
}

// Post is a single post to create.
type Post struct {
	Text  string
	Reply *domain.ReplyRef
	Langs []string
}

type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type createSessionResponse struct {
	DID       string `json:"did"`
	Handle    string `json:"handle"`
	AccessJwt string `json:"accessJwt"`
}

type postRecord struct {
	Type      string           `json:"$type"`
	Text      string           `json:"text"`
	CreatedAt string           `json:"createdAt"`
	Langs     []string         `json:"langs,omitempty"`
	Reply     *domain.ReplyRef `json:"reply,omitempty"`
}

type createRecordRequest struct {
	Repo       string     `json:"repo"`
	Collection string     `json:"collection"`
	Record     postRecord `json:"record"`
}

// xrpcError is the error body returned by XRPC endpoints.
type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client is a minimal XRPC client for session and post creation.
type Client struct {
	http         *resty.Client
	loginRetries uint64
	retryBase    time.Duration
	now          func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds every HTTP call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithLoginRetries sets how often a failed session creation is retried.
// Post creation is never retried.
func WithLoginRetries(n int, base time.Duration) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.loginRetries = uint64(n)
		}
		if base > 0 {
			c.retryBase = base
		}
	}
}

// WithClock overrides the clock used for createdAt.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a client for the PDS at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultPDSURL
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30*time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetLogger(logger.Get()),
		loginRetries: 3,
		retryBase:    500 * time.Millisecond,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login creates a session. Transient failures are retried with backoff
// since session creation has no side effects.
func (c *Client) Login(ctx context.Context, handle, password string) (*Session, error) {
	if handle == "" || password == "" {
		return nil, &domain.AuthError{Handle: handle, Err: errors.New("handle and password are required")}
	}

	var out createSessionResponse
	backoff := retry.WithMaxRetries(c.loginRetries, retry.NewExponential(c.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.post(ctx, opCreateSession, "", createSessionRequest{
			Identifier: handle,
			Password:   password,
		}, &out)
		if isTransient(err) {
			logger.Debug("session creation failed, retrying", "handle", handle, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, &domain.AuthError{Handle: handle, Err: err}
	}
	if out.DID == "" || out.AccessJwt == "" {
		return nil, &domain.AuthError{Handle: handle, Err: errors.New("session response is missing did or accessJwt")}
	}

	if out.Handle == "" {
		out.Handle = handle
	}
	return NewSession(out.Handle, out.DID, out.AccessJwt), nil
}

// CreatePost creates one post record and returns its reference.
// The call is not idempotent and is never retried.
func (c *Client) CreatePost(ctx context.Context, s *Session, p Post) (domain.PostReference, error) {
	req := createRecordRequest{
		Repo:       s.DID(),
		Collection: PostCollection,
		Record: postRecord{
			Type:      PostCollection,
			Text:      p.Text,
			CreatedAt: c.now().UTC().Format(time.RFC3339),
			Langs:     p.Langs,
			Reply:     p.Reply,
		},
	}

	var ref domain.PostReference
	if err := c.post(ctx, opCreateRecord, s.accessToken(), req, &ref); err != nil {
		return domain.PostReference{}, err
	}
	if ref.URI == "" || ref.CID == "" {
		return domain.PostReference{}, &domain.RemoteError{
			Op:         opCreateRecord,
			StatusCode: http.StatusOK,
			Code:       "InvalidResponse",
			Message:    "response is missing uri or cid",
		}
	}
	return ref, nil
}

func (c *Client) post(ctx context.Context, op, token string, body, result any) error {
	var apiErr xrpcError
	req := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(body).
		SetResult(result).
		SetError(&apiErr)
	if token != "" {
		req.SetAuthToken(token)
	}

	resp, err := req.Post("/xrpc/" + op)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}

	code := resp.StatusCode()
	if code < 200 || code > 299 {
		return &domain.RemoteError{
			Op:         op,
			StatusCode: code,
			Code:       apiErr.Error,
			Message:    apiErr.Message,
		}
	}

	logger.Debug("xrpc call completed", "op", op, "status", code)
	return nil
}

// isTransient reports whether a failed call may succeed when repeated.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var network *domain.NetworkError
	if errors.As(err, &network) {
		return !errors.Is(err, context.Canceled)
	}
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode >= 500 || remote.StatusCode == http.StatusTooManyRequests
	}
	return false
}
