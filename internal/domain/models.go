// Package domain contains the core domain types for the thread builder.
package domain

// DefaultMaxLength is the post length limit of the target platform.
const DefaultMaxLength = 300

// ThreadDescriptor is the result of turning one text into postable chunks.
type ThreadDescriptor struct {
	OriginalText string   `json:"original_text"`
	Chunks       []string `json:"chunks"`
	ChunkCount   int      `json:"chunk_count"`
	Language     string   `json:"language,omitempty"`
}

// Media lists the media file names attached to a scraped post.
type Media struct {
	Photos   []string `json:"photos"`
	Videos   []string `json:"videos"`
	Animated []string `json:"animated"`
}

// TweetRecord is one scraped post as produced by the content scraper.
type TweetRecord struct {
	TweetID   string `json:"tweet_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Media     Media  `json:"media"`
}

// ProcessedRecord is a scraped post after chunking.
type ProcessedRecord struct {
	TweetID      string   `json:"tweet_id"`
	OriginalText string   `json:"original_text"`
	Chunks       []string `json:"chunks"`
	ChunkCount   int      `json:"chunk_count"`
	Timestamp    string   `json:"timestamp"`
	Media        Media    `json:"media"`
}

// PostReference identifies a created post on the remote service.
type PostReference struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// ReplyRef links a post into an existing thread.
type ReplyRef struct {
	Root   PostReference `json:"root"`
	Parent PostReference `json:"parent"`
}

// ThreadRefs holds one reference per posted chunk. Element 0 is the root.
type ThreadRefs []PostReference

// Root returns the root reference, or false for an empty thread.
func (t ThreadRefs) Root() (PostReference, bool) {
	if len(t) == 0 {
		return PostReference{}, false
	}
	return t[0], true
}

// ReplyTo returns the reply reference for the next post of the thread.
// It returns nil when the thread has no posts yet.
func (t ThreadRefs) ReplyTo() *ReplyRef {
	if len(t) == 0 {
		return nil
	}
	return &ReplyRef{Root: t[0], Parent: t[len(t)-1]}
}

// PublishResult is the outcome of publishing a thread.
type PublishResult struct {
	RunID  string     `json:"run_id"`
	Chunks []string   `json:"chunks"`
	Refs   ThreadRefs `json:"refs"`
}
