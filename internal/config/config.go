// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/threadkit/bsky-threader/internal/langdetect"
)

// Splitter names accepted by PUBLISH_SPLITTER.
const (
	SplitterSentences = "sentences"
	SplitterWords     = "words"
)

// Config holds all configuration for the thread builder.
type Config struct {
	// Bluesky settings
	Handle       string
	Password     string
	PDSURL       string
	Timeout      time.Duration
	LoginRetries int
	PostInterval time.Duration

	// Chunking settings
	MaxLength       int
	DefaultLanguage string
	Splitter        string
	ReserveMarker   bool

	// Batch files
	TweetsInput  string
	TweetsOutput string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadDotEnv loads a .env file when one exists. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load reads configuration from environment variables. A variable that is
// set but cannot be parsed is an error, not a fallback to the default.
func Load() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Handle:          os.Getenv("BLUESKY_USERNAME"),
		Password:        os.Getenv("BLUESKY_PASSWORD"),
		PDSURL:          strings.TrimRight(getEnv("BLUESKY_PDS_URL", "https://bsky.social"), "/"),
		Timeout:         env.duration("BLUESKY_TIMEOUT", 30*time.Second),
		LoginRetries:    env.int("BLUESKY_LOGIN_RETRIES", 3),
		PostInterval:    env.duration("BLUESKY_POST_INTERVAL", 0),
		MaxLength:       env.int("THREAD_MAX_LENGTH", 300),
		DefaultLanguage: getEnv("THREAD_DEFAULT_LANGUAGE", langdetect.DefaultLanguage),
		Splitter:        getEnv("PUBLISH_SPLITTER", SplitterSentences),
		ReserveMarker:   env.bool("THREAD_RESERVE_MARKER", false),
		TweetsInput:     getEnv("TWEETS_INPUT", "tweets.json"),
		TweetsOutput:    getEnv("TWEETS_OUTPUT", "processed_tweets.json"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges. It reports the first invalid setting.
func (c *Config) Validate() error {
	if c.MaxLength <= 0 {
		return fmt.Errorf("THREAD_MAX_LENGTH must be positive, got %d", c.MaxLength)
	}
	if !langdetect.IsSupported(c.DefaultLanguage) {
		return fmt.Errorf("THREAD_DEFAULT_LANGUAGE must be one of %v, got %q",
			langdetect.SupportedLanguages(), c.DefaultLanguage)
	}
	if c.Splitter != SplitterSentences && c.Splitter != SplitterWords {
		return fmt.Errorf("PUBLISH_SPLITTER must be %q or %q, got %q",
			SplitterSentences, SplitterWords, c.Splitter)
	}
	if c.LoginRetries < 0 || c.LoginRetries > 10 {
		return fmt.Errorf("BLUESKY_LOGIN_RETRIES must be 0-10, got %d", c.LoginRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("BLUESKY_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.PostInterval < 0 {
		return fmt.Errorf("BLUESKY_POST_INTERVAL must not be negative, got %s", c.PostInterval)
	}
	return nil
}

// RequireCredentials checks that publishing credentials are set.
func (c *Config) RequireCredentials() error {
	if c.Handle == "" || c.Password == "" {
		return fmt.Errorf("BLUESKY_USERNAME and BLUESKY_PASSWORD are required for publishing")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envReader parses typed variables and collects every malformed value.
type envReader struct {
	errs []error
}

func (r *envReader) bool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be true or false, got %q", key, v))
		return defaultVal
	}
	return b
}

func (r *envReader) int(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be an integer, got %q", key, v))
		return defaultVal
	}
	return i
}

func (r *envReader) duration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a duration such as 30s, got %q", key, v))
		return defaultVal
	}
	return d
}
