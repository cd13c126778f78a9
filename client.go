// Package transcript is a Go client for the youtubetranscript.dev API:
// transcript extraction from captions or asynchronous ASR jobs, batch
// extraction, job polling, history and account-usage queries, plus export
// and search over normalized transcripts.
//
// The service's payload shapes vary by endpoint and have changed over time,
// so every response goes through one tolerant normalizer instead of
// per-endpoint schemas — see normalizeTranscript.
//
// Usage:
//
//	c, err := transcript.NewClient(os.Getenv("YTT_API_KEY"))
//	t, err := c.Transcribe(ctx, "dQw4w9WgXcQ", transcript.TranscribeOptions{})
//	fmt.Println(t.ToSRT())
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://youtubetranscript.dev/api"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "go-transcript/0.1.0"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 16 * 1024 * 1024
)

// Client talks to the youtubetranscript.dev API. It is safe for concurrent
// use: no state is shared between calls beyond the underlying connection
// pool, so many Transcribe/WaitForJob calls can run from separate
// goroutines.
type Client struct {
	apiKey    string
	baseURL   string
	userAgent string
	hc        *http.Client
	timeout   time.Duration
	retry     RetryConfig
	limiter   *rate.Limiter
	cache     *Cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, e.g. for a staging environment.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient supplies a custom *http.Client (proxy, transport tuning).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
// Ignored when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetryConfig overrides transient-failure retry behavior.
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

// WithRateLimit throttles outgoing requests client-side to rps requests per
// second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithCache attaches a transcript cache consulted by Transcribe and
// GetTranscript. Transcript fetches cost credits; identical requests within
// the cache TTL are served locally.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient builds a Client for the given API key. Get a key at
// https://youtubetranscript.dev/dashboard.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if len(key) < 8 {
		return nil, errors.New("invalid API key (get yours at https://youtubetranscript.dev/dashboard)")
	}

	c := &Client{
		apiKey:    key,
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
		retry:     DefaultRetryConfig,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// TranscribeOptions tune a Transcribe call. All fields are optional.
type TranscribeOptions struct {
	Language string          // ISO 639-1 target language; empty = original
	Source   string          // auto (default), manual, or asr
	Format   map[string]bool // e.g. {"timestamp": true, "paragraphs": true}
}

// Transcribe extracts the transcript for a video (URL or 11-character id)
// from existing captions.
func (c *Client) Transcribe(ctx context.Context, video string, opts TranscribeOptions) (*Transcript, error) {
	incrTranscribeRequests()
	key := cacheKey("transcribe", video, opts.Language, opts.Source, formatKey(opts.Format))
	if t, ok := c.cache.get(ctx, key); ok {
		return t, nil
	}

	body := map[string]any{"video": video}
	if opts.Language != "" {
		body["language"] = opts.Language
	}
	if opts.Source != "" {
		body["source"] = opts.Source
	}
	if len(opts.Format) > 0 {
		body["format"] = opts.Format
	}

	data, err := c.post(ctx, "/v2/transcribe", body)
	if err != nil {
		return nil, err
	}
	t, err := normalizeTranscript(data)
	if err != nil {
		return nil, err
	}
	c.cache.put(ctx, key, t)
	return t, nil
}

// ASROptions tune a TranscribeASR call.
type ASROptions struct {
	Language   string
	WebhookURL string // receives the result when the job finishes
}

// TranscribeASR submits an asynchronous speech-recognition job for a video
// and returns it immediately; poll with GetJob or block with WaitForJob.
// Costs 1 credit per 90 seconds of audio.
func (c *Client) TranscribeASR(ctx context.Context, video string, opts ASROptions) (*Job, error) {
	incrASRRequests()
	body := map[string]any{
		"video":  video,
		"source": "asr",
		"format": map[string]bool{"timestamp": true, "paragraphs": true, "words": true},
	}
	if opts.Language != "" {
		body["language"] = opts.Language
	}
	if opts.WebhookURL != "" {
		body["webhook_url"] = opts.WebhookURL
	}

	data, err := c.post(ctx, "/v2/transcribe", body)
	if err != nil {
		return nil, err
	}
	return normalizeJob(data)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	return c.request(ctx, http.MethodGet, path, nil, params)
}

func (c *Client) post(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	return c.request(ctx, http.MethodPost, path, body, nil)
}

// request performs one API call: auth headers, client-side rate limiting,
// retry with exponential backoff on transient failures, and classification
// of terminal non-2xx responses into typed errors. A 202 body passes
// through like any other success — it is an accepted-but-pending async
// operation, not an error.
func (c *Client) request(ctx context.Context, method, path string, body map[string]any, params url.Values) (map[string]any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	return retryDo(ctx, c.retry, func() (map[string]any, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", uuid.NewString())

		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				// Non-JSON error page from a proxy or load balancer.
				return nil, classify(resp.StatusCode, map[string]any{
					"message": fmt.Sprintf("server returned %d: %s", resp.StatusCode, truncate(string(raw), 200)),
				})
			}
			return nil, fmt.Errorf("invalid JSON in response: %w", err)
		}

		if err := classify(resp.StatusCode, data); err != nil {
			return nil, err
		}
		return data, nil
	})
}

// formatKey renders format options deterministically for cache keys.
func formatKey(format map[string]bool) string {
	if len(format) == 0 {
		return ""
	}
	keys := make([]string, 0, len(format))
	for k, v := range format {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// truncate returns the first n bytes of s.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
