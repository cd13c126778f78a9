package transcript

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// maxBatchVideos is the server-side cap on videos per batch request.
const maxBatchVideos = 100

// BatchResult is the outcome of submitting multiple videos at once:
// normalized transcripts for the items that succeeded, and the service's
// opaque failure records for the ones that didn't.
type BatchResult struct {
	BatchID   string           `json:"batch_id"`
	Status    string           `json:"status"`
	Completed []*Transcript    `json:"completed"`
	Failed    []map[string]any `json:"failed,omitempty"`
	Raw       map[string]any   `json:"raw,omitempty"`
}

// normalizeBatch iterates the list at "completed", falling back to "data"
// when absent. Every object-shaped entry is attempted as a Transcript;
// non-object entries are skipped, never fatal to the batch. Failure records
// pass through verbatim.
func normalizeBatch(raw map[string]any) (*BatchResult, error) {
	v, ok := raw["completed"]
	if !ok {
		v = raw["data"]
	}
	items, _ := asList(v)

	var completed []*Transcript
	for i, item := range items {
		m, ok := asObject(item)
		if !ok {
			continue
		}
		t, err := normalizeTranscript(m)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		completed = append(completed, t)
	}

	var failed []map[string]any
	if rawFailed, ok := asList(raw["failed"]); ok {
		for _, item := range rawFailed {
			if m, ok := asObject(item); ok {
				failed = append(failed, m)
			}
		}
	}

	return &BatchResult{
		BatchID:   stringField(raw, "batch_id"),
		Status:    stringFieldDefault(raw, "status", "completed"),
		Completed: completed,
		Failed:    failed,
		Raw:       raw,
	}, nil
}

// Batch extracts transcripts for up to 100 videos in one request. language
// is optional and applies to all videos.
func (c *Client) Batch(ctx context.Context, videoIDs []string, language string) (*BatchResult, error) {
	if len(videoIDs) > maxBatchVideos {
		return nil, fmt.Errorf("batch: maximum %d videos per request, got %d", maxBatchVideos, len(videoIDs))
	}

	incrBatchRequests()
	body := map[string]any{"video_ids": videoIDs}
	if language != "" {
		body["language"] = language
	}
	data, err := c.post(ctx, "/v2/batch", body)
	if err != nil {
		return nil, err
	}
	return normalizeBatch(data)
}

// GetBatch fetches the current state of a batch request.
func (c *Client) GetBatch(ctx context.Context, batchID string) (*BatchResult, error) {
	data, err := c.get(ctx, "/v2/batch/"+url.PathEscape(batchID), nil)
	if err != nil {
		return nil, err
	}
	return normalizeBatch(data)
}

// TranscribeEach fetches transcripts for many videos concurrently with at
// most limit requests in flight (limit <= 0 means unbounded). Results come
// back in input order. The first failure cancels the remaining work.
func (c *Client) TranscribeEach(ctx context.Context, videos []string, limit int, opts TranscribeOptions) ([]*Transcript, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]*Transcript, len(videos))
	for i, video := range videos {
		i, video := i, video
		g.Go(func() error {
			t, err := c.Transcribe(ctx, video, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", video, err)
			}
			results[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
