package transcript

import (
	"context"
	"net/url"
	"strconv"
)

// AccountStats is a snapshot of account usage and credits. Fields missing
// from the payload default to zero/empty.
type AccountStats struct {
	CreditsRemaining   int            `json:"credits_remaining"`
	CreditsUsed        int            `json:"credits_used"`
	TranscriptsCreated int            `json:"transcripts_created"`
	Plan               string         `json:"plan"`
	Raw                map[string]any `json:"raw,omitempty"`
}

func normalizeStats(raw map[string]any) *AccountStats {
	var remaining int
	if _, ok := raw["credits_remaining"]; ok {
		remaining = intField(raw, "credits_remaining")
	} else {
		// older payloads used credits_left
		remaining = intField(raw, "credits_left")
	}
	return &AccountStats{
		CreditsRemaining:   remaining,
		CreditsUsed:        intField(raw, "credits_used"),
		TranscriptsCreated: intField(raw, "transcripts_created"),
		Plan:               stringField(raw, "plan"),
		Raw:                raw,
	}
}

// Stats fetches account usage: credits remaining, plan, totals.
func (c *Client) Stats(ctx context.Context) (*AccountStats, error) {
	incrStatsRequests()
	data, err := c.get(ctx, "/v1/stats", nil)
	if err != nil {
		return nil, err
	}
	return normalizeStats(data), nil
}

// HistoryQuery filters ListTranscripts. Zero values are omitted; Limit
// defaults to 10 and Page to 1.
type HistoryQuery struct {
	Search   string
	Language string
	Status   string // all, queued, processing, succeeded, failed
	Limit    int
	Page     int
}

// ListTranscripts lists previously extracted transcripts. The result is the
// raw payload — its shape is controlled by the service and paginated, so it
// passes through undecoded.
func (c *Client) ListTranscripts(ctx context.Context, q HistoryQuery) (map[string]any, error) {
	incrHistoryRequests()
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	params := url.Values{
		"limit": {strconv.Itoa(limit)},
		"page":  {strconv.Itoa(page)},
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	return c.get(ctx, "/v1/history", params)
}

// TranscriptQuery filters GetTranscript. Timestamps are included unless
// WithoutTimestamps is set.
type TranscriptQuery struct {
	Language          string
	Source            string // auto, manual, asr
	WithoutTimestamps bool
}

// GetTranscript fetches a previously extracted transcript by video id.
func (c *Client) GetTranscript(ctx context.Context, videoID string, q TranscriptQuery) (*Transcript, error) {
	incrHistoryRequests()
	key := cacheKey("get", videoID, q.Language, q.Source, strconv.FormatBool(q.WithoutTimestamps))
	if t, ok := c.cache.get(ctx, key); ok {
		return t, nil
	}

	params := url.Values{
		"include_timestamps": {strconv.FormatBool(!q.WithoutTimestamps)},
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	if q.Source != "" {
		params.Set("source", q.Source)
	}

	data, err := c.get(ctx, "/v1/transcripts/"+url.PathEscape(videoID), params)
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

// DeleteTranscripts deletes stored transcripts, either everything for a
// video id or specific record ids. The raw response passes through.
func (c *Client) DeleteTranscripts(ctx context.Context, videoID string, ids []string) (map[string]any, error) {
	incrDeleteRequests()
	body := map[string]any{}
	if videoID != "" {
		body["video_id"] = videoID
	}
	if len(ids) > 0 {
		body["ids"] = ids
	}
	return c.post(ctx, "/v1/transcripts/bulk-delete", body)
}
