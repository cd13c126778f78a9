package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// JobStatus is the lifecycle state of an asynchronous ASR transcription job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobUnknown    JobStatus = "unknown"
)

// parseJobStatus maps a raw status string to a JobStatus; anything not
// recognized is JobUnknown.
func parseJobStatus(s string) JobStatus {
	switch JobStatus(s) {
	case JobQueued, JobProcessing, JobCompleted, JobFailed:
		return JobStatus(s)
	}
	return JobUnknown
}

// Job is one snapshot of an ASR transcription job. Transcript is non-nil
// only when Status is JobCompleted and the payload carried a parseable
// transcript body. Each poll produces a fresh Job value; nothing mutates a
// Job in place.
type Job struct {
	JobID      string         `json:"job_id"`
	Status     JobStatus      `json:"status"`
	VideoID    string         `json:"video_id"`
	Transcript *Transcript    `json:"transcript,omitempty"`
	Raw        map[string]any `json:"raw,omitempty"`
}

// Completed reports whether the job reached its success terminal state.
func (j *Job) Completed() bool { return j.Status == JobCompleted }

// Processing reports whether the job is still in flight.
func (j *Job) Processing() bool { return j.Status == JobProcessing || j.Status == JobQueued }

// Failed reports whether the job reached its failure terminal state.
func (j *Job) Failed() bool { return j.Status == JobFailed }

// normalizeJob builds a Job from a raw payload. The job id falls back to
// request_id; the video id falls back into the nested data object. A
// completed payload is run through the transcript normalizer; an empty
// result leaves Transcript nil so callers can surface the anomaly.
func normalizeJob(raw map[string]any) (*Job, error) {
	status := parseJobStatus(stringFieldDefault(raw, "status", "unknown"))

	var tr *Transcript
	if status == JobCompleted {
		t, err := normalizeTranscript(raw)
		if err != nil {
			return nil, fmt.Errorf("completed job transcript: %w", err)
		}
		if len(t.Segments) > 0 || t.Text != "" {
			tr = t
		}
	}

	jobID := stringField(raw, "job_id")
	if jobID == "" {
		jobID = stringField(raw, "request_id")
	}
	videoID := stringField(raw, "video_id")
	if videoID == "" {
		if data, ok := asObject(raw["data"]); ok {
			videoID = stringField(data, "video_id")
		}
	}

	return &Job{
		JobID:      jobID,
		Status:     status,
		VideoID:    videoID,
		Transcript: tr,
		Raw:        raw,
	}, nil
}

// JobFailedError is returned by WaitForJob when the job reaches the failed
// state, or completes without yielding a transcript.
type JobFailedError struct {
	JobID  string
	Reason string
}

func (e *JobFailedError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "unknown"
	}
	return fmt.Sprintf("job %s failed: %s", e.JobID, reason)
}

// WaitTimeoutError is returned by WaitForJob when no terminal status was
// observed within the configured timeout.
type WaitTimeoutError struct {
	JobID   string
	Timeout time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for job %s after %s", e.JobID, e.Timeout)
}

// WaitOptions control WaitForJob polling. Zero values pick the defaults:
// poll every 10 seconds, give up after 20 minutes.
type WaitOptions struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

const (
	defaultPollInterval = 10 * time.Second
	defaultWaitTimeout  = 20 * time.Minute
)

// GetJob fetches the current state of an ASR transcription job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	incrJobFetches()
	params := url.Values{
		"include_segments":   {"true"},
		"include_paragraphs": {"true"},
		"include_words":      {"true"},
	}
	data, err := c.get(ctx, "/v2/jobs/"+url.PathEscape(jobID), params)
	if err != nil {
		return nil, err
	}
	return normalizeJob(data)
}

// WaitForJob polls a job until it completes and returns its transcript.
// A failed job returns a JobFailedError; exceeding the timeout returns a
// WaitTimeoutError. A job that reports completed without a parseable
// transcript also fails hard — the alternative is polling forever.
//
// Between polls the wait is context-aware, so many jobs can be awaited
// concurrently from separate goroutines and all of them honor cancellation.
func (c *Client) WaitForJob(ctx context.Context, jobID string, opts WaitOptions) (*Transcript, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}

	incrJobWaits()
	start := time.Now()
	for {
		job, err := c.GetJob(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch {
		case job.Status == JobCompleted && job.Transcript != nil:
			return job.Transcript, nil
		case job.Status == JobCompleted:
			return nil, &JobFailedError{JobID: jobID, Reason: "completed without transcript"}
		case job.Status == JobFailed:
			return nil, &JobFailedError{JobID: jobID, Reason: stringField(job.Raw, "error")}
		}

		if time.Since(start) > timeout {
			return nil, &WaitTimeoutError{JobID: jobID, Timeout: timeout}
		}

		slog.Debug("job not ready",
			slog.String("job_id", jobID),
			slog.String("status", string(job.Status)),
			slog.Duration("elapsed", time.Since(start)))
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
