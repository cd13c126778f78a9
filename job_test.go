package transcript

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		in   string
		want JobStatus
	}{
		{"queued", JobQueued},
		{"processing", JobProcessing},
		{"completed", JobCompleted},
		{"failed", JobFailed},
		{"", JobUnknown},
		{"sharded", JobUnknown},
	}
	for _, tt := range tests {
		if got := parseJobStatus(tt.in); got != tt.want {
			t.Errorf("parseJobStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeJobProcessing(t *testing.T) {
	job, err := normalizeJob(map[string]any{
		"job_id":   "j123",
		"status":   "processing",
		"video_id": "vid1",
	})
	require.NoError(t, err)
	assert.Equal(t, "j123", job.JobID)
	assert.True(t, job.Processing())
	assert.False(t, job.Completed())
	assert.Nil(t, job.Transcript)
}

func TestNormalizeJobCompleted(t *testing.T) {
	job, err := normalizeJob(map[string]any{
		"job_id": "j123",
		"status": "completed",
		"data": map[string]any{
			"video_id": "vid1",
			"transcript": map[string]any{
				"segments": []any{map[string]any{"text": "hi", "start": 0, "end": 1}},
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, job.Completed())
	require.NotNil(t, job.Transcript)
	assert.Len(t, job.Transcript.Segments, 1)
	assert.Equal(t, "vid1", job.VideoID, "video id falls back into data")
}

func TestNormalizeJobIDFallsBackToRequestID(t *testing.T) {
	job, err := normalizeJob(map[string]any{"request_id": "r9", "status": "queued"})
	require.NoError(t, err)
	assert.Equal(t, "r9", job.JobID)
}

func TestNormalizeJobCompletedWithoutTranscript(t *testing.T) {
	job, err := normalizeJob(map[string]any{"job_id": "j1", "status": "completed"})
	require.NoError(t, err)
	assert.True(t, job.Completed())
	assert.Nil(t, job.Transcript, "empty completed payload must not fabricate a transcript")
}

// jobSequence serves a fixed sequence of job payloads, repeating the last.
func jobSequence(payloads ...map[string]any) (http.Handler, *atomic.Int32) {
	var calls atomic.Int32
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(payloads) {
			n = len(payloads) - 1
		}
		writeJSON(w, 200, payloads[n])
	}), &calls
}

var fastWait = WaitOptions{PollInterval: 10 * time.Millisecond, Timeout: time.Second}

func TestWaitForJobCompletes(t *testing.T) {
	handler, calls := jobSequence(
		map[string]any{"job_id": "j1", "status": "processing"},
		map[string]any{
			"job_id": "j1",
			"status": "completed",
			"data": map[string]any{
				"video_id": "v",
				"transcript": map[string]any{
					"segments": []any{map[string]any{"text": "done", "start": 0, "end": 1}},
				},
			},
		},
	)
	c := testClient(t, handler)

	start := time.Now()
	tr, err := c.WaitForJob(context.Background(), "j1", fastWait)
	require.NoError(t, err)
	assert.Equal(t, "done", tr.Segments[0].Text)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond, "at least one poll interval must elapse")
}

func TestWaitForJobFailed(t *testing.T) {
	handler, _ := jobSequence(map[string]any{
		"job_id": "j2",
		"status": "failed",
		"error":  "audio too long",
	})
	c := testClient(t, handler)

	_, err := c.WaitForJob(context.Background(), "j2", fastWait)
	var jobErr *JobFailedError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "j2", jobErr.JobID)
	assert.Contains(t, jobErr.Error(), "audio too long")
}

func TestWaitForJobTimeout(t *testing.T) {
	handler, _ := jobSequence(map[string]any{"job_id": "j3", "status": "processing"})
	c := testClient(t, handler)

	_, err := c.WaitForJob(context.Background(), "j3", WaitOptions{
		PollInterval: 5 * time.Millisecond,
		Timeout:      20 * time.Millisecond,
	})
	var timeoutErr *WaitTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "j3", timeoutErr.JobID)
}

func TestWaitForJobCompletedWithoutTranscriptFailsHard(t *testing.T) {
	// A completed job with no parseable transcript must fail, not poll forever.
	handler, calls := jobSequence(map[string]any{"job_id": "j4", "status": "completed"})
	c := testClient(t, handler)

	_, err := c.WaitForJob(context.Background(), "j4", fastWait)
	var jobErr *JobFailedError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWaitForJobContextCancel(t *testing.T) {
	handler, _ := jobSequence(map[string]any{"job_id": "j5", "status": "queued"})
	c := testClient(t, handler)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()

	_, err := c.WaitForJob(ctx, "j5", WaitOptions{PollInterval: time.Minute, Timeout: time.Hour})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
