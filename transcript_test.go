package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTranscriptNestedShape(t *testing.T) {
	raw := map[string]any{
		"status":     "completed",
		"request_id": "abc",
		"data": map[string]any{
			"video_id": "dQw4w9WgXcQ",
			"language": "en",
			"transcript": map[string]any{
				"text": "Hello world",
				"segments": []any{
					map[string]any{"text": "Hello", "start": 0, "end": 1000},
					map[string]any{"text": "world", "start": 1000, "end": 2000},
				},
			},
		},
	}

	tr, err := normalizeTranscript(raw)
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", tr.VideoID)
	assert.Equal(t, "en", tr.Language)
	assert.Equal(t, "completed", tr.Status)
	assert.Equal(t, "abc", tr.RequestID)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, "Hello", tr.Segments[0].Text)
	assert.Equal(t, "Hello world", tr.Text)
}

func TestNormalizeTranscriptFlatSegments(t *testing.T) {
	raw := map[string]any{
		"data": map[string]any{
			"video_id": "test123",
			"segments": []any{
				map[string]any{"text": "one", "start": 0, "end": 1},
			},
		},
	}

	tr, err := normalizeTranscript(raw)
	require.NoError(t, err)
	assert.Equal(t, "test123", tr.VideoID)
	require.Len(t, tr.Segments, 1)
	assert.Equal(t, "one", tr.Segments[0].Text)
}

func TestNormalizeTranscriptListAsTranscript(t *testing.T) {
	raw := map[string]any{
		"data": map[string]any{
			"video_id": "v",
			"transcript": []any{
				map[string]any{"text": "a", "start": 0, "end": 1},
				map[string]any{"text": "b", "start": 1, "end": 2},
			},
		},
	}

	tr, err := normalizeTranscript(raw)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, "a b", tr.Text, "full text derived from list-shaped transcript")
}

func TestNormalizeTranscriptNoData(t *testing.T) {
	// No "data" wrapper at all — the payload itself is the working object.
	raw := map[string]any{
		"video_id": "outer",
		"language": "de",
		"segments": []any{
			map[string]any{"text": "hallo", "start": 0, "duration": 2},
		},
	}

	tr, err := normalizeTranscript(raw)
	require.NoError(t, err)
	assert.Equal(t, "outer", tr.VideoID)
	assert.Equal(t, "de", tr.Language)
	require.Len(t, tr.Segments, 1)
	assert.Equal(t, 2.0, tr.Segments[0].End)
}

func TestNormalizeTranscriptEmptyPayload(t *testing.T) {
	tr, err := normalizeTranscript(map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, tr.VideoID)
	assert.Empty(t, tr.Segments)
	assert.Empty(t, tr.Text)
	assert.Equal(t, "completed", tr.Status, "status defaults to completed when absent")
}

func TestNormalizeTranscriptScalarTranscript(t *testing.T) {
	// transcript present but scalar: no segments from that path, fallback
	// finds segments on the working object.
	raw := map[string]any{
		"data": map[string]any{
			"video_id":   "v",
			"transcript": "not an object",
			"segments": []any{
				map[string]any{"text": "x", "start": 0, "end": 1},
			},
		},
	}

	tr, err := normalizeTranscript(raw)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)
}

func TestNormalizeTranscriptSkipsNonObjectSegments(t *testing.T) {
	raw := map[string]any{
		"segments": []any{
			map[string]any{"text": "keep", "start": 0, "end": 1},
			"garbage",
			42,
		},
	}

	tr, err := normalizeTranscript(raw)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)
	assert.Equal(t, "keep", tr.Segments[0].Text)
}

func TestNormalizeTranscriptSchemaDrift(t *testing.T) {
	raw := map[string]any{
		"segments": []any{
			map[string]any{"text": "bad", "start": "zero"},
		},
	}

	_, err := normalizeTranscript(raw)
	require.Error(t, err, "wrong-typed numeric field must surface, not coerce to 0")
}

func TestNormalizeTranscriptRetainsRaw(t *testing.T) {
	raw := map[string]any{"video_id": "v", "extra": "diagnostic"}
	tr, err := normalizeTranscript(raw)
	require.NoError(t, err)
	assert.Equal(t, "diagnostic", tr.Raw["extra"])
}

func TestTranscriptDuration(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		want     float64
	}{
		{"empty", nil, 0},
		{"last end", []Segment{{Start: 0, End: 1}, {Start: 5, End: 10}}, 10},
		{"last end unset", []Segment{{Start: 5, Duration: 3}}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Transcript{Segments: tt.segments}
			if got := tr.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranscriptWordCount(t *testing.T) {
	tr := &Transcript{Text: "one two three four"}
	assert.Equal(t, 4, tr.WordCount())
	assert.Equal(t, 0, (&Transcript{}).WordCount())
}
