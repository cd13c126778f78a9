package transcript

import (
	"fmt"
	"strings"
)

// Transcript is the normalized transcript for one video: ordered segments
// plus the full text (server-supplied or derived). Raw retains the original
// payload for diagnostics and is not otherwise consumed.
type Transcript struct {
	VideoID   string         `json:"video_id"`
	Segments  []Segment      `json:"segments"`
	Text      string         `json:"text"`
	Language  string         `json:"language"`
	Status    string         `json:"status"`
	RequestID string         `json:"request_id"`
	Raw       map[string]any `json:"raw,omitempty"`
}

// normalizeTranscript collapses the payload shapes the service has produced
// over time into one Transcript. The shape probes run in order with
// fallbacks:
//
//  1. descend into "data" when present, else work on the payload itself
//  2. a "transcript" field is the transcript object; absent means the
//     working object itself is
//  3. object transcript → segments from "segments", text from "text"
//  4. list transcript → the list is the raw segment list
//  5. anything else → nothing from this path
//  6. still no segments → "segments" directly on the working object
//
// Missing fields degrade to empty defaults — a usably-empty Transcript beats
// a hard failure. The one exception is wrong-typed numeric segment fields,
// which surface as an error (schema drift upstream).
func normalizeTranscript(raw map[string]any) (*Transcript, error) {
	inner := raw
	if d, ok := asObject(raw["data"]); ok {
		inner = d
	}

	tobj, ok := inner["transcript"]
	if !ok {
		tobj = inner
	}

	var rawSegments []any
	fullText := ""
	switch v := tobj.(type) {
	case map[string]any:
		rawSegments, _ = asList(v["segments"])
		fullText = stringField(v, "text")
	case []any:
		rawSegments = v
	}
	if len(rawSegments) == 0 {
		rawSegments, _ = asList(inner["segments"])
	}

	segments := make([]Segment, 0, len(rawSegments))
	for i, rs := range rawSegments {
		m, ok := asObject(rs)
		if !ok {
			continue
		}
		seg, err := newSegment(m)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments = append(segments, seg)
	}

	if fullText == "" && len(segments) > 0 {
		texts := make([]string, len(segments))
		for i, s := range segments {
			texts[i] = s.Text
		}
		fullText = strings.Join(texts, " ")
	}

	videoID := stringField(inner, "video_id")
	if videoID == "" {
		videoID = stringField(raw, "video_id")
	}
	language := stringField(inner, "language")
	if language == "" {
		language = stringField(raw, "language")
	}

	return &Transcript{
		VideoID:   videoID,
		Segments:  segments,
		Text:      fullText,
		Language:  language,
		Status:    stringFieldDefault(raw, "status", "completed"),
		RequestID: stringField(raw, "request_id"),
		Raw:       raw,
	}, nil
}

// Duration is the total duration in seconds, taken from the last segment:
// its End when set, else Start + Duration. 0 for an empty transcript.
func (t *Transcript) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	last := t.Segments[len(t.Segments)-1]
	if last.End > 0 {
		return last.End
	}
	return last.Start + last.Duration
}

// WordCount counts whitespace-separated words in the full text.
func (t *Transcript) WordCount() int {
	return len(strings.Fields(t.Text))
}
