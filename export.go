package transcript

import (
	"fmt"
	"strings"
)

// Export and query operations over a normalized Transcript. All of these are
// pure — they read the segment list and nothing else.

// ToPlainText joins segment texts with single spaces.
func (t *Transcript) ToPlainText() string {
	texts := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, " ")
}

// ToTimestampedText renders one "[MM:SS] text" line per segment.
func (t *Transcript) ToTimestampedText() string {
	lines := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		lines[i] = fmt.Sprintf("[%s] %s", s.FormatStart(), s.Text)
	}
	return strings.Join(lines, "\n")
}

// ToSRT renders SRT subtitles: 1-indexed blocks with HH:MM:SS,mmm
// timestamps. A segment with an unset End gets Start + max(Duration, 2.0)
// so every cue has visible duration.
func (t *Transcript) ToSRT() string {
	blocks := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		blocks[i] = fmt.Sprintf("%d\n%s --> %s\n%s\n",
			i+1, srtTime(s.Start), srtTime(cueEnd(s)), s.Text)
	}
	return strings.Join(blocks, "\n")
}

// ToVTT renders WebVTT subtitles: a WEBVTT header, then per-segment cues
// with HH:MM:SS.mmm timestamps (dot, not comma).
func (t *Transcript) ToVTT() string {
	lines := make([]string, 0, len(t.Segments)+2)
	lines = append(lines, "WEBVTT", "")
	for _, s := range t.Segments {
		lines = append(lines, fmt.Sprintf("%s --> %s\n%s\n",
			vttTime(s.Start), vttTime(cueEnd(s)), s.Text))
	}
	return strings.Join(lines, "\n")
}

// Search returns segments whose text contains the query, case-insensitive,
// in original order.
func (t *Transcript) Search(query string) []Segment {
	q := strings.ToLower(query)
	var matches []Segment
	for _, s := range t.Segments {
		if strings.Contains(strings.ToLower(s.Text), q) {
			matches = append(matches, s)
		}
	}
	return matches
}

// cueEnd picks the end time for a subtitle cue: the segment End when set,
// else at least 2 seconds after Start.
func cueEnd(s Segment) float64 {
	if s.End > 0 {
		return s.End
	}
	d := s.Duration
	if d < 2.0 {
		d = 2.0
	}
	return s.Start + d
}

func srtTime(seconds float64) string {
	h, m, s, ms := splitClock(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func vttTime(seconds float64) string {
	h, m, s, ms := splitClock(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func splitClock(seconds float64) (h, m, s, ms int) {
	whole := int(seconds)
	h = whole / 3600
	m = (whole % 3600) / 60
	s = whole % 60
	ms = int((seconds - float64(whole)) * 1000)
	return h, m, s, ms
}
