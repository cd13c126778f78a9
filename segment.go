package transcript

import "fmt"

// Segment is one timed unit of transcript text. Start, End and Duration are
// seconds; a zero End or Duration means "unset", not zero-length. Words
// holds optional word-level timing objects passed through opaquely.
//
// Segments are constructed once from a raw field mapping and are immutable
// thereafter.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	Words    []any   `json:"words,omitempty"`
}

// newSegment builds a Segment from a raw mapping and reconciles timing:
// when exactly one of End/Duration is supplied the other is derived so that
// End == Start + Duration. A supplied End always wins — Duration is only
// derived when it was the missing field. Malformed numeric fields are a
// type error, not a silent zero.
func newSegment(raw map[string]any) (Segment, error) {
	start, err := floatField(raw, "start")
	if err != nil {
		return Segment{}, err
	}
	end, err := floatField(raw, "end")
	if err != nil {
		return Segment{}, err
	}
	duration, err := floatField(raw, "duration")
	if err != nil {
		return Segment{}, err
	}

	s := Segment{
		Text:     stringField(raw, "text"),
		Start:    start,
		End:      end,
		Duration: duration,
	}
	if s.End == 0 && s.Duration > 0 {
		s.End = s.Start + s.Duration
	}
	if s.Duration == 0 && s.End > s.Start {
		s.Duration = s.End - s.Start
	}
	if words, ok := asList(raw["words"]); ok {
		s.Words = words
	}
	return s, nil
}

// FormatStart renders the start time as MM:SS.
func (s Segment) FormatStart() string {
	whole := int(s.Start)
	return fmt.Sprintf("%02d:%02d", whole/60, whole%60)
}

// FormatStartHMS renders the start time as HH:MM:SS.
func (s Segment) FormatStartHMS() string {
	whole := int(s.Start)
	return fmt.Sprintf("%02d:%02d:%02d", whole/3600, (whole%3600)/60, whole%60)
}
