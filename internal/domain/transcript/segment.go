package transcript

// Segment is one timestamped piece of transcribed speech.
// Segments are ordered chronologically and never mutated.
type Segment struct {
	Text       string `json:"text"`
	OffsetMs   int64  `json:"offset_ms"`
	DurationMs int64  `json:"duration_ms"`
}

// EndMs returns the offset at which the segment stops.
func (s Segment) EndMs() int64 { return s.OffsetMs + s.DurationMs }

// CleanedSegment is a Segment with its noise-stripped text.
type CleanedSegment struct {
	Segment
	CleanedText string
}

// Paragraph is a run of cleaned segments folded into one semantic unit.
type Paragraph struct {
	Text          string `json:"text"`
	StartOffsetMs int64  `json:"start_offset_ms"`
	EndOffsetMs   int64  `json:"end_offset_ms"`
}
