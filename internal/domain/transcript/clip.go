package transcript

import "time"

// Clip keeps segments whose offset falls in [from, to).
// A zero to means no upper bound.
func Clip(segments []Segment, from, to time.Duration) []Segment {
	fromMs, toMs := from.Milliseconds(), to.Milliseconds()
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if s.OffsetMs < fromMs {
			continue
		}
		if toMs > 0 && s.OffsetMs >= toMs {
			continue
		}
		out = append(out, s)
	}
	return out
}
