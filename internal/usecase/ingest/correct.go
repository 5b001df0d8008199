package ingest

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/sermondex/internal/domain/transcript"
)

// correctSegments sends the joined transcript to the corrector and spreads
// the corrected text back over the segments by position. Offsets and
// durations are kept.
func correctSegments(ctx context.Context, c Corrector, segments []transcript.Segment) ([]transcript.Segment, error) {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	corrected, err := c.Correct(ctx, strings.Join(texts, " "))
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped as a StageError by the caller
	}
	return splitProportionally(corrected, segments), nil
}

// splitProportionally gives segment i the runes [floor(i/n*L), floor((i+1)/n*L))
// of text. A blank slice falls back to the segment's original text.
func splitProportionally(text string, segments []transcript.Segment) []transcript.Segment {
	out := make([]transcript.Segment, len(segments))
	n := len(segments)
	if n == 0 {
		return out
	}
	runes := []rune(text)
	total := utf8.RuneCountInString(text)
	for i, seg := range segments {
		start := i * total / n
		end := (i + 1) * total / n
		part := strings.TrimSpace(string(runes[start:end]))
		if part == "" {
			part = seg.Text
		}
		out[i] = transcript.Segment{Text: part, OffsetMs: seg.OffsetMs, DurationMs: seg.DurationMs}
	}
	return out
}
