package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

var srtTimingRe = regexp.MustCompile(
	`^(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})`)

// ParseSRT converts SubRip subtitles into segments.
// Cue text lines are joined with a space; cues without text are dropped.
func ParseSRT(text string) ([]Segment, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var segments []Segment
	for n, block := range strings.Split(strings.TrimSpace(text), "\n\n") {
		lines := nonBlankLines(block)
		if len(lines) == 0 {
			continue
		}
		if !strings.Contains(lines[0], "-->") {
			lines = lines[1:] // cue number
		}
		if len(lines) == 0 {
			return nil, fmt.Errorf("%w: srt cue %d: missing timing line", domain.ErrInvalidInput, n+1)
		}

		m := srtTimingRe.FindStringSubmatch(lines[0])
		if m == nil {
			return nil, fmt.Errorf("%w: srt cue %d: bad timing %q", domain.ErrInvalidInput, n+1, lines[0])
		}
		startMs := srtMillis(m[1:5])
		endMs := srtMillis(m[5:9])
		if endMs < startMs {
			return nil, fmt.Errorf("%w: srt cue %d: end before start", domain.ErrInvalidInput, n+1)
		}

		body := strings.Join(lines[1:], " ")
		if body == "" {
			continue
		}
		segments = append(segments, Segment{Text: body, OffsetMs: startMs, DurationMs: endMs - startMs})
	}
	return segments, nil
}

func nonBlankLines(block string) []string {
	raw := strings.Split(block, "\n")
	out := raw[:0]
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// srtMillis converts [h, m, s, frac] captures to milliseconds.
func srtMillis(parts []string) int64 {
	h, _ := strconv.ParseInt(parts[0], 10, 64)
	m, _ := strconv.ParseInt(parts[1], 10, 64)
	s, _ := strconv.ParseInt(parts[2], 10, 64)
	frac := parts[3]
	for len(frac) < 3 {
		frac += "0"
	}
	ms, _ := strconv.ParseInt(frac, 10, 64)
	return ((h*60+m)*60+s)*1000 + ms
}
