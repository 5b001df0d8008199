package transcript

import (
	"regexp"
	"strings"
)

var (
	timestampRe  = regexp.MustCompile(`\[?\d{1,2}:\d{2}(:\d{2})?\]?`)
	glyphRe      = regexp.MustCompile(`[▶►▷]`)
	bracketRe    = regexp.MustCompile(`\[.*?\]`)
	parenRe      = regexp.MustCompile(`\(.*?\)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	edgeNoiseRe  = regexp.MustCompile(`^[^\w가-힣]+|[^\w가-힣.?!]+$`)
)

// maxCleanPasses bounds the fixed-point loop in CleanText.
const maxCleanPasses = 4

// Clean strips noise from every segment. Output has the same length and order.
func Clean(segments []Segment) []CleanedSegment {
	out := make([]CleanedSegment, len(segments))
	for i, s := range segments {
		out[i] = CleanedSegment{Segment: s, CleanedText: CleanText(s.Text)}
	}
	return out
}

// CleanText removes timestamps, arrow glyphs, bracketed and parenthesized
// content, collapses whitespace and trims non-letter edges.
// Parenthesized scripture citations are removed too.
func CleanText(text string) string {
	for range maxCleanPasses {
		next := cleanOnce(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func cleanOnce(text string) string {
	text = timestampRe.ReplaceAllString(text, "")
	text = glyphRe.ReplaceAllString(text, "")
	text = bracketRe.ReplaceAllString(text, "")
	text = parenRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	return edgeNoiseRe.ReplaceAllString(text, "")
}
