package transcript

import (
	"regexp"
	"strings"
)

// ParagraphGapMs is the silence after a sentence end that closes a paragraph.
const ParagraphGapMs = 2000

var sentenceEndRe = regexp.MustCompile(`[.!?]\s*$`)

// Assemble folds cleaned segments into paragraphs.
//
// A sentence end only closes the paragraph when the next segment starts more
// than ParagraphGapMs later or there is no next segment. Segments with blank
// cleaned text are skipped; every other segment lands in exactly one paragraph.
func Assemble(segments []CleanedSegment) []Paragraph {
	var (
		out   []Paragraph
		acc   strings.Builder
		start int64
		end   int64
		open  bool
	)

	flush := func() {
		out = append(out, Paragraph{
			Text:          strings.TrimSpace(acc.String()),
			StartOffsetMs: start,
			EndOffsetMs:   end,
		})
		acc.Reset()
		open = false
	}

	for i, seg := range segments {
		if strings.TrimSpace(seg.CleanedText) == "" {
			continue
		}
		if !open {
			start = seg.OffsetMs
			open = true
		}
		acc.WriteString(seg.CleanedText)
		acc.WriteByte(' ')
		end = seg.EndMs()

		if !sentenceEndRe.MatchString(seg.CleanedText) {
			continue
		}
		if i+1 < len(segments) && segments[i+1].OffsetMs-end <= ParagraphGapMs {
			continue
		}
		flush()
	}

	if open {
		flush()
	}
	return out
}
