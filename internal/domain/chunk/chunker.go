package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/sermondex/internal/domain"
	"github.com/kailas-cloud/sermondex/internal/domain/transcript"
	"github.com/kailas-cloud/sermondex/internal/domain/video"
)

// ErrInvalidOptions signals unusable chunk size or overlap settings.
var ErrInvalidOptions = fmt.Errorf("%w: chunk options", domain.ErrInvalidInput)

// Default chunking parameters.
const (
	DefaultSize           = 500
	DefaultOverlapPercent = 20
)

// Options controls chunk size (in characters) and overlap.
type Options struct {
	Size           int
	OverlapPercent int
}

// DefaultOptions returns 500 characters with 20% overlap.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, OverlapPercent: DefaultOverlapPercent}
}

// Validate rejects Size <= 0 and OverlapPercent outside [0, 100).
func (o Options) Validate() error {
	if o.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidOptions, o.Size)
	}
	if o.OverlapPercent < 0 || o.OverlapPercent >= 100 {
		return fmt.Errorf("%w: overlap percent must be in [0, 100), got %d", ErrInvalidOptions, o.OverlapPercent)
	}
	return nil
}

// OverlapSize is the number of trailing characters carried into the next chunk.
func (o Options) OverlapSize() int { return o.Size * o.OverlapPercent / 100 }

// Split cuts paragraphs into overlapping chunks.
//
// A chunk is closed when the next paragraph would push it over Size. The next
// chunk starts with the last OverlapSize characters of the closed one.
// Character counts are runes. Blank paragraphs are skipped.
func Split(paragraphs []transcript.Paragraph, v video.Metadata, opts Options) ([]Chunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var (
		chunks    []Chunk
		acc       strings.Builder
		count     int
		startChar int
		startTime int64
		timeSet   bool
		lastEnd   int64
	)
	overlap := opts.OverlapSize()
	base := videoFields(v)

	emit := func(endTime int64) (string, int) {
		text := strings.TrimSpace(acc.String())
		endChar := startChar + count
		m := base
		m.Keywords = []string{}
		m.ChunkIndex = len(chunks)
		m.StartChar = startChar
		m.EndChar = endChar
		m.StartTime = startTime
		m.EndTime = endTime
		chunks = append(chunks, Chunk{
			ID:        ID(v.VideoID, m.ChunkIndex),
			ChunkText: text,
			FullText:  Format(m, text),
			Metadata:  m,
		})
		return text, endChar
	}

	for _, p := range paragraphs {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		n := utf8.RuneCountInString(text)
		lastEnd = p.EndOffsetMs

		if count+n > opts.Size && count > 0 {
			prev, endChar := emit(p.StartOffsetMs)
			seed := lastRunes(prev, overlap)
			seedLen := utf8.RuneCountInString(seed)

			acc.Reset()
			acc.WriteString(seed)
			acc.WriteByte(' ')
			acc.WriteString(text)
			acc.WriteByte(' ')
			count = seedLen + 1 + n + 1
			startChar = endChar - seedLen
			startTime = p.StartOffsetMs
			timeSet = true
			continue
		}

		if !timeSet {
			startTime = p.StartOffsetMs
			timeSet = true
		}
		acc.WriteString(text)
		acc.WriteByte(' ')
		count += n + 1
	}

	if strings.TrimSpace(acc.String()) != "" {
		emit(lastEnd)
	}
	return chunks, nil
}

func lastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
