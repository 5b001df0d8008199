package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

// Record is the whole stored transcript of one video.
type Record struct {
	VideoID     string
	VideoTitle  string
	ServiceType string
	ServiceDate string
	Segments    []Segment
	Paragraphs  []Paragraph
	Corrected   bool
	ChunkCount  int
	CreatedAt   int64
	UpdatedAt   int64
}

// NewRecord builds a record stamped with now. Video id is required.
func NewRecord(videoID string, segments []Segment, paragraphs []Paragraph, now time.Time) (Record, error) {
	if strings.TrimSpace(videoID) == "" {
		return Record{}, fmt.Errorf("%w: video ID is required", domain.ErrInvalidInput)
	}
	ts := now.UnixMilli()
	return Record{
		VideoID:    videoID,
		Segments:   segments,
		Paragraphs: paragraphs,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}, nil
}

// FullText joins paragraph texts with blank lines.
func (r Record) FullText() string {
	parts := make([]string, len(r.Paragraphs))
	for i, p := range r.Paragraphs {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n\n")
}
