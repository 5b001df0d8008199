// Package chunk splits paragraphs into overlapping retrieval units and
// renders their embedding-ready text.
package chunk

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/sermondex/internal/domain/video"
)

// Metadata is the fixed-shape chunk metadata. Empty strings and an empty
// keyword slice mean "absent".
type Metadata struct {
	VideoID     string
	VideoTitle  string
	ServiceType string
	ServiceDate string

	Preacher    string
	SermonTopic string
	BibleVerse  string
	Keywords    []string

	ChunkIndex int
	StartChar  int
	EndChar    int
	StartTime  int64
	EndTime    int64
}

// Semantic holds the fields produced by per-chunk extraction.
type Semantic struct {
	Preacher    string   `json:"preacher"`
	SermonTopic string   `json:"sermon_topic"`
	BibleVerse  string   `json:"bible_verse"`
	Keywords    []string `json:"keywords"`
}

// Chunk is one embedding and retrieval unit. Embedding stays nil until the
// embed stage fills it.
type Chunk struct {
	ID        string
	ChunkText string
	FullText  string
	Metadata  Metadata
	Embedding []float32
}

// ID builds the stable chunk identifier videoID_index.
func ID(videoID string, index int) string {
	return videoID + "_" + strconv.Itoa(index)
}

// ApplySemantic folds extracted fields into the metadata and refreshes FullText.
func (c *Chunk) ApplySemantic(s Semantic) {
	c.Metadata.Preacher = strings.TrimSpace(s.Preacher)
	c.Metadata.SermonTopic = strings.TrimSpace(s.SermonTopic)
	c.Metadata.BibleVerse = strings.TrimSpace(s.BibleVerse)
	c.Metadata.Keywords = normalizeKeywords(s.Keywords)
	c.Refresh()
}

// Refresh regenerates FullText from the metadata and drops the now stale embedding.
func (c *Chunk) Refresh() {
	c.FullText = Format(c.Metadata, c.ChunkText)
	c.Embedding = nil
}

func videoFields(v video.Metadata) Metadata {
	return Metadata{
		VideoID:     v.VideoID,
		VideoTitle:  v.Title,
		ServiceType: v.ServiceType,
		ServiceDate: v.ServiceDate,
		Keywords:    []string{},
	}
}

// normalizeKeywords trims, drops blanks and duplicates, and replaces the tag
// separator so a keyword stays one tag value.
func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = strings.TrimSpace(strings.ReplaceAll(k, ",", " "))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
