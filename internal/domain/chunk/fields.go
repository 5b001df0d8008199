package chunk

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/sermondex/internal/domain/video"
)

// Stored hash field names.
const (
	FieldChunkText      = "chunk_text"
	FieldFullText       = "full_text"
	FieldVideoID        = "video_id"
	FieldVideoTitle     = "video_title"
	FieldServiceType    = "service_type"
	FieldServiceDate    = "service_date"
	FieldServiceDateNum = "service_date_num"
	FieldPreacher       = "preacher"
	FieldSermonTopic    = "sermon_topic"
	FieldBibleVerse     = "bible_verse"
	FieldKeywords       = "keywords"
	FieldChunkIndex     = "chunk_index"
	FieldStartChar      = "start_char"
	FieldEndChar        = "end_char"
	FieldStartTime      = "start_time"
	FieldEndTime        = "end_time"
)

// KeywordSeparator joins keywords in the stored TAG field.
const KeywordSeparator = ","

// Fields renders the chunk as flat hash fields. The embedding is not included.
func (c *Chunk) Fields() map[string]string {
	m := c.Metadata
	f := map[string]string{
		FieldChunkText:   c.ChunkText,
		FieldFullText:    c.FullText,
		FieldVideoID:     m.VideoID,
		FieldVideoTitle:  m.VideoTitle,
		FieldServiceType: m.ServiceType,
		FieldServiceDate: m.ServiceDate,
		FieldPreacher:    m.Preacher,
		FieldSermonTopic: m.SermonTopic,
		FieldBibleVerse:  m.BibleVerse,
		FieldKeywords:    strings.Join(m.Keywords, KeywordSeparator),
		FieldChunkIndex:  strconv.Itoa(m.ChunkIndex),
		FieldStartChar:   strconv.Itoa(m.StartChar),
		FieldEndChar:     strconv.Itoa(m.EndChar),
		FieldStartTime:   strconv.FormatInt(m.StartTime, 10),
		FieldEndTime:     strconv.FormatInt(m.EndTime, 10),
	}
	if n, err := video.DateNum(m.ServiceDate); err == nil {
		f[FieldServiceDateNum] = strconv.Itoa(n)
	}
	return f
}

// FromFields rebuilds a chunk from stored hash fields. Unparseable numbers read as zero.
func FromFields(id string, f map[string]string) Chunk {
	return Chunk{
		ID:        id,
		ChunkText: f[FieldChunkText],
		FullText:  f[FieldFullText],
		Metadata:  MetadataFromFields(f),
	}
}

// MetadataFromFields rebuilds metadata from stored hash fields.
func MetadataFromFields(f map[string]string) Metadata {
	keywords := []string{}
	if raw := f[FieldKeywords]; raw != "" {
		for _, k := range strings.Split(raw, KeywordSeparator) {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
	}
	return Metadata{
		VideoID:     f[FieldVideoID],
		VideoTitle:  f[FieldVideoTitle],
		ServiceType: f[FieldServiceType],
		ServiceDate: f[FieldServiceDate],
		Preacher:    f[FieldPreacher],
		SermonTopic: f[FieldSermonTopic],
		BibleVerse:  f[FieldBibleVerse],
		Keywords:    keywords,
		ChunkIndex:  atoi(f[FieldChunkIndex]),
		StartChar:   atoi(f[FieldStartChar]),
		EndChar:     atoi(f[FieldEndChar]),
		StartTime:   int64(atoi(f[FieldStartTime])),
		EndTime:     int64(atoi(f[FieldEndTime])),
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
