package transcript

import domtr "github.com/kailas-cloud/sermondex/internal/domain/transcript"

// recordDTO is the JSON document stored per video.
type recordDTO struct {
	VideoID     string            `json:"video_id"`
	VideoTitle  string            `json:"video_title"`
	ServiceType string            `json:"service_type"`
	ServiceDate string            `json:"service_date"`
	Segments    []domtr.Segment   `json:"segments"`
	Paragraphs  []domtr.Paragraph `json:"paragraphs"`
	Corrected   bool              `json:"corrected"`
	ChunkCount  int               `json:"chunk_count"`
	CreatedAt   int64             `json:"created_at"`
	UpdatedAt   int64             `json:"updated_at"`
}

func toDTO(r *domtr.Record) recordDTO {
	segments := r.Segments
	if segments == nil {
		segments = []domtr.Segment{}
	}
	paragraphs := r.Paragraphs
	if paragraphs == nil {
		paragraphs = []domtr.Paragraph{}
	}
	return recordDTO{
		VideoID:     r.VideoID,
		VideoTitle:  r.VideoTitle,
		ServiceType: r.ServiceType,
		ServiceDate: r.ServiceDate,
		Segments:    segments,
		Paragraphs:  paragraphs,
		Corrected:   r.Corrected,
		ChunkCount:  r.ChunkCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (d *recordDTO) toDomain() domtr.Record {
	return domtr.Record{
		VideoID:     d.VideoID,
		VideoTitle:  d.VideoTitle,
		ServiceType: d.ServiceType,
		ServiceDate: d.ServiceDate,
		Segments:    d.Segments,
		Paragraphs:  d.Paragraphs,
		Corrected:   d.Corrected,
		ChunkCount:  d.ChunkCount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
